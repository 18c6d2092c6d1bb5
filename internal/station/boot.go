package station

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/pokeriot/station/internal/display"
)

// ErrUnreachable is returned by Boot when the backend never answered
var ErrUnreachable = errors.New("backend unreachable")

// maxDots is how many progress dots fit on one display line
const maxDots = 16

// Dialer makes a single connection attempt
type Dialer interface {
	Dial(ctx context.Context) error
}

// BootOptions bounds the bring-up retry loop
type BootOptions struct {
	Timeout        time.Duration // give up after this long
	RetryInterval  time.Duration // pause between attempts
	AttemptTimeout time.Duration // limit for a single attempt
}

// Boot dials the backend until it answers or opts.Timeout elapses, drawing
// one more progress dot per attempt. On timeout it leaves the unreachable
// screen up and returns ErrUnreachable.
func Boot(ctx context.Context, d Dialer, sink display.Sink, clock quartz.Clock, opts BootOptions, logger *log.Logger) error {
	logger = logger.WithPrefix("boot")
	if clock == nil {
		clock = quartz.NewReal()
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = 10 * time.Second
	}

	deadline := clock.Now().Add(opts.Timeout)
	for attempt := 1; ; attempt++ {
		sink.ShowMessage("Connecting", strings.Repeat(".", min(attempt, maxDots)))

		attemptCtx, cancel := context.WithTimeout(ctx, opts.AttemptTimeout)
		err := d.Dial(attemptCtx)
		cancel()
		if err == nil {
			logger.Info("Backend reachable", "attempts", attempt)
			sink.ShowMessage("Connected", "Scan card")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Debug("Connection attempt failed", "attempt", attempt, "error", err)

		if !clock.Now().Before(deadline) {
			logger.Error("Giving up on backend", "attempts", attempt, "timeout", opts.Timeout, "error", err)
			sink.ShowMessage("Backend unreachable", "Check network")
			return fmt.Errorf("%w after %d attempts: %w", ErrUnreachable, attempt, err)
		}

		timer := clock.NewTimer(opts.RetryInterval, "boot", "retry")
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
