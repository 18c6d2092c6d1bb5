package station

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/pokeriot/station/internal/card"
	"github.com/pokeriot/station/internal/protocol"
	"github.com/pokeriot/station/internal/transport"
)

// RegistrarOptions configures a Registrar
type RegistrarOptions struct {
	TickInterval time.Duration
	Cooldown     time.Duration // the reader is not polled for this long after a registration
}

// Registrar runs a registration station: every new card scanned is sent to
// the backend as register_player. It has no menu and no turn session.
type Registrar struct {
	opts    RegistrarOptions
	dev     Devices
	logger  *log.Logger
	clock   quartz.Clock
	decoder *protocol.Decoder

	lastCard card.ID
	lastScan time.Time
}

// NewRegistrar creates a registration station. dev.Buttons is not used.
func NewRegistrar(opts RegistrarOptions, dev Devices, logger *log.Logger, clock quartz.Clock) (*Registrar, error) {
	if dev.Transport == nil || dev.Reader == nil || dev.Display == nil {
		return nil, errors.New("registrar requires a transport, reader and display")
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 50 * time.Millisecond
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	decoder, err := protocol.NewDecoder()
	if err != nil {
		return nil, err
	}

	r := &Registrar{
		opts:    opts,
		dev:     dev,
		logger:  logger.WithPrefix("register"),
		clock:   clock,
		decoder: decoder,
	}
	r.dev.Display.ShowMessage("Register Mode", "Scan cards")
	return r, nil
}

// Run ticks the registrar until ctx is cancelled
func (r *Registrar) Run(ctx context.Context) error {
	r.logger.Info("Registration station started", "cooldown", r.opts.Cooldown)

	ticker := r.clock.NewTicker(r.opts.TickInterval, "register", "tick")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Tick drains backend frames and then handles at most one card
func (r *Registrar) Tick() {
	for i := 0; i < maxFramesPerTick; i++ {
		frame, ok := r.dev.Transport.TryReceive()
		if !ok {
			break
		}
		r.handleFrame(frame)
	}

	if !r.lastScan.IsZero() && r.clock.Now().Sub(r.lastScan) < r.opts.Cooldown {
		return
	}
	if id, ok := r.dev.Reader.Poll(); ok {
		r.register(id)
	}
}

func (r *Registrar) register(id card.ID) {
	if id == r.lastCard {
		r.logger.Debug("Duplicate card ignored", "card", id)
		return
	}
	r.lastScan = r.clock.Now()

	if !r.dev.Transport.Connected() {
		r.logger.Warn("Cannot register card", "card", id, "error", transport.ErrNotConnected)
		r.dev.Display.ShowMessage("WS Not Connected", "Try again later")
		return
	}

	data, err := protocol.Marshal(protocol.NewRegisterPlayer(id.String()))
	if err != nil {
		r.logger.Error("Failed to encode frame", "error", err)
		return
	}
	if err := r.dev.Transport.Send(data); err != nil {
		r.logger.Error("Failed to queue frame", "card", id, "error", err)
		r.dev.Display.ShowMessage("Send failed", "Try again later")
		return
	}

	r.lastCard = id
	r.logger.Info("Card registered", "card", id)
	r.dev.Display.ShowMessage("Card Registered", id.String())
}

func (r *Registrar) handleFrame(data []byte) {
	ev, err := r.decoder.Decode(data)
	if err != nil {
		r.logger.Warn("Dropping inbound frame", "error", err, "frame", string(data))
		return
	}

	switch e := ev.(type) {
	case protocol.RegisterPlayerAck:
		username := e.Username
		if username == "" {
			username = "Unknown"
		}
		r.logger.Info("Player registered", "username", username)
		r.dev.Display.ShowMessage("Registered:", username)
	case protocol.ErrorEvent:
		r.logger.Warn("Backend error", "message", e.Message)
		r.dev.Display.ShowMessage("Error:", e.Message)
	default:
		r.logger.Debug("Ignoring event", "event", ev.Tag())
	}
}
