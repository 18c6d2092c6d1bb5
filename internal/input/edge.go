package input

import (
	"time"

	"github.com/coder/quartz"
)

// DefaultDebounce is the lockout applied after an accepted press
const DefaultDebounce = 200 * time.Millisecond

// Pins reads the electrical level of each button line. Lines are active-low:
// a pressed button reads false.
type Pins interface {
	Level(b Button) bool
}

// EdgeDetector converts pin levels into press edges. A press is reported
// once, on the released→pressed transition.
type EdgeDetector struct {
	pins    Pins
	pressed map[Button]bool
	queue   []Button
}

// NewEdgeDetector creates an EdgeDetector. All buttons start released.
func NewEdgeDetector(pins Pins) *EdgeDetector {
	return &EdgeDetector{
		pins:    pins,
		pressed: make(map[Button]bool, len(Buttons)),
	}
}

// Poll implements Source
func (e *EdgeDetector) Poll() (Button, bool) {
	if len(e.queue) == 0 {
		for _, b := range Buttons {
			down := !e.pins.Level(b)
			if down && !e.pressed[b] {
				e.queue = append(e.queue, b)
			}
			e.pressed[b] = down
		}
	}

	if len(e.queue) == 0 {
		return ButtonNone, false
	}
	b := e.queue[0]
	e.queue = e.queue[1:]
	return b, true
}

// Debouncer drops presses that arrive within the lockout window of the last
// accepted press. The window is shared by all buttons so one physical press
// can never count as both a cursor move and a confirm.
type Debouncer struct {
	src      Source
	clock    quartz.Clock
	window   time.Duration
	last     time.Time
	accepted bool
}

// NewDebouncer wraps src with a lockout window
func NewDebouncer(src Source, clock quartz.Clock, window time.Duration) *Debouncer {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Debouncer{
		src:    src,
		clock:  clock,
		window: window,
	}
}

// Poll implements Source. Suppressed edges are consumed, not deferred.
func (d *Debouncer) Poll() (Button, bool) {
	for {
		b, ok := d.src.Poll()
		if !ok {
			return ButtonNone, false
		}

		now := d.clock.Now()
		if d.accepted && now.Sub(d.last) < d.window {
			continue
		}

		d.last = now
		d.accepted = true
		return b, true
	}
}
