// Package input turns the station's four momentary buttons into debounced
// logical presses.
package input

import "sync"

// Button is one of the station's logical buttons
type Button uint8

const (
	ButtonNone Button = iota
	ButtonUp
	ButtonDown
	ButtonConfirm
	ButtonReturn
)

// Buttons lists every logical button in scan order
var Buttons = []Button{ButtonUp, ButtonDown, ButtonConfirm, ButtonReturn}

// String returns the button name
func (b Button) String() string {
	switch b {
	case ButtonUp:
		return "Up"
	case ButtonDown:
		return "Down"
	case ButtonConfirm:
		return "Confirm"
	case ButtonReturn:
		return "Return"
	default:
		return "None"
	}
}

// Source yields press edges. Poll must not block; it returns false when no
// press is waiting.
type Source interface {
	Poll() (Button, bool)
}

// QueueSource is a Source fed programmatically (simulator keys, tests)
type QueueSource struct {
	mu      sync.Mutex
	pending []Button
}

// NewQueueSource creates an empty QueueSource
func NewQueueSource() *QueueSource {
	return &QueueSource{}
}

// Press queues a press edge
func (q *QueueSource) Press(b Button) {
	if b == ButtonNone {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, b)
}

// Poll implements Source
func (q *QueueSource) Poll() (Button, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return ButtonNone, false
	}
	b := q.pending[0]
	q.pending = q.pending[1:]
	return b, true
}
