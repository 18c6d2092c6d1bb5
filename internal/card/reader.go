package card

import (
	"fmt"
	"sync"
)

// Reader is polled once per control loop tick. Poll must not block: it
// returns the card currently presented, or false when there is none.
type Reader interface {
	Poll() (ID, bool)
}

// ReaderConfig selects and configures a Reader implementation
type ReaderConfig struct {
	Type   string // "serial" or "queue"
	Device string // e.g. "/dev/ttyUSB0"
	Baud   int
}

// New creates a Reader based on the provided configuration. Queue readers are
// returned for the simulator; callers feed them through Present.
func New(cfg ReaderConfig) (Reader, error) {
	switch cfg.Type {
	case "serial":
		return OpenSerial(cfg.Device, cfg.Baud)
	case "queue", "tui", "":
		return NewQueueReader(8), nil
	default:
		return nil, fmt.Errorf("unknown card reader type: %s", cfg.Type)
	}
}

// QueueReader is a Reader fed programmatically, used by the terminal
// simulator and by tests.
type QueueReader struct {
	mu      sync.Mutex
	pending []ID
	limit   int
}

// NewQueueReader creates a QueueReader holding at most limit unread scans
func NewQueueReader(limit int) *QueueReader {
	if limit <= 0 {
		limit = 1
	}
	return &QueueReader{limit: limit}
}

// Present queues a scan. The oldest unread scan is dropped when full.
func (q *QueueReader) Present(id ID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) >= q.limit {
		q.pending = q.pending[1:]
	}
	q.pending = append(q.pending, id)
}

// Poll implements Reader
func (q *QueueReader) Poll() (ID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return None, false
	}

	id := q.pending[0]
	q.pending = q.pending[1:]
	return id, true
}

type multiReader []Reader

// Multi returns a Reader that polls each reader in order and reports the
// first card found
func Multi(readers ...Reader) Reader {
	return multiReader(readers)
}

func (m multiReader) Poll() (ID, bool) {
	for _, r := range m {
		if id, ok := r.Poll(); ok {
			return id, true
		}
	}
	return None, false
}
