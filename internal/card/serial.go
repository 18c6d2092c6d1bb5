package card

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	defaultBaud       = 9600
	serialReadTimeout = 250 * time.Millisecond
	maxLineLen        = 64
)

// SerialReader reads card UIDs from a USB-serial RFID module that prints one
// hex UID per line. A background goroutine owns the port; Poll only drains
// what it has already parsed.
type SerialReader struct {
	port  serial.Port
	queue *QueueReader

	mu      sync.Mutex
	lastErr error
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// OpenSerial opens device and starts reading UIDs from it
func OpenSerial(device string, baud int) (*SerialReader, error) {
	if device == "" {
		return nil, errors.New("serial card reader requires a device path")
	}
	if baud <= 0 {
		baud = defaultBaud
	}

	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open card reader %s: %w", device, err)
	}
	if err := port.SetReadTimeout(serialReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to configure card reader %s: %w", device, err)
	}

	r := &SerialReader{
		port:  port,
		queue: NewQueueReader(8),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go r.readLoop()

	return r, nil
}

// Poll implements Reader
func (r *SerialReader) Poll() (ID, bool) {
	return r.queue.Poll()
}

// Err returns the error that stopped the read loop, if any
func (r *SerialReader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Close stops the read loop and releases the port
func (r *SerialReader) Close() error {
	var err error
	r.once.Do(func() {
		close(r.stop)
		err = r.port.Close()
		<-r.done
	})
	return err
}

func (r *SerialReader) readLoop() {
	defer close(r.done)

	var line []byte
	buf := make([]byte, 32)

	for {
		select {
		case <-r.stop:
			return
		default:
		}

		n, err := r.port.Read(buf)
		if err != nil {
			select {
			case <-r.stop:
			default:
				r.mu.Lock()
				r.lastErr = err
				r.mu.Unlock()
			}
			return
		}

		line = append(line, buf[:n]...)
		for {
			idx := bytes.IndexAny(line, "\r\n")
			if idx < 0 {
				break
			}
			r.feed(line[:idx])
			line = line[idx+1:]
		}

		// Garbage without terminators is discarded rather than buffered forever
		if len(line) > maxLineLen {
			line = line[:0]
		}
	}
}

func (r *SerialReader) feed(raw []byte) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return
	}
	id, err := Normalize(string(raw))
	if err != nil {
		return
	}
	r.queue.Present(id)
}
