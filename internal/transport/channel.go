// Package transport is the station's message channel: one persistent
// WebSocket connection to the backend that reconnects on its own.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

var (
	// ErrSendBufferFull is returned when too many frames are waiting
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrNotConnected reports an operation that needs a live connection
	ErrNotConnected = errors.New("not connected")
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 54 * time.Second
)

// Config configures a Channel
type Config struct {
	URL               string
	ReconnectInterval time.Duration
	HandshakeTimeout  time.Duration
	BufferSize        int
}

// Channel carries text frames to and from the backend. Send and
// TryReceive never block, so the station's control loop can call them on
// every tick; dialing and socket I/O happen on Run's goroutines.
type Channel struct {
	cfg      Config
	logger   *log.Logger
	clock    quartz.Clock
	dialer   *websocket.Dialer
	outbound chan []byte
	inbound  chan []byte

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	unsent    []byte // frame whose write failed, retried first after reconnect
}

// New creates a Channel. It does not connect.
func New(cfg Config, logger *log.Logger, clock quartz.Clock) (*Channel, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported backend URL scheme: %q", u.Scheme)
	}
	cfg.URL = u.String()

	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = 5 * time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if clock == nil {
		clock = quartz.NewReal()
	}

	return &Channel{
		cfg:      cfg,
		logger:   logger.WithPrefix("transport"),
		clock:    clock,
		dialer:   &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		outbound: make(chan []byte, cfg.BufferSize),
		inbound:  make(chan []byte, cfg.BufferSize),
	}, nil
}

// URL returns the normalized backend URL
func (c *Channel) URL() string {
	return c.cfg.URL
}

// Dial makes one connection attempt. Run adopts a connection opened by
// Dial instead of opening its own.
func (c *Channel) Dial(ctx context.Context) error {
	c.mu.RLock()
	live := c.conn != nil
	c.mu.RUnlock()
	if live {
		return nil
	}

	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.logger.Info("Connected to backend", "url", c.cfg.URL)
	return nil
}

// Connected reports whether a connection is currently up
func (c *Channel) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Send queues a frame. Frames queued while disconnected are delivered after
// the next reconnect.
func (c *Channel) Send(frame []byte) error {
	select {
	case c.outbound <- frame:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// TryReceive returns the next inbound frame if one is waiting
func (c *Channel) TryReceive() ([]byte, bool) {
	select {
	case frame := <-c.inbound:
		return frame, true
	default:
		return nil, false
	}
}

// Run keeps the connection alive until ctx is cancelled, retrying every
// ReconnectInterval after a failed dial or a dropped connection.
func (c *Channel) Run(ctx context.Context) error {
	defer c.closeConn()

	for {
		if err := c.Dial(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("Backend unreachable, retrying", "error", err, "in", c.cfg.ReconnectInterval)
		} else {
			c.serve(ctx)
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("Disconnected from backend", "retry_in", c.cfg.ReconnectInterval)
		}

		timer := c.clock.NewTimer(c.cfg.ReconnectInterval, "transport", "reconnect")
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// serve pumps frames over the current connection until it drops
func (c *Channel) serve(ctx context.Context) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	readErr := make(chan error, 1)
	go c.readPump(ctx, conn, readErr)

	ticker := c.clock.NewTicker(pingInterval, "transport", "ping")
	defer func() {
		ticker.Stop()
		c.closeConn()
	}()

	if frame := c.takeUnsent(); frame != nil {
		if !c.write(conn, frame) {
			return
		}
	}

	for {
		select {
		case frame := <-c.outbound:
			if !c.write(conn, frame) {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return

		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Channel) write(conn *websocket.Conn, frame []byte) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error("Failed to write frame", "error", err)
		c.mu.Lock()
		c.unsent = frame
		c.mu.Unlock()
		return false
	}
	c.logger.Debug("Sent frame", "frame", string(frame))
	return true
}

func (c *Channel) readPump(ctx context.Context, conn *websocket.Conn, readErr chan<- error) {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			readErr <- err
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		c.logger.Debug("Received frame", "frame", string(data))

		select {
		case c.inbound <- data:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Channel) takeUnsent() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame := c.unsent
	c.unsent = nil
	return frame
}

func (c *Channel) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}
