package tui

import (
	"sync"

	"github.com/pokeriot/station/internal/display"
)

// Panel is the display.Sink the simulator draws. The station loop writes
// to it; the bubbletea goroutine reads a snapshot on every refresh.
type Panel struct {
	mu      sync.Mutex
	screen  display.Screen
	version int
}

// NewPanel creates a blank panel
func NewPanel() *Panel {
	return &Panel{}
}

// ShowMessage implements display.Sink
func (p *Panel) ShowMessage(line1, line2 string) {
	p.set(display.MessageScreen(line1, line2))
}

// ShowMenu implements display.Sink
func (p *Panel) ShowMenu(view display.MenuView) {
	p.set(display.MenuScreen(view))
}

func (p *Panel) set(s display.Screen) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.screen = s
	p.version++
}

// Snapshot returns the current screen and a counter that changes on every
// draw
func (p *Panel) Snapshot() (display.Screen, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screen, p.version
}
