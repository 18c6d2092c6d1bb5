// Package station runs a player station: one control loop that feeds card
// scans, button presses and backend events through the turn session and
// keeps the display in step with the result.
package station

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/pokeriot/station/internal/card"
	"github.com/pokeriot/station/internal/display"
	"github.com/pokeriot/station/internal/input"
	"github.com/pokeriot/station/internal/menu"
	"github.com/pokeriot/station/internal/protocol"
	"github.com/pokeriot/station/internal/session"
)

// maxFramesPerTick bounds how many inbound frames one tick drains
const maxFramesPerTick = 32

const (
	welcomeLine1   = "Scan card"
	welcomeLine2   = "to join"
	reconfirmLine1 = "Confirm Action"
	reconfirmLine2 = "Scan again"
)

// Transport is the non-blocking side of the message channel the loop uses
type Transport interface {
	Send(frame []byte) error
	TryReceive() ([]byte, bool)
	Connected() bool
}

// Options configures a Station
type Options struct {
	Menu           menu.Config
	InitialBalance int
	ResetPolicy    session.ResetPolicy
	TickInterval   time.Duration
	NoticeDuration time.Duration
}

// Devices are the station's collaborators
type Devices struct {
	Transport Transport
	Reader    card.Reader
	Buttons   input.Source
	Display   display.Sink
}

// Station is the player station control loop. Every method except Run must
// be called from the goroutine that owns it.
type Station struct {
	opts    Options
	dev     Devices
	logger  *log.Logger
	clock   quartz.Clock
	decoder *protocol.Decoder

	machine *session.Machine
	view    session.PlayerView
	menu    *menu.Engine

	shown       display.Screen
	hasShown    bool
	noticeUntil time.Time
}

// New creates a station in Idle showing the welcome screen
func New(opts Options, dev Devices, logger *log.Logger, clock quartz.Clock) (*Station, error) {
	if dev.Transport == nil || dev.Reader == nil || dev.Buttons == nil || dev.Display == nil {
		return nil, errors.New("station requires a transport, reader, buttons and display")
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 50 * time.Millisecond
	}
	if clock == nil {
		clock = quartz.NewReal()
	}

	engine, err := menu.NewEngine(opts.Menu)
	if err != nil {
		return nil, err
	}
	decoder, err := protocol.NewDecoder()
	if err != nil {
		return nil, err
	}

	s := &Station{
		opts:    opts,
		dev:     dev,
		logger:  logger.WithPrefix("station"),
		clock:   clock,
		decoder: decoder,
		machine: session.NewMachine(opts.ResetPolicy),
		view:    session.NewPlayerView(opts.InitialBalance),
		menu:    engine,
	}
	s.showMessage(welcomeLine1, welcomeLine2)
	return s, nil
}

// Run ticks the loop until ctx is cancelled
func (s *Station) Run(ctx context.Context) error {
	s.logger.Info("Station loop started", "tick", s.opts.TickInterval, "reset_policy", s.machine.Policy())

	s.redraw()

	ticker := s.clock.NewTicker(s.opts.TickInterval, "station", "tick")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick performs one pass of the loop: inbound frames, the card reader,
// buttons, then the display.
func (s *Station) Tick() {
	for i := 0; i < maxFramesPerTick; i++ {
		frame, ok := s.dev.Transport.TryReceive()
		if !ok {
			break
		}
		s.handleFrame(frame)
	}

	if id, ok := s.dev.Reader.Poll(); ok {
		s.handleScan(id)
	}

	for {
		b, ok := s.dev.Buttons.Poll()
		if !ok {
			break
		}
		s.handleButton(b)
	}

	s.render()
}

// Session returns a copy of the turn session
func (s *Station) Session() session.Session {
	return s.machine.Session()
}

// View returns the cached player view
func (s *Station) View() session.PlayerView {
	return s.view
}

func (s *Station) handleScan(id card.ID) {
	before := s.machine.Phase()
	out := s.machine.Scan(id, s.view.Registering)
	after := s.machine.Session()

	s.logger.Info("Card scanned", "card", id, "phase", after.Phase, "cycle", after.CycleID)
	if before != session.Acting && after.Phase == session.Acting {
		s.menu.Reset()
	}
	s.perform(out)
}

func (s *Station) handleButton(b input.Button) {
	// The menu is only live while a card is bound and nothing is committed.
	if s.machine.Phase() != session.Acting {
		s.logger.Debug("Ignoring button", "button", b, "phase", s.machine.Phase())
		return
	}

	switch b {
	case input.ButtonUp:
		s.menu.Advance(menu.Up)
		s.noticeUntil = time.Time{}
	case input.ButtonDown:
		s.menu.Advance(menu.Down)
		s.noticeUntil = time.Time{}
	case input.ButtonConfirm:
		s.confirm()
	case input.ButtonReturn:
		if s.menu.InAmountEntry() {
			_ = s.menu.CancelAmountEntry()
			return
		}
		s.logger.Info("Turn cancelled", "cycle", s.machine.Session().CycleID)
		s.perform(s.machine.Cancel())
	}
}

func (s *Station) confirm() {
	action, ready, err := s.menu.Select(s.view.Limits())
	if err != nil {
		var rej *menu.Rejection
		if errors.As(err, &rej) {
			s.logger.Info("Amount rejected", "reason", rej.Line1, "amount", s.menu.Amount())
			s.notify(rej.Line1, rej.Line2)
			return
		}
		s.logger.Error("Menu selection failed", "error", err)
		return
	}
	if !ready {
		return
	}

	cycle := s.machine.Session().CycleID
	out, err := s.machine.Commit(action)
	if err != nil {
		s.logger.Error("Failed to commit action", "error", err)
		return
	}
	s.logger.Info("Action committed", "action", action, "cycle", cycle)
	s.perform(out)
}

// perform carries out a transition's effects: frames first, then the notice
func (s *Station) perform(out session.Outcome) {
	for _, frame := range out.Send {
		data, err := protocol.Marshal(frame)
		if err != nil {
			s.logger.Error("Failed to encode frame", "event", frame.OutboundTag(), "error", err)
			continue
		}
		if err := s.dev.Transport.Send(data); err != nil {
			s.logger.Error("Failed to queue frame", "event", frame.OutboundTag(), "error", err)
		}
	}
	if out.Notice != nil {
		s.notify(out.Notice.Line1, out.Notice.Line2)
	}
}

// notify shows a two-line message and holds it for the notice duration
func (s *Station) notify(line1, line2 string) {
	s.noticeUntil = s.clock.Now().Add(s.opts.NoticeDuration)
	s.showMessage(line1, line2)
}

// render puts the phase's resting screen back once any notice has
// expired: the menu while acting, the scan prompt while a commit awaits
// its reconfirm. In Idle the last message stays up.
func (s *Station) render() {
	if s.clock.Now().Before(s.noticeUntil) {
		return
	}

	switch s.machine.Phase() {
	case session.AwaitingReconfirm:
		s.showMessage(reconfirmLine1, reconfirmLine2)
		return
	case session.Idle:
		return
	}

	view := s.menu.View(s.view.Balance)
	if s.changed(display.MenuScreen(view)) {
		s.dev.Display.ShowMenu(view)
	}
}

// redraw forgets what the display is believed to show and puts the
// current phase's screen back. Other writers, such as Boot, may have used
// the display since the last draw.
func (s *Station) redraw() {
	s.hasShown = false
	s.noticeUntil = time.Time{}
	if s.machine.Phase() == session.Idle {
		s.showMessage(welcomeLine1, welcomeLine2)
		return
	}
	s.render()
}

func (s *Station) showMessage(line1, line2 string) {
	if s.changed(display.MessageScreen(line1, line2)) {
		s.dev.Display.ShowMessage(line1, line2)
	}
}

// changed records screen as shown and reports whether it differs from the
// screen already on the display
func (s *Station) changed(screen display.Screen) bool {
	if s.hasShown && s.shown.Equal(screen) {
		return false
	}
	s.shown = screen
	s.hasShown = true
	return true
}
