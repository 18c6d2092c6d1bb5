// Package tui simulates a station's hardware in the terminal: the OLED is a
// bordered panel, the arrow keys are the four buttons and card IDs are
// typed into a prompt instead of tapped on a reader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/pokeriot/station/internal/card"
	"github.com/pokeriot/station/internal/input"
)

// refreshInterval is how often the panel snapshot is redrawn
const refreshInterval = 50 * time.Millisecond

type refreshMsg struct{}

// Options configures a Model
type Options struct {
	Title     string
	Panel     *Panel
	Cards     *card.QueueReader
	Buttons   *input.QueueSource // nil for a registration station
	Connected func() bool
}

// Model is the Bubble Tea model for the station simulator
type Model struct {
	opts   Options
	logger *log.Logger

	cardInput textinput.Model
	status    string
	quitting  bool
}

// NewModel creates the simulator model
func NewModel(opts Options, logger *log.Logger) *Model {
	if opts.Panel == nil {
		opts.Panel = NewPanel()
	}
	if opts.Connected == nil {
		opts.Connected = func() bool { return false }
	}

	ti := textinput.New()
	ti.Placeholder = "card id, e.g. A1:B2:C3:D4"
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 32
	ti.Prompt = "card> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)

	return &Model{
		opts:      opts,
		logger:    logger.WithPrefix("tui"),
		cardInput: ti,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, refresh())
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		return m, refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up":
			m.press(input.ButtonUp)
			return m, nil
		case "down":
			m.press(input.ButtonDown)
			return m, nil
		case "right":
			m.press(input.ButtonConfirm)
			return m, nil
		case "left":
			m.press(input.ButtonReturn)
			return m, nil
		case "enter":
			m.scan(m.cardInput.Value())
			m.cardInput.SetValue("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.cardInput, cmd = m.cardInput.Update(msg)
	return m, cmd
}

func (m *Model) press(b input.Button) {
	if m.opts.Buttons == nil {
		return
	}
	m.logger.Debug("Button pressed", "button", b)
	m.opts.Buttons.Press(b)
}

func (m *Model) scan(raw string) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	id, err := card.Normalize(raw)
	if err != nil {
		m.status = ErrorStyle.Render(fmt.Sprintf("invalid card id %q", raw))
		return
	}
	m.logger.Debug("Card presented", "card", id)
	m.opts.Cards.Present(id)
	m.status = SuccessStyle.Render("scanned " + id.String())
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(m.opts.Title))
	b.WriteString(" ")
	if m.opts.Connected() {
		b.WriteString(SuccessStyle.Render("online"))
	} else {
		b.WriteString(ErrorStyle.Render("offline"))
	}
	b.WriteString("\n")

	b.WriteString(PanelStyle.Render(m.renderPanel()))
	b.WriteString("\n")
	b.WriteString(m.cardInput.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}

	help := "enter: scan card  esc: quit"
	if m.opts.Buttons != nil {
		help = "up/down: move  right: confirm  left: return  " + help
	}
	b.WriteString(InfoStyle.Render(help))
	return b.String()
}

func (m *Model) renderPanel() string {
	screen, _ := m.opts.Panel.Snapshot()
	if !screen.Menu {
		return screen.Text()
	}

	lines := make([]string, len(screen.Lines))
	for i, line := range screen.Lines {
		if strings.HasPrefix(line, "> ") {
			line = CursorStyle.Render(line)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// Run drives the simulator until the user quits or ctx is cancelled
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("simulator: %w", err)
	}
	return nil
}
