// Package display defines the station's screen contract. The physical
// display is a 128x64 OLED that fits five lines of text.
package display

import (
	"fmt"
	"strings"
)

// MaxMenuItems is the number of action labels the screen can list
const MaxMenuItems = 5

// Sink renders either a two-line status message or the action menu
type Sink interface {
	ShowMessage(line1, line2 string)
	ShowMenu(view MenuView)
}

// MenuView is a snapshot of the action menu for rendering
type MenuView struct {
	Labels      []string
	Cursor      int
	AmountEntry bool
	Amount      int
	Balance     int
}

// Lines renders the menu as screen lines. In amount entry the selected
// label is followed by the candidate amount and the balance.
func (v MenuView) Lines() []string {
	if v.AmountEntry {
		label := ""
		if v.Cursor >= 0 && v.Cursor < len(v.Labels) {
			label = v.Labels[v.Cursor]
		}
		return []string{
			label,
			fmt.Sprintf("Amount: %d", v.Amount),
			fmt.Sprintf("Balance: %d", v.Balance),
		}
	}

	n := len(v.Labels)
	if n > MaxMenuItems {
		n = MaxMenuItems
	}
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		prefix := "  "
		if i == v.Cursor {
			prefix = "> "
		}
		lines = append(lines, prefix+v.Labels[i])
	}
	return lines
}

// Screen is what the display currently shows
type Screen struct {
	Lines []string
	Menu  bool
}

// MessageScreen builds the screen for a two-line message
func MessageScreen(line1, line2 string) Screen {
	return Screen{Lines: []string{line1, line2}}
}

// MenuScreen builds the screen for a menu view
func MenuScreen(view MenuView) Screen {
	return Screen{Lines: view.Lines(), Menu: true}
}

// Text joins the screen lines with newlines
func (s Screen) Text() string {
	return strings.Join(s.Lines, "\n")
}

// Equal reports whether two screens show the same content
func (s Screen) Equal(other Screen) bool {
	if s.Menu != other.Menu || len(s.Lines) != len(other.Lines) {
		return false
	}
	for i := range s.Lines {
		if s.Lines[i] != other.Lines[i] {
			return false
		}
	}
	return true
}
