package menu

import (
	"errors"
	"fmt"

	"github.com/pokeriot/station/internal/display"
)

// ErrNotInAmountEntry is returned by CancelAmountEntry outside amount entry
var ErrNotInAmountEntry = errors.New("not in amount entry")

// Config describes the action list and the table's betting increments
type Config struct {
	Actions  []string
	MinBet   int
	BetStep  int
	MinRaise int
}

// DefaultConfig returns the stock player build settings
func DefaultConfig() Config {
	return Config{
		Actions:  []string{"check", "bet", "call", "raise", "fold"},
		MinBet:   10,
		BetStep:  10,
		MinRaise: 10,
	}
}

// Validate checks that the menu can be built from the config
func (c Config) Validate() error {
	if len(c.Actions) == 0 {
		return fmt.Errorf("at least one action is required")
	}
	if len(c.Actions) > display.MaxMenuItems {
		return fmt.Errorf("at most %d actions fit on the display", display.MaxMenuItems)
	}
	seen := make(map[Kind]bool, len(c.Actions))
	for _, label := range c.Actions {
		k, err := ParseKind(label)
		if err != nil {
			return err
		}
		if seen[k] {
			return fmt.Errorf("duplicate action: %s", k)
		}
		seen[k] = true
	}
	if c.BetStep <= 0 {
		return fmt.Errorf("bet step must be positive")
	}
	if c.MinBet <= 0 {
		return fmt.Errorf("minimum bet must be positive")
	}
	if c.MinBet%c.BetStep != 0 {
		return fmt.Errorf("minimum bet %d is not a multiple of bet step %d", c.MinBet, c.BetStep)
	}
	if c.MinRaise < 0 {
		return fmt.Errorf("minimum raise cannot be negative")
	}
	return nil
}

// Direction is a cursor or amount adjustment
type Direction int

const (
	Up Direction = iota
	Down
)

type item struct {
	label string
	kind  Kind
}

// Engine turns button presses into a PendingAction
type Engine struct {
	cfg         Config
	items       []item
	cursor      int
	amountEntry bool
	amount      int
}

// NewEngine builds an engine with the cursor on the first action
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid menu config: %w", err)
	}

	items := make([]item, len(cfg.Actions))
	for i, label := range cfg.Actions {
		k, _ := ParseKind(label)
		items[i] = item{label: label, kind: k}
	}

	return &Engine{cfg: cfg, items: items}, nil
}

// Advance moves the cursor circularly, or adjusts the candidate amount by
// one bet step while in amount entry. Amounts never drop below MinBet.
func (e *Engine) Advance(dir Direction) {
	if e.amountEntry {
		switch dir {
		case Up:
			e.amount += e.cfg.BetStep
		case Down:
			e.amount -= e.cfg.BetStep
			if e.amount < e.cfg.MinBet {
				e.amount = e.cfg.MinBet
			}
		}
		return
	}

	n := len(e.items)
	switch dir {
	case Up:
		e.cursor = (e.cursor - 1 + n) % n
	case Down:
		e.cursor = (e.cursor + 1) % n
	}
}

// Select confirms the highlighted action. It returns ready=true with the
// pending action once one is complete. Entering amount entry returns
// ready=false and no error. A rejected amount returns a *Rejection and
// leaves amount entry as it was.
func (e *Engine) Select(limits Limits) (PendingAction, bool, error) {
	selected := e.items[e.cursor]

	if !selected.kind.NeedsAmount() {
		return PendingAction{Kind: selected.kind}, true, nil
	}

	if !e.amountEntry {
		e.amountEntry = true
		e.amount = e.seed(selected.kind, limits.LastBet)
		return PendingAction{}, false, nil
	}

	if rej := e.validate(selected.kind, e.amount, limits); rej != nil {
		return PendingAction{}, false, rej
	}

	e.amountEntry = false
	return PendingAction{Kind: selected.kind, Amount: e.amount}, true, nil
}

// CancelAmountEntry returns to the action list without moving the cursor
func (e *Engine) CancelAmountEntry() error {
	if !e.amountEntry {
		return ErrNotInAmountEntry
	}
	e.amountEntry = false
	return nil
}

// Reset leaves amount entry, keeping the cursor where the player left it
func (e *Engine) Reset() {
	e.amountEntry = false
	e.amount = 0
}

// InAmountEntry reports whether Up/Down currently adjust the amount
func (e *Engine) InAmountEntry() bool {
	return e.amountEntry
}

// Cursor returns the highlighted index
func (e *Engine) Cursor() int {
	return e.cursor
}

// Amount returns the candidate amount
func (e *Engine) Amount() int {
	return e.amount
}

// Selected returns the highlighted action kind
func (e *Engine) Selected() Kind {
	return e.items[e.cursor].kind
}

// Len returns the number of actions in the list
func (e *Engine) Len() int {
	return len(e.items)
}

// View snapshots the menu for the display
func (e *Engine) View(balance int) display.MenuView {
	labels := make([]string, len(e.items))
	for i, it := range e.items {
		labels[i] = it.label
	}
	return display.MenuView{
		Labels:      labels,
		Cursor:      e.cursor,
		AmountEntry: e.amountEntry,
		Amount:      e.amount,
		Balance:     balance,
	}
}

// seed picks the first candidate amount. A call starts at the last bet
// exactly, which may be off the step grid after a short all-in. Other
// actions start at the larger of the last bet and the minimum, rounded up
// onto the grid.
func (e *Engine) seed(kind Kind, lastBet int) int {
	if kind == Call && lastBet > 0 {
		return lastBet
	}
	v := e.cfg.MinBet
	if lastBet > v {
		v = lastBet
	}
	step := e.cfg.BetStep
	return ((v + step - 1) / step) * step
}

func (e *Engine) validate(kind Kind, amount int, limits Limits) *Rejection {
	// A call only has to match the last bet; the grid does not apply.
	if kind == Call {
		if amount > limits.Balance {
			return &Rejection{Reason: InsufficientBalance, Line1: "Insufficient Chips", Line2: "Lower your bet"}
		}
		if amount != limits.LastBet {
			return &Rejection{Reason: InvalidCall, Line1: "Invalid Call", Line2: "Must match last bet"}
		}
		return nil
	}

	if amount%e.cfg.BetStep != 0 || amount < e.cfg.MinBet {
		return &Rejection{
			Reason: InvalidStep,
			Line1:  "Invalid Amount",
			Line2:  fmt.Sprintf("Use steps of %d", e.cfg.BetStep),
		}
	}
	if amount > limits.Balance {
		return &Rejection{Reason: InsufficientBalance, Line1: "Insufficient Chips", Line2: "Lower your bet"}
	}

	if kind == Raise && (amount <= limits.LastBet || amount-limits.LastBet < e.cfg.MinRaise) {
		return &Rejection{
			Reason: InvalidRaise,
			Line1:  "Invalid Raise",
			Line2:  fmt.Sprintf("Must raise +%d", e.cfg.MinRaise),
		}
	}

	return nil
}
