// Package menu implements the station's action menu: cursor movement over
// the action list, wager amount entry and client-side validation.
package menu

import (
	"fmt"
	"strings"
)

// Kind is a poker action the station can propose
type Kind string

const (
	Fold  Kind = "fold"
	Check Kind = "check"
	Call  Kind = "call"
	Bet   Kind = "bet"
	Raise Kind = "raise"
)

// Kinds lists every supported action kind
var Kinds = []Kind{Fold, Check, Call, Bet, Raise}

// ParseKind maps a menu label to its kind, ignoring case
func ParseKind(label string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(label)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown action: %q", label)
}

// NeedsAmount reports whether the action carries a wager
func (k Kind) NeedsAmount() bool {
	switch k {
	case Call, Bet, Raise:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// PendingAction is the player's proposed move for the current turn
type PendingAction struct {
	Kind   Kind
	Amount int
}

func (a PendingAction) String() string {
	if a.Kind.NeedsAmount() {
		return fmt.Sprintf("%s %d", a.Kind, a.Amount)
	}
	return string(a.Kind)
}

// Limits is the server-reported state an amount is validated against
type Limits struct {
	Balance int
	LastBet int
}

// Reason classifies why an amount was rejected
type Reason int

const (
	InsufficientBalance Reason = iota
	InvalidRaise
	InvalidCall
	InvalidStep
)

// Rejection is returned when a candidate amount breaks a betting rule. It is
// shown to the player; nothing is sent.
type Rejection struct {
	Reason Reason
	Line1  string
	Line2  string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Line1, r.Line2)
}
