// Package session implements the turn cycle of a station: bind a card,
// propose an action, and finalize it when the same card is scanned again.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pokeriot/station/internal/card"
	"github.com/pokeriot/station/internal/menu"
	"github.com/pokeriot/station/internal/protocol"
)

// ErrNotActing is returned when an action is committed outside Acting
var ErrNotActing = errors.New("no card bound for this turn")

// Phase is the station's position in the turn cycle
type Phase int

const (
	Idle Phase = iota
	Acting
	AwaitingReconfirm
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Acting:
		return "acting"
	case AwaitingReconfirm:
		return "awaiting_reconfirm"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ResetPolicy decides what a round reset does with the card binding
type ResetPolicy string

const (
	// Continuity rebinds the card that joined the game, so the menu is armed
	// without another scan.
	Continuity ResetPolicy = "continuity"
	// Rescan returns to Idle; the player scans to act again.
	Rescan ResetPolicy = "rescan"
)

// ParseResetPolicy validates a configured policy name
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch ResetPolicy(s) {
	case Continuity, Rescan:
		return ResetPolicy(s), nil
	case "":
		return Continuity, nil
	}
	return "", fmt.Errorf("unknown round reset policy: %q", s)
}

// Session is the binding between one card and one pending action cycle
type Session struct {
	Phase           Phase
	BoundCard       card.ID
	SeatCard        card.ID
	ActionCommitted bool
	Pending         *menu.PendingAction
	CycleID         string
}

// Notice is a two-line message for the display
type Notice struct {
	Line1 string
	Line2 string
}

// Outcome lists the effects of a transition, in the order the caller must
// perform them: send frames first, then show the notice.
type Outcome struct {
	Send   []protocol.Outbound
	Notice *Notice
}

func notice(line1, line2 string) *Notice {
	return &Notice{Line1: line1, Line2: line2}
}

// Machine is the turn session state machine. It is not safe for
// concurrent use; the control loop owns it.
type Machine struct {
	session Session
	joined  map[card.ID]bool
	policy  ResetPolicy
	newID   func() string
}

// NewMachine creates a machine in Idle
func NewMachine(policy ResetPolicy) *Machine {
	if policy == "" {
		policy = Continuity
	}
	return &Machine{
		joined: make(map[card.ID]bool),
		policy: policy,
		newID:  func() string { return uuid.NewString()[:8] },
	}
}

// Session returns a copy of the current session
func (m *Machine) Session() Session {
	s := m.session
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	return s
}

// Phase returns the current phase
func (m *Machine) Phase() Phase {
	return m.session.Phase
}

// Policy returns the round reset policy
func (m *Machine) Policy() ResetPolicy {
	return m.policy
}

// Joined reports whether id already joined the current game
func (m *Machine) Joined(id card.ID) bool {
	return m.joined[id]
}

// Scan handles a card presented to the reader. registering selects the join
// event used for a card's first appearance and keeps the menu disarmed.
func (m *Machine) Scan(id card.ID, registering bool) Outcome {
	switch m.session.Phase {
	case Idle:
		return m.bind(id, registering)
	case AwaitingReconfirm:
		return m.reconfirm(id)
	default:
		return Outcome{}
	}
}

func (m *Machine) bind(id card.ID, registering bool) Outcome {
	var out Outcome

	if !m.joined[id] {
		m.joined[id] = true
		m.session.SeatCard = id
		if registering {
			out.Send = append(out.Send, protocol.NewRegisterPlayer(id.String()))
		} else {
			out.Send = append(out.Send, protocol.NewAddPlayer(id.String()))
		}
	}

	if registering {
		out.Notice = notice("Registering", "Wait for game start")
		return out
	}

	m.session.Phase = Acting
	m.session.BoundCard = id
	m.session.CycleID = m.newID()
	out.Notice = notice("Card scanned", "Choose action")
	return out
}

func (m *Machine) reconfirm(id card.ID) Outcome {
	if id != m.session.BoundCard {
		return Outcome{Notice: notice("Wrong card", "Scan again")}
	}

	m.clearCycle()
	return Outcome{Notice: notice("Action Confirmed", "Waiting...")}
}

// Commit stores the action produced by the menu and sends it at once,
// without waiting for the backend, then asks for the card again.
func (m *Machine) Commit(action menu.PendingAction) (Outcome, error) {
	if m.session.Phase != Acting {
		return Outcome{}, fmt.Errorf("%w: phase %s", ErrNotActing, m.session.Phase)
	}

	m.session.Pending = &action
	m.session.ActionCommitted = true
	m.session.Phase = AwaitingReconfirm

	frame := protocol.NewActionUpdate(action.Kind.String(), action.Amount, m.session.BoundCard.String())
	return Outcome{
		Send:   []protocol.Outbound{frame},
		Notice: notice("Confirm Action", "Scan again"),
	}, nil
}

// Cancel drops the binding before an action was committed
func (m *Machine) Cancel() Outcome {
	if m.session.Phase != Acting {
		return Outcome{}
	}
	m.clearCycle()
	return Outcome{Notice: notice("Cancelled", "Scan card")}
}

// ResetRound is applied when the backend starts a round. Pending and
// committed state is always cleared; the policy decides the binding.
func (m *Machine) ResetRound() {
	m.clearCycle()

	if m.policy == Continuity && !m.session.SeatCard.IsZero() {
		m.session.Phase = Acting
		m.session.BoundCard = m.session.SeatCard
		m.session.CycleID = m.newID()
	}
}

// EndGame forgets which cards joined, so the next game starts with a fresh
// join. The phase is left alone until the next round reset.
func (m *Machine) EndGame() {
	m.joined = make(map[card.ID]bool)
	m.session.SeatCard = card.None
}

// TrackedCard is the card whose balance this station displays
func (m *Machine) TrackedCard() card.ID {
	if !m.session.BoundCard.IsZero() {
		return m.session.BoundCard
	}
	return m.session.SeatCard
}

func (m *Machine) clearCycle() {
	m.session.Phase = Idle
	m.session.BoundCard = card.None
	m.session.ActionCommitted = false
	m.session.Pending = nil
	m.session.CycleID = ""
}
