package session

import (
	"github.com/pokeriot/station/internal/card"
	"github.com/pokeriot/station/internal/menu"
	"github.com/pokeriot/station/internal/protocol"
)

// PlayerView caches what the backend last told this station about its
// player. It is only changed by Apply.
type PlayerView struct {
	Balance       int
	LastBet       int
	Position      int // -1 until the backend assigns a seat
	Name          string
	Registering   bool
	PlayersNeeded int
}

// NewPlayerView creates a view with the configured starting balance
func NewPlayerView(initialBalance int) PlayerView {
	return PlayerView{
		Balance:  initialBalance,
		Position: -1,
	}
}

// Limits returns the values amount validation needs
func (v PlayerView) Limits() menu.Limits {
	return menu.Limits{Balance: v.Balance, LastBet: v.LastBet}
}

// Apply reconciles the view with a server event. self is the card whose
// balance this station tracks; entries for other cards are ignored. It
// reports whether anything changed.
func (v *PlayerView) Apply(ev protocol.Event, self card.ID) bool {
	before := *v

	switch e := ev.(type) {
	case protocol.AddPlayerAck:
		v.Position = e.Position
	case protocol.RegistrationAck:
		if e.Name != "" {
			v.Name = e.Name
		}
		v.Registering = e.StillRegistering()
		v.PlayersNeeded = e.PlayersNeeded
	case protocol.GameUpdateAck:
		v.LastBet = e.LastBet
		if e.Position != nil {
			v.Position = *e.Position
		}
	case protocol.TableUpdate:
		for _, p := range e.Players {
			if self.Matches(p.CardID) && p.Balance != nil {
				v.Balance = *p.Balance
			}
		}
	case protocol.GameStart:
		v.Registering = false
	}

	return before != *v
}
