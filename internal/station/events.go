package station

import (
	"fmt"

	"github.com/pokeriot/station/internal/protocol"
)

// handleFrame decodes one inbound frame and applies it. Frames that fail to
// decode are dropped before they can touch the session.
func (s *Station) handleFrame(data []byte) {
	ev, err := s.decoder.Decode(data)
	if err != nil {
		s.logger.Warn("Dropping inbound frame", "error", err, "frame", string(data))
		return
	}
	s.apply(ev)
}

// apply is the server event interpreter. The player view is reconciled for
// every event whatever the phase; only game_start and game_end touch the
// turn session.
func (s *Station) apply(ev protocol.Event) {
	if s.view.Apply(ev, s.machine.TrackedCard()) {
		s.logger.Debug("Player view updated", "event", ev.Tag(),
			"balance", s.view.Balance, "last_bet", s.view.LastBet, "position", s.view.Position)
	}

	switch e := ev.(type) {
	case protocol.AddPlayerAck:
		s.notify("Joined Game", fmt.Sprintf("Position: %d", e.Position))

	case protocol.RegistrationAck:
		name := s.view.Name
		if name == "" {
			name = "Player"
		}
		s.logger.Info("Registration acknowledged", "name", name,
			"registering", s.view.Registering, "players_needed", s.view.PlayersNeeded)
		s.notify("Registered:", name)

	case protocol.RegisterPlayerAck:
		username := e.Username
		if username == "" {
			username = "Unknown"
		}
		s.notify("Registered:", username)

	case protocol.GameStart:
		s.machine.ResetRound()
		s.menu.Reset()
		sess := s.machine.Session()
		s.logger.Info("Round started", "phase", sess.Phase, "card", sess.BoundCard, "cycle", sess.CycleID)
		s.notify("Game started", "Your turn if first")

	case protocol.GameUpdateAck:
		s.notify("Update ACK", fmt.Sprintf("Pos:%d Bet:%d", s.view.Position, e.LastBet))

	case protocol.TableUpdate:
		// balance only; the menu picks it up on the next redraw

	case protocol.GameEnd:
		s.logger.Info("Game over", "winner", e.Winner, "pot", e.Pot)
		s.machine.EndGame()
		s.notify("Winner:", fmt.Sprintf("%s Pot: %d", e.Winner, e.Pot))

	case protocol.ErrorEvent:
		s.logger.Warn("Backend error", "message", e.Message)
		s.notify("Error:", e.Message)

	default:
		s.logger.Warn("Unhandled event", "event", ev.Tag())
	}
}
