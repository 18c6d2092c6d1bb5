package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pokeriot/station/internal/protocol"
)

func intPtr(v int) *int { return &v }

func TestPlayerViewApply(t *testing.T) {
	t.Run("table update only touches our own balance", func(t *testing.T) {
		v := NewPlayerView(9999)
		changed := v.Apply(protocol.TableUpdate{Players: []protocol.PlayerBalance{
			{CardID: "FFEE", Balance: intPtr(10)},
			{CardID: "a1b2", Balance: intPtr(480)},
		}}, cardA)

		assert.True(t, changed)
		assert.Equal(t, 480, v.Balance)
	})

	t.Run("entry without balance keeps the cached value", func(t *testing.T) {
		v := NewPlayerView(300)
		changed := v.Apply(protocol.TableUpdate{Players: []protocol.PlayerBalance{{CardID: "A1B2"}}}, cardA)
		assert.False(t, changed)
		assert.Equal(t, 300, v.Balance)
	})

	t.Run("unbound station ignores balances", func(t *testing.T) {
		v := NewPlayerView(300)
		v.Apply(protocol.TableUpdate{Players: []protocol.PlayerBalance{{CardID: "", Balance: intPtr(1)}}}, "")
		assert.Equal(t, 300, v.Balance)
	})

	t.Run("update ack reconciles bet and seat", func(t *testing.T) {
		v := NewPlayerView(100)
		v.Apply(protocol.GameUpdateAck{Position: intPtr(4), LastBet: 30}, cardA)
		assert.Equal(t, 30, v.LastBet)
		assert.Equal(t, 4, v.Position)

		v.Apply(protocol.GameUpdateAck{LastBet: 50}, cardA)
		assert.Equal(t, 50, v.LastBet)
		assert.Equal(t, 4, v.Position, "missing position keeps the seat")
	})

	t.Run("registration ack", func(t *testing.T) {
		no := false
		v := NewPlayerView(100)
		v.Apply(protocol.RegistrationAck{Name: "Ana", PlayersNeeded: 2}, cardA)
		assert.True(t, v.Registering)
		assert.Equal(t, "Ana", v.Name)

		v.Apply(protocol.RegistrationAck{IsRegistering: &no}, cardA)
		assert.False(t, v.Registering)
		assert.Equal(t, "Ana", v.Name)
	})

	t.Run("add player ack assigns a seat", func(t *testing.T) {
		v := NewPlayerView(100)
		assert.Equal(t, -1, v.Position)
		v.Apply(protocol.AddPlayerAck{Position: 2}, cardA)
		assert.Equal(t, 2, v.Position)
	})

	t.Run("errors change nothing", func(t *testing.T) {
		v := NewPlayerView(100)
		assert.False(t, v.Apply(protocol.ErrorEvent{Message: "nope"}, cardA))
	})
}
