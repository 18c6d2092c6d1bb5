package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalOutbound(t *testing.T) {
	t.Run("join", func(t *testing.T) {
		data, err := Marshal(NewAddPlayer("A1B2"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"event":"game_add_player","cardId":"A1B2"}`, string(data))
	})

	t.Run("register", func(t *testing.T) {
		data, err := Marshal(NewRegisterPlayer("A1B2"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"event":"register_player","cardId":"A1B2"}`, string(data))
	})

	t.Run("action carries the card id", func(t *testing.T) {
		data, err := Marshal(NewActionUpdate("fold", 0, "A1B2"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"event":"game_update","action":"fold","amount":0,"cardId":"A1B2"}`, string(data))
	})
}

func TestDecodeEvents(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	yes, no := true, false
	five := 5
	seat := 3

	tests := []struct {
		name  string
		frame string
		want  Event
	}{
		{"add player ack", `{"event":"game_add_player_ack","position":2}`, AddPlayerAck{Position: 2}},
		{"registration ack", `{"event":"registration_ack","name":"Ana","is_registering":false,"players_needed":2}`,
			RegistrationAck{Name: "Ana", IsRegistering: &no, PlayersNeeded: 2}},
		{"registration ack still open", `{"event":"registration_ack","is_registering":true}`,
			RegistrationAck{IsRegistering: &yes}},
		{"register player ack", `{"event":"register_player_ack","username":"bob"}`, RegisterPlayerAck{Username: "bob"}},
		{"game start", `{"event":"game_start"}`, GameStart{}},
		{"update ack", `{"event":"game_update_ack","position":3,"last_bet":40}`, GameUpdateAck{Position: &seat, LastBet: 40}},
		{"table update", `{"event":"game_update","players":[{"cardId":"A1B2","balance":5},{"cardId":"FFEE"}]}`,
			TableUpdate{Players: []PlayerBalance{{CardID: "A1B2", Balance: &five}, {CardID: "FFEE"}}}},
		{"game end", `{"event":"game_end","winner":"Ana","pot":120}`, GameEnd{Winner: "Ana", Pot: 120}},
		{"error", `{"event":"error","message":"Not your turn"}`, ErrorEvent{Message: "Not your turn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := d.Decode([]byte(tt.frame))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev)
			assert.Equal(t, tt.want.Tag(), ev.Tag())
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	d, err := NewDecoder()
	require.NoError(t, err)

	tests := []struct {
		name  string
		frame string
		err   error
	}{
		{"not json", `{"event":`, ErrMalformed},
		{"not an object", `["game_start"]`, ErrMalformed},
		{"missing event", `{"position":1}`, ErrMissingEvent},
		{"event not a string", `{"event":7}`, ErrMissingEvent},
		{"unknown event", `{"event":"table_chat","text":"hi"}`, ErrUnknownEvent},
		{"outbound-only tag", `{"event":"game_add_player","cardId":"A1B2"}`, ErrUnknownEvent},
		{"ack without position", `{"event":"game_add_player_ack"}`, ErrInvalidPayload},
		{"negative bet", `{"event":"game_update_ack","last_bet":-10}`, ErrInvalidPayload},
		{"players not a list", `{"event":"game_update","players":{"cardId":"A1B2"}}`, ErrInvalidPayload},
		{"balance not a number", `{"event":"game_update","players":[{"cardId":"A1B2","balance":"lots"}]}`, ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := d.Decode([]byte(tt.frame))
			assert.Nil(t, ev)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRegistrationAckDefaultsToOpen(t *testing.T) {
	var ack RegistrationAck
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ana"}`), &ack))
	assert.True(t, ack.StillRegistering())
}
