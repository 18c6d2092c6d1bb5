// Package protocol defines the JSON event frames exchanged between a station
// and the game backend. Every frame is a JSON object with an "event" tag.
package protocol

// Tag identifies the kind of frame
type Tag string

const (
	// Station -> Backend
	TagAddPlayer      Tag = "game_add_player"
	TagRegisterPlayer Tag = "register_player"
	TagGameUpdate     Tag = "game_update"

	// Backend -> Station
	TagAddPlayerAck      Tag = "game_add_player_ack"
	TagRegistrationAck   Tag = "registration_ack"
	TagRegisterPlayerAck Tag = "register_player_ack"
	TagGameStart         Tag = "game_start"
	TagGameUpdateAck     Tag = "game_update_ack"
	TagGameEnd           Tag = "game_end"
	TagError             Tag = "error"
)

// String returns the wire name of the tag
func (t Tag) String() string {
	return string(t)
}

// Station -> Backend frames

// Outbound is a frame the station sends
type Outbound interface {
	OutboundTag() Tag
}

// JoinRequest announces a card to the backend. Its tag is either
// TagAddPlayer or TagRegisterPlayer depending on the game phase.
type JoinRequest struct {
	Event  Tag    `json:"event"`
	CardID string `json:"cardId"`
}

// OutboundTag implements Outbound
func (m JoinRequest) OutboundTag() Tag { return m.Event }

// NewAddPlayer builds a game_add_player frame
func NewAddPlayer(cardID string) JoinRequest {
	return JoinRequest{Event: TagAddPlayer, CardID: cardID}
}

// NewRegisterPlayer builds a register_player frame
func NewRegisterPlayer(cardID string) JoinRequest {
	return JoinRequest{Event: TagRegisterPlayer, CardID: cardID}
}

// ActionUpdate proposes the player's action for the current turn
type ActionUpdate struct {
	Event  Tag    `json:"event"`
	Action string `json:"action"`
	Amount int    `json:"amount"`
	CardID string `json:"cardId"`
}

// OutboundTag implements Outbound
func (m ActionUpdate) OutboundTag() Tag { return m.Event }

// NewActionUpdate builds a game_update frame
func NewActionUpdate(action string, amount int, cardID string) ActionUpdate {
	return ActionUpdate{Event: TagGameUpdate, Action: action, Amount: amount, CardID: cardID}
}

// Backend -> Station events

// Event is a decoded inbound frame. The set of implementations is closed:
// only this package can add one, so switches over Event are exhaustive.
type Event interface {
	Tag() Tag
	inbound()
}

// AddPlayerAck confirms a game_add_player and assigns a seat
type AddPlayerAck struct {
	Position int `json:"position"`
}

// RegistrationAck reports registration progress for a card
type RegistrationAck struct {
	Name          string `json:"name"`
	IsRegistering *bool  `json:"is_registering"`
	PlayersNeeded int    `json:"players_needed"`
}

// StillRegistering reports whether registration remains open. A missing
// flag means it does.
func (e RegistrationAck) StillRegistering() bool {
	return e.IsRegistering == nil || *e.IsRegistering
}

// RegisterPlayerAck confirms a register_player sent by a registration station
type RegisterPlayerAck struct {
	Username string `json:"username"`
}

// GameStart starts a new round
type GameStart struct{}

// GameUpdateAck confirms a game_update and reports the table's last bet
type GameUpdateAck struct {
	Position *int `json:"position"`
	LastBet  int  `json:"last_bet"`
}

// PlayerBalance is one entry of a table update
type PlayerBalance struct {
	CardID  string `json:"cardId"`
	Balance *int   `json:"balance"`
}

// TableUpdate is the backend's broadcast of every player's balance
type TableUpdate struct {
	Players []PlayerBalance `json:"players"`
}

// GameEnd announces the winner of a game
type GameEnd struct {
	Winner string `json:"winner"`
	Pot    int    `json:"pot"`
}

// ErrorEvent carries a backend error message for the player
type ErrorEvent struct {
	Message string `json:"message"`
}

func (AddPlayerAck) Tag() Tag      { return TagAddPlayerAck }
func (RegistrationAck) Tag() Tag   { return TagRegistrationAck }
func (RegisterPlayerAck) Tag() Tag { return TagRegisterPlayerAck }
func (GameStart) Tag() Tag         { return TagGameStart }
func (GameUpdateAck) Tag() Tag     { return TagGameUpdateAck }
func (TableUpdate) Tag() Tag       { return TagGameUpdate }
func (GameEnd) Tag() Tag           { return TagGameEnd }
func (ErrorEvent) Tag() Tag        { return TagError }

func (AddPlayerAck) inbound()      {}
func (RegistrationAck) inbound()   {}
func (RegisterPlayerAck) inbound() {}
func (GameStart) inbound()         {}
func (GameUpdateAck) inbound()     {}
func (TableUpdate) inbound()       {}
func (GameEnd) inbound()           {}
func (ErrorEvent) inbound()        {}
