package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeAuth        MessageType = "auth"
	MessageTypeFindGame    MessageType = "find_game"
	MessageTypeLeaveQueue  MessageType = "leave_queue"
	MessageTypeLeaveGame   MessageType = "leave_game"
	MessageTypeSelectTrump MessageType = "select_trump"
	MessageTypeMakeBet     MessageType = "make_bet"
	MessageTypeThrowCard   MessageType = "throw_card"

	// Server to client messages
	MessageTypeAuthResponse      MessageType = "auth_response"
	MessageTypeWaitingForPlayers MessageType = "waiting_for_players"
	MessageTypeDealerDraw        MessageType = "dealer_draw"
	MessageTypeGameStarted       MessageType = "game_started"
	MessageTypeGameState         MessageType = "game_state"
	MessageTypeTurnTimer         MessageType = "turn_timer"
	MessageTypePulkaRecap        MessageType = "pulka_recap"
	MessageTypePlayerReplaced    MessageType = "player_replaced"
	MessageTypePlayerLeft        MessageType = "player_left"
	MessageTypeGameFinished      MessageType = "game_finished"
	MessageTypeError             MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
