package server

import (
	"encoding/json"
	"time"

	"jokerd/internal/deck"
	"jokerd/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	Token string `json:"token"`
}

type SelectTrumpData struct {
	Decision string    `json:"decision"` // suit | no_trump | redeal
	Suit     deck.Suit `json:"suit,omitempty"`
}

type MakeBetData struct {
	Amount int `json:"amount"`
}

type ThrowCardData struct {
	CardID        string           `json:"cardId"`
	JokerOption   game.JokerOption `json:"jokerOption,omitempty"`
	RequestedSuit deck.Suit        `json:"requestedSuit,omitempty"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Name     string `json:"name,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WaitingForPlayersData struct {
	Queued int `json:"queued"`
	Needed int `json:"needed"`
}

type DealerDrawData struct {
	RoomID     string          `json:"roomId"`
	DealerSeat int             `json:"dealerSeat"`
	Piles      [][]deck.Card   `json:"piles"`
	Players    []PlayerSummary `json:"players"`
}

type PlayerSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"isBot"`
}

type GameStartedData struct {
	RoomID string `json:"roomId"`
}

type TurnTimerData struct {
	PlayerID  string    `json:"playerId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type PulkaRecapData struct {
	Recap     *game.PulkaRecap `json:"recap"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

type PlayerReplacedData struct {
	PlayerID string `json:"playerId"`
	BotID    string `json:"botId"`
	BotName  string `json:"botName"`
}

type PlayerLeftData struct {
	PlayerID string `json:"playerId"`
}

type GameFinishedData struct {
	RoomID   string              `json:"roomId"`
	WinnerID string              `json:"winnerId"`
	Rankings []game.FinalRanking `json:"rankings"`
}
