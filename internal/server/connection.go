package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"jokerd/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection to a client
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	orch      *Orchestrator

	playerID   string
	playerName string
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, orch *Orchestrator) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan *Message, 256),
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
		orch:   orch,
	}
}

// ID returns the connection id used in seat-to-connection mappings.
func (c *Connection) ID() string {
	return c.id
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with an authenticated player.
func (c *Connection) SetPlayer(player PlayerIdentity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = player.ID
	c.playerName = player.Name
}

// Player returns the associated player identity; the id is empty before
// authentication.
func (c *Connection) Player() PlayerIdentity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return PlayerIdentity{ID: c.playerID, Name: c.playerName}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		c.orch.Disconnect(context.Background(), c.Player().ID, c.id)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.Player().ID)

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeFindGame:
		player, ok := c.requireAuth()
		if !ok {
			return
		}
		if err := c.orch.HandleFindGame(c.ctx, player, c.id); err != nil {
			c.sendActionError(err)
		}

	case MessageTypeLeaveQueue:
		player, ok := c.requireAuth()
		if !ok {
			return
		}
		if err := c.orch.HandleLeaveQueue(c.ctx, player.ID); err != nil {
			c.sendActionError(err)
		}

	case MessageTypeLeaveGame:
		player, ok := c.requireAuth()
		if !ok {
			return
		}
		if err := c.orch.HandleLeaveGame(c.ctx, player.ID); err != nil {
			c.sendActionError(err)
		}

	case MessageTypeSelectTrump:
		var data SelectTrumpData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse trump selection")
			return
		}
		player, ok := c.requireAuth()
		if !ok {
			return
		}
		if err := c.orch.HandleSelectTrump(c.ctx, player.ID, data); err != nil {
			c.sendActionError(err)
		}

	case MessageTypeMakeBet:
		var data MakeBetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse bet data")
			return
		}
		player, ok := c.requireAuth()
		if !ok {
			return
		}
		if err := c.orch.HandleMakeBet(c.ctx, player.ID, data); err != nil {
			c.sendActionError(err)
		}

	case MessageTypeThrowCard:
		var data ThrowCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse card data")
			return
		}
		player, ok := c.requireAuth()
		if !ok {
			return
		}
		if err := c.orch.HandleThrowCard(c.ctx, player.ID, data); err != nil {
			c.sendActionError(err)
		}

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleAuth(data AuthData) {
	player, err := c.orch.Authenticate(c.ctx, data.Token)
	if err != nil {
		response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
			Success: false,
			Error:   err.Error(),
		})
		_ = c.SendMessage(response)
		return
	}

	c.SetPlayer(player)
	c.logger.Info("player authenticated", "playerId", player.ID, "name", player.Name)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: player.ID,
		Name:     player.Name,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) requireAuth() (PlayerIdentity, bool) {
	player := c.Player()
	if player.ID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return PlayerIdentity{}, false
	}
	return player, true
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

// sendActionError maps rule violations onto their wire codes; anything
// else is reported as an internal error.
func (c *Connection) sendActionError(err error) {
	if re, ok := game.AsRuleError(err); ok {
		c.sendError(re.Code, re.Message)
		return
	}
	c.sendError("internal_error", err.Error())
}
