package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Server is the WebSocket front door. It owns the connection registry
// and delivers the orchestrator's outbound messages by connection id.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[string]*Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	orch        *Orchestrator
	httpServer  *http.Server
}

// NewServer creates a new WebSocket server
func NewServer(addr string, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[string]*Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetOrchestrator wires the game orchestrator. Must be called before
// Start; the orchestrator in turn holds this server as its Sender.
func (s *Server) SetOrchestrator(orch *Orchestrator) {
	s.orch = orch
}

// Start starts the WebSocket server. It blocks until Stop is called or
// the listener fails.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the WebSocket server
func (s *Server) Stop(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for _, conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Send delivers a message to a connection by id. Unknown ids are
// dropped; the seat is either gone or already handed to a bot.
func (s *Server) Send(connID string, msg *Message) {
	s.mu.RLock()
	conn, ok := s.connections[connID]
	s.mu.RUnlock()
	if !ok {
		s.logger.Debug("message for unknown connection dropped", "connId", connID, "type", msg.Type)
		return
	}

	if err := conn.SendMessage(msg); err != nil {
		s.logger.Error("Failed to send message to client", "error", err, "player", conn.Player().ID)
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.orch)

	s.mu.Lock()
	s.connections[client.ID()] = client
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "connId", client.ID(), "total", total)

	client.Start()

	go func() {
		<-client.ctx.Done()
		s.mu.Lock()
		delete(s.connections, client.ID())
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "connId", client.ID(), "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// ConnectedPlayers returns the authenticated player ids currently online.
func (s *Server) ConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for _, conn := range s.connections {
		if id := conn.Player().ID; id != "" {
			players = append(players, id)
		}
	}
	return players
}
