package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. A 10 MiB audio clip grows to
	// roughly 14 MiB in base64, plus the JSON envelope.
	maxMessageSize = 16 << 20
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Hub tracks the active JSON-RPC sessions so shutdown can close them.
type Hub struct {
	sessions   map[string]*Session
	register   chan *Session
	unregister chan *Session

	mu     sync.RWMutex
	logger *zap.Logger
}

// NewHub creates a session hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]*Session),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		logger:     logger,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case session := <-h.register:
			h.mu.Lock()
			h.sessions[session.id] = session
			h.mu.Unlock()
			h.logger.Info("Session registered", zap.String("session_id", session.id))

		case session := <-h.unregister:
			h.mu.Lock()
			delete(h.sessions, session.id)
			h.mu.Unlock()
			h.logger.Info("Session unregistered", zap.String("session_id", session.id))
		}
	}
}

// CloseAll cancels every active session. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, session := range h.sessions {
		session.cancel()
		session.conn.Close()
	}
}

// Session is one WebSocket connection speaking JSON-RPC. Each request
// dispatches in its own goroutine so multiple pipeline runs (including
// runs for the same access key) stay in flight concurrently; closing the
// socket cancels the session context and aborts outstanding runs.
//
// The send channel is never closed: a dispatch goroutine may outlive the
// connection and still call reply, which bails out on the cancelled
// context instead.
type Session struct {
	id      string
	hub     *Hub
	conn    *websocket.Conn
	handler *Handler
	send    chan []byte
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// HandleWebSocket upgrades an echo request into a JSON-RPC session.
func HandleWebSocket(hub *Hub, handler *Handler, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := &Session{
		id:      uuid.NewString(),
		hub:     hub,
		conn:    conn,
		handler: handler,
		send:    make(chan []byte, 64),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	session.hub.register <- session

	go session.writePump()
	go session.readPump()

	return nil
}

// readPump reads JSON-RPC requests off the socket.
func (s *Session) readPump() {
	defer func() {
		s.cancel()
		s.hub.unregister <- s
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error("WebSocket error", zap.Error(err))
			}
			return
		}

		var req Request
		if err := json.Unmarshal(message, &req); err != nil {
			s.reply(NewError(nil, CodeParseError, "parse error: "+err.Error(), nil))
			continue
		}

		go func() {
			s.reply(s.handler.Dispatch(s.ctx, &req))
		}()
	}
}

func (s *Session) reply(resp Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to marshal response", zap.Error(err))
		return
	}
	select {
	case s.send <- payload:
	case <-s.ctx.Done():
	}
}

// writePump writes responses and pings to the socket.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-s.ctx.Done():
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
