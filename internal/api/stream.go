package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"laxyguide/pkg/apisession"
)

const (
	// clientTTL evicts rendering clients that have gone quiet.
	clientTTL = 10 * time.Minute
	// writeWait bounds a single websocket write.
	writeWait = 5 * time.Second
	// clientBuffer is the per-client outbound queue; a client that falls
	// this far behind is dropped.
	clientBuffer = 16
)

// StreamMessage is one frame of the state stream.
type StreamMessage struct {
	Type string `json:"type"` // "hello", "guide", "player", "sync"
	Data any    `json:"data"`
}

type clientState struct {
	remoteAddr  string
	connectedAt time.Time
	send        chan StreamMessage
}

// StateStream pushes state snapshots to connected rendering clients over
// websockets. Every mutation of guide, player, or sync state broadcasts a
// typed frame; clients render from the stream instead of polling.
type StateStream struct {
	upgrader websocket.Upgrader
	sessions *apisession.Store[clientState]

	mu      sync.Mutex
	clients map[string]*clientState
}

// NewStateStream creates a StateStream.
func NewStateStream() *StateStream {
	return &StateStream{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The engine binds to loopback; the rendering layer may load
			// from a file:// or dev-server origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: apisession.New(clientTTL, func() *clientState {
			return &clientState{connectedAt: time.Now()}
		}),
		clients: make(map[string]*clientState),
	}
}

// HandleStream handles GET /api/stream, upgrading to a websocket and
// streaming state frames until the client disconnects.
func (s *StateStream) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	id, state := s.sessions.Issue()
	state.remoteAddr = r.RemoteAddr
	state.send = make(chan StreamMessage, clientBuffer)

	s.mu.Lock()
	s.clients[id] = state
	s.mu.Unlock()

	slog.Info("Rendering client connected", "session", id, "remote", r.RemoteAddr)

	if err := conn.WriteJSON(StreamMessage{Type: "hello", Data: map[string]string{"session_id": id}}); err != nil {
		s.drop(id, conn)
		return
	}

	go s.writePump(id, state, conn)
	s.readPump(id, state, conn)
}

// writePump forwards queued frames to the socket.
func (s *StateStream) writePump(id string, c *clientState, conn *websocket.Conn) {
	for msg := range c.send {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			break
		}
		if err := conn.WriteJSON(msg); err != nil {
			slog.Debug("Websocket write failed", "session", id, "error", err)
			break
		}
	}
	conn.Close()
}

// readPump discards inbound frames (control is HTTP-only) and keeps the
// session alive until the client goes away.
func (s *StateStream) readPump(id string, c *clientState, conn *websocket.Conn) {
	defer s.drop(id, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		s.sessions.Get(id)
	}
}

func (s *StateStream) drop(id string, conn *websocket.Conn) {
	s.mu.Lock()
	c, ok := s.clients[id]
	if ok {
		delete(s.clients, id)
		close(c.send)
	}
	s.mu.Unlock()

	s.sessions.Drop(id)
	conn.Close()
	if ok {
		slog.Info("Rendering client disconnected", "session", id)
	}
}

// Broadcast queues a frame for every connected client. Clients whose queue
// is full are skipped; the next frame supersedes the lost one anyway.
func (s *StateStream) Broadcast(msgType string, data any) {
	msg := StreamMessage{Type: msgType, Data: data}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		select {
		case c.send <- msg:
		default:
			slog.Debug("Dropping frame for slow client", "session", id, "type", msgType)
		}
	}
}

// ClientCount returns the number of connected rendering clients.
func (s *StateStream) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
