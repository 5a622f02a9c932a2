package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Gateway translates the WebSocket protocol into registry calls. It performs
// no membership check on join: any connected client may join any room id and
// broadcast to it, exactly like the system it models. The send path here is a
// pure ephemeral relay and never touches the message store; durable sends go
// through the HTTP message endpoint.
type Gateway struct {
	upgrader   websocket.Upgrader
	registry   *Registry
	bufferSize int
	log        *slog.Logger
}

func NewGateway(registry *Registry, bufferSize int, log *slog.Logger) *Gateway {
	return &Gateway{
		registry:   registry,
		bufferSize: bufferSize,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the connection and runs its read loop until the client
// goes away. Disconnect, however it happens, discards every room membership.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	session := newSession(conn, g.bufferSize, g.log)
	g.log.Debug("User connected", "session_id", session.ID())

	go session.writePump()
	g.readLoop(session)

	g.registry.LeaveAll(session)
	session.close()
	g.log.Debug("User disconnected", "session_id", session.ID())
}

func (g *Gateway) readLoop(s *Session) {
	s.conn.SetReadLimit(readLimit)
	_ = s.conn.SetReadDeadline(time.Now().Add(2 * pingEvery))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(2 * pingEvery))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}

		switch env.Event {
		case EventJoinRoom:
			var roomID string
			if err := json.Unmarshal(env.Payload, &roomID); err != nil || roomID == "" {
				continue
			}
			g.registry.Join(s, roomID)
			g.log.Debug("Session joined room",
				"session_id", s.ID(), "room_id", roomID)
		case EventSendMessage:
			var payload SendMessagePayload
			if err := json.Unmarshal(env.Payload, &payload); err != nil || payload.RoomID == "" {
				continue
			}
			g.registry.Broadcast(payload.RoomID, Envelope{
				Event:   EventReceiveMessage,
				Payload: payload.Message,
			})
		default:
			// Unknown events are ignored.
		}
	}
}
