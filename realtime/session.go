package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 5 * time.Second
	pingEvery    = 15 * time.Second
	readLimit    = 1 << 20
)

// Session is one live connection. Outbound delivery goes through a buffered
// channel drained by the write pump, so a broadcast never blocks on a slow
// receiver: when the buffer is full the event is dropped.
type Session struct {
	id        string
	conn      *websocket.Conn
	out       chan Envelope
	closed    chan struct{}
	closeOnce sync.Once
	log       *slog.Logger
}

func newSession(conn *websocket.Conn, bufferSize int, log *slog.Logger) *Session {
	return &Session{
		id:     uuid.NewString(),
		conn:   conn,
		out:    make(chan Envelope, bufferSize),
		closed: make(chan struct{}),
		log:    log,
	}
}

func (s *Session) ID() string { return s.id }

// Send queues an event for delivery. Best-effort: returns false when the
// session is gone or its buffer is full.
func (s *Session) Send(env Envelope) bool {
	select {
	case <-s.closed:
		return false
	default:
	}
	select {
	case s.out <- env:
		return true
	default:
		s.log.Debug("Session buffer full, dropping event",
			"session_id", s.id, "event", env.Event)
		return false
	}
}

// writePump owns all writes on the connection: queued events plus the
// keepalive pings. Exactly one writePump runs per session.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case env := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteJSON(env); err != nil {
				s.close()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(writeTimeout)); err != nil {
				s.close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.conn.Close()
	})
}
