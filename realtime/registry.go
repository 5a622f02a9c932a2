package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"

	"chatline/domain"
)

// Registry maps room ids to the set of sessions currently joined. It is the
// single owner of that state; all mutations go through its mutex. Membership
// is entirely client-driven and lives only for the life of the process.
type Registry struct {
	mu     sync.RWMutex
	log    *slog.Logger
	rooms  map[string]map[*Session]struct{}
	joined map[*Session]map[string]struct{} // session -> rooms it is in
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:    log,
		rooms:  make(map[string]map[*Session]struct{}),
		joined: make(map[*Session]map[string]struct{}),
	}
}

// Join adds the session to a room. Idempotent; a session may be in any
// number of rooms at once.
func (r *Registry) Join(s *Session, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = make(map[*Session]struct{})
	}
	r.rooms[roomID][s] = struct{}{}

	if _, ok := r.joined[s]; !ok {
		r.joined[s] = make(map[string]struct{})
	}
	r.joined[s][roomID] = struct{}{}
}

// Leave removes the session from one room, pruning empty room sets so the
// map does not grow without bound.
func (r *Registry) Leave(s *Session, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(s, roomID)
}

// LeaveAll discards every membership of a disconnected session.
func (r *Registry) LeaveAll(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomID := range r.joined[s] {
		r.leaveLocked(s, roomID)
	}
}

func (r *Registry) leaveLocked(s *Session, roomID string) {
	if members, ok := r.rooms[roomID]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
	if rooms, ok := r.joined[s]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.joined, s)
		}
	}
}

// Broadcast delivers the event to every session currently in the room.
// Best-effort: no acknowledgement, no retry, no persistence of missed
// events. Returns how many sessions accepted the event.
func (r *Registry) Broadcast(roomID string, env Envelope) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for s := range r.rooms[roomID] {
		if s.Send(env) {
			delivered++
		}
	}
	return delivered
}

// BroadcastMessage pushes a persisted message to the chat's room as a
// receiveMessage event. This is the optional bridge between the durable send
// path and live delivery (services.Broadcaster).
func (r *Registry) BroadcastMessage(chatID string, message domain.Message) {
	payload, err := json.Marshal(messagePayload(message))
	if err != nil {
		r.log.Warn("Marshalling broadcast message failed",
			"chat_id", chatID, "error", err)
		return
	}
	r.Broadcast(chatID, Envelope{Event: EventReceiveMessage, Payload: payload})
}

func messagePayload(m domain.Message) map[string]any {
	return map[string]any{
		"id":        m.ID.String(),
		"chat":      m.ChatID,
		"sender":    m.Sender,
		"type":      m.Type,
		"content":   m.Content,
		"file":      m.File,
		"createdAt": m.CreatedAt,
	}
}
