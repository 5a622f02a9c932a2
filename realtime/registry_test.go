package realtime

import (
	"encoding/json"
	"log/slog"
	"testing"

	"chatline/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testSession builds a session without a connection; Send only touches the
// outbound channel, so broadcasts can be observed by reading session.out.
func testSession(buffer int) *Session {
	return newSession(nil, buffer, testLogger())
}

func roomSize(r *Registry, roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

func Test_Broadcast_Reaches_Joined_Sessions(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())

	alice := testSession(4)
	bob := testSession(4)
	outsider := testSession(4)

	registry.Join(alice, "room-1")
	registry.Join(bob, "room-1")
	registry.Join(outsider, "room-2")

	env, err := NewEnvelope(EventReceiveMessage, "hi")
	req.NoError(err)
	req.Equal(2, registry.Broadcast("room-1", env))

	req.Len(alice.out, 1)
	req.Len(bob.out, 1)
	req.Empty(outsider.out)

	delivered := <-alice.out
	req.Equal(EventReceiveMessage, delivered.Event)
	req.JSONEq(`"hi"`, string(delivered.Payload))
}

func Test_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := testSession(4)

	registry.Join(alice, "room-1")
	registry.Join(alice, "room-1")
	req.Equal(1, roomSize(registry, "room-1"))

	env, err := NewEnvelope(EventReceiveMessage, "hi")
	req.NoError(err)
	req.Equal(1, registry.Broadcast("room-1", env))
	req.Len(alice.out, 1)
}

func Test_Session_In_Multiple_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := testSession(4)

	registry.Join(alice, "room-1")
	registry.Join(alice, "room-2")

	env, err := NewEnvelope(EventReceiveMessage, "hi")
	req.NoError(err)
	req.Equal(1, registry.Broadcast("room-1", env))
	req.Equal(1, registry.Broadcast("room-2", env))
	req.Len(alice.out, 2)
}

func Test_Leave_And_LeaveAll(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := testSession(4)
	bob := testSession(4)

	registry.Join(alice, "room-1")
	registry.Join(alice, "room-2")
	registry.Join(bob, "room-1")

	registry.Leave(alice, "room-1")
	env, err := NewEnvelope(EventReceiveMessage, "hi")
	req.NoError(err)
	req.Equal(1, registry.Broadcast("room-1", env))
	req.Empty(alice.out)

	registry.LeaveAll(alice)
	req.Equal(0, registry.Broadcast("room-2", env))

	// Empty room sets are pruned
	req.Equal(0, roomSize(registry, "room-2"))
	req.Equal(1, roomSize(registry, "room-1"))
}

func Test_Broadcast_Skips_Full_And_Closed_Sessions(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())

	full := testSession(1)
	closed := testSession(4)
	closed.closeOnce.Do(func() { close(closed.closed) })

	registry.Join(full, "room-1")
	registry.Join(closed, "room-1")

	env, err := NewEnvelope(EventReceiveMessage, "hi")
	req.NoError(err)

	// First event fills the one-slot buffer, second one is dropped
	req.Equal(1, registry.Broadcast("room-1", env))
	req.Equal(0, registry.Broadcast("room-1", env))
	req.Len(full.out, 1)
}

func Test_Broadcast_Message_Bridge(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger())
	alice := testSession(4)
	registry.Join(alice, "chat-1")

	message := domain.Message{
		ID:      uuid.New(),
		ChatID:  "chat-1",
		Sender:  domain.PublicUser{ID: "u1", Name: "Alice"},
		Type:    domain.MessageText,
		Content: "hi",
	}
	registry.BroadcastMessage("chat-1", message)

	req.Len(alice.out, 1)
	delivered := <-alice.out
	req.Equal(EventReceiveMessage, delivered.Event)

	var payload map[string]any
	req.NoError(json.Unmarshal(delivered.Payload, &payload))
	req.Equal(message.ID.String(), payload["id"])
	req.Equal("chat-1", payload["chat"])
	req.Equal("hi", payload["content"])
}
