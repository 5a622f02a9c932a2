// Package realtime is the ephemeral delivery layer: a process-wide room
// registry and a WebSocket gateway. Nothing here is persisted; a restart
// starts from an empty registry and clients must rejoin.
package realtime

import "encoding/json"

// Client-to-server and server-to-client event names.
const (
	EventJoinRoom       = "joinRoom"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
)

// Envelope is the wire frame for every realtime event.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// SendMessagePayload carries a client's broadcast request. The message body
// is relayed verbatim to the room.
type SendMessagePayload struct {
	RoomID  string          `json:"roomId"`
	Message json.RawMessage `json:"message"`
}

func NewEnvelope(event string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Payload: data}, nil
}
