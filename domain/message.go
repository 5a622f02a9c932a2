// This file defines Message entities and related rules.
// Messages are immutable once persisted and validated by the domain.
package domain

import (
	"strings"
	"time"

	"chatline/errors"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageText MessageType = "text"
	MessageFile MessageType = "file"
)

// Message represents one immutable chat entry. Exactly one of Content
// (non-empty, for text) or File (a retrievable URL, for file) is set.
type Message struct {
	ID        uuid.UUID
	ChatID    string
	Sender    PublicUser
	Type      MessageType
	Content   string
	File      string
	Chat      *Chat // resolved parent, populated on the send path only
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the content-xor-file invariant before persistence.
func (m Message) Validate() error {
	hasText := strings.TrimSpace(m.Content) != ""
	hasFile := m.File != ""
	switch {
	case m.ChatID == "":
		return errors.NewValidation("Invalid message data")
	case m.Type == MessageText && (!hasText || hasFile):
		return errors.NewValidation("Invalid message data")
	case m.Type == MessageFile && (!hasFile || hasText):
		return errors.NewValidation("Invalid message data")
	case m.Type != MessageText && m.Type != MessageFile:
		return errors.NewValidation("Invalid message data")
	}
	return nil
}
