package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMessage_Validate_Text(t *testing.T) {
	req := require.New(t)
	message := Message{
		ID:      uuid.New(),
		ChatID:  uuid.NewString(),
		Type:    MessageText,
		Content: "hi",
	}
	req.NoError(message.Validate())
}

func TestMessage_Validate_File(t *testing.T) {
	req := require.New(t)
	message := Message{
		ID:     uuid.New(),
		ChatID: uuid.NewString(),
		Type:   MessageFile,
		File:   "/uploads/multimedia/1_abc.png",
	}
	req.NoError(message.Validate())
}

func TestMessage_Validate_Exactly_One_Of_Content_Or_File(t *testing.T) {
	req := require.New(t)
	chatID := uuid.NewString()

	// Neither content nor file
	empty := Message{ID: uuid.New(), ChatID: chatID, Type: MessageText}
	req.Error(empty.Validate())

	// Whitespace-only content counts as empty
	blank := Message{ID: uuid.New(), ChatID: chatID, Type: MessageText, Content: "   "}
	req.Error(blank.Validate())

	// Both content and file
	both := Message{
		ID: uuid.New(), ChatID: chatID, Type: MessageFile,
		Content: "hi", File: "/uploads/multimedia/1_abc.png",
	}
	req.Error(both.Validate())

	// Missing chat reference
	orphan := Message{ID: uuid.New(), Type: MessageText, Content: "hi"}
	req.Error(orphan.Validate())
}
