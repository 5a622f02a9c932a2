package services

import (
	"io"
	"log/slog"
	"strings"

	"chatline/domain"
	"chatline/errors"
	"chatline/repositories"
	"chatline/storage"
)

// Attachment is an inbound binary with its original filename.
type Attachment struct {
	Filename string
	Reader   io.Reader
}

// SendMessageCommand is the transport-agnostic input of the pipeline.
type SendMessageCommand struct {
	ChatID     string
	SenderID   string
	Content    string
	Attachment *Attachment
}

type IMessageService interface {
	SendMessage(cmd SendMessageCommand) (domain.Message, error)
	ListMessages(chatID string) ([]domain.Message, error)
}

// Broadcaster pushes a freshly persisted message to the chat's realtime
// room. It is an extension point: without one configured, persistence and
// live delivery stay fully independent paths.
type Broadcaster interface {
	BroadcastMessage(chatID string, message domain.Message)
}

// MessageService validates and persists inbound messages and produces the
// enriched representation regardless of transport.
type MessageService struct {
	messages    repositories.IMessageRepository
	chats       repositories.IChatRepository
	store       storage.IObjectStore
	broadcaster Broadcaster // nil unless the realtime bridge is enabled
	log         *slog.Logger
}

func NewMessageService(messages repositories.IMessageRepository,
	chats repositories.IChatRepository, store storage.IObjectStore,
	broadcaster Broadcaster, log *slog.Logger) *MessageService {
	return &MessageService{
		messages:    messages,
		chats:       chats,
		store:       store,
		broadcaster: broadcaster,
		log:         log,
	}
}

// SendMessage requires exactly one of trimmed content or attachment. An
// attachment goes to the object store first; the resulting URL is what gets
// persisted. The returned message carries the resolved sender and the full
// parent chat, whose lastMessage pointer now references it.
func (s *MessageService) SendMessage(cmd SendMessageCommand) (domain.Message, error) {
	content := strings.TrimSpace(cmd.Content)
	hasText := content != ""
	hasFile := cmd.Attachment != nil
	if cmd.ChatID == "" || hasText == hasFile {
		return domain.Message{}, errors.NewValidation("Invalid message data")
	}

	kind := domain.MessageText
	fileURL := ""
	if hasFile {
		url, err := s.store.Save(cmd.Attachment.Filename, cmd.Attachment.Reader)
		if err != nil {
			return domain.Message{}, err
		}
		kind = domain.MessageFile
		fileURL = url
		content = ""
	}

	message, err := s.messages.AppendMessage(cmd.ChatID, cmd.SenderID, kind, content, fileURL)
	if err != nil {
		return domain.Message{}, err
	}

	chat, err := s.chats.FindChatByID(cmd.ChatID)
	if err != nil {
		return domain.Message{}, err
	}
	message.Chat = &chat

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage(cmd.ChatID, message)
	}
	s.log.Debug("Message persisted",
		"chat_id", cmd.ChatID, "message_id", message.ID, "type", kind)
	return message, nil
}

func (s *MessageService) ListMessages(chatID string) ([]domain.Message, error) {
	if chatID == "" {
		return nil, errors.NewValidation("chat id is required")
	}
	return s.messages.ListMessages(chatID)
}
