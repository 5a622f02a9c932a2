package services

import (
	stderrors "errors"
	"log/slog"

	"chatline/domain"
	"chatline/errors"
	"chatline/repositories"
)

type IChatService interface {
	GetChatsForUser(userID string) ([]domain.Chat, error)
	GetOrCreateDirectChat(requesterID, targetID string) (domain.Chat, error)
	CreateGroupChat(requesterID, name string, memberIDs []string) (domain.Chat, error)
	ResolveOtherParticipant(chatID, viewerID string) (domain.PublicUser, error)
}

// ChatService enforces the chat-creation invariants: direct chats are unique
// per unordered pair and idempotent to create, group chats need a name and at
// least two invitees beyond the creator.
type ChatService struct {
	chats repositories.IChatRepository
	log   *slog.Logger
}

func NewChatService(chats repositories.IChatRepository, log *slog.Logger) *ChatService {
	return &ChatService{chats: chats, log: log}
}

func (s *ChatService) GetChatsForUser(userID string) ([]domain.Chat, error) {
	return s.chats.FindChatsForUser(userID)
}

// GetOrCreateDirectChat returns the existing direct chat between the two
// users or creates it. Symmetric in its arguments. When a concurrent call
// wins the create, the losing side retries as a lookup, so exactly one chat
// exists per pair afterwards.
func (s *ChatService) GetOrCreateDirectChat(requesterID, targetID string) (domain.Chat, error) {
	chat, err := domain.NewDirectChat(requesterID, targetID)
	if err != nil {
		return domain.Chat{}, err
	}

	existing, err := s.chats.FindDirectChat(requesterID, targetID)
	if err == nil {
		return existing, nil
	}
	if !errors.IsNotFound(err) {
		return domain.Chat{}, err
	}

	created, err := s.chats.CreateChat(chat)
	if stderrors.Is(err, errors.ErrChatAlreadyExists) {
		s.log.Debug("Lost direct chat creation race, retrying as lookup",
			"requester_id", requesterID, "target_id", targetID)
		return s.chats.FindDirectChat(requesterID, targetID)
	}
	return created, err
}

func (s *ChatService) CreateGroupChat(requesterID, name string, memberIDs []string) (domain.Chat, error) {
	chat, err := domain.NewGroupChat(requesterID, name, memberIDs)
	if err != nil {
		return domain.Chat{}, err
	}
	return s.chats.CreateChat(chat)
}

// ResolveOtherParticipant names who a direct chat is held with, seen from
// the viewer's side. Group chats carry their own name instead.
func (s *ChatService) ResolveOtherParticipant(chatID, viewerID string) (domain.PublicUser, error) {
	chat, err := s.chats.FindChatByID(chatID)
	if err != nil {
		return domain.PublicUser{}, err
	}
	other, ok := chat.OtherParticipant(viewerID)
	if !ok {
		return domain.PublicUser{}, errors.NewValidation("not a direct chat")
	}
	return other, nil
}
