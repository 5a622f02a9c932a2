package api

import (
	"time"

	"chatline/domain"

	"github.com/samber/lo"
)

type chatResponse struct {
	ID          string              `json:"id"`
	IsGroupChat bool                `json:"isGroupChat"`
	Name        string              `json:"name,omitempty"`
	Users       []domain.PublicUser `json:"users"`
	LastMessage *messageResponse    `json:"lastMessage,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type messageResponse struct {
	ID        string             `json:"id"`
	Chat      *chatResponse      `json:"chat,omitempty"`
	ChatID    string             `json:"chatId"`
	Sender    domain.PublicUser  `json:"sender"`
	Type      domain.MessageType `json:"type"`
	Content   string             `json:"content"`
	File      string             `json:"file,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func toChatResponse(chat domain.Chat) chatResponse {
	resp := chatResponse{
		ID:          chat.ID,
		IsGroupChat: chat.IsGroupChat,
		Name:        chat.Name,
		Users:       chat.Users,
		CreatedAt:   chat.CreatedAt,
		UpdatedAt:   chat.UpdatedAt,
	}
	if chat.LastMessage != nil {
		resp.LastMessage = lo.ToPtr(toMessageResponse(*chat.LastMessage))
	}
	return resp
}

func toMessageResponse(message domain.Message) messageResponse {
	resp := messageResponse{
		ID:        message.ID.String(),
		ChatID:    message.ChatID,
		Sender:    message.Sender,
		Type:      message.Type,
		Content:   message.Content,
		File:      message.File,
		CreatedAt: message.CreatedAt,
		UpdatedAt: message.UpdatedAt,
	}
	if message.Chat != nil {
		resp.Chat = lo.ToPtr(toChatResponse(*message.Chat))
	}
	return resp
}

func toChatResponses(chats []domain.Chat) []chatResponse {
	return lo.Map(chats, func(chat domain.Chat, _ int) chatResponse {
		return toChatResponse(chat)
	})
}

func toMessageResponses(messages []domain.Message) []messageResponse {
	return lo.Map(messages, func(message domain.Message, _ int) messageResponse {
		return toMessageResponse(message)
	})
}
