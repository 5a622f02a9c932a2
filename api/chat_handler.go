package api

import (
	"log/slog"
	"mime/multipart"
	"net/http"

	"chatline/auth"
	"chatline/errors"
	"chatline/services"

	"github.com/go-chi/chi/v5"
)

type ChatHandler struct {
	chats          services.IChatService
	messages       services.IMessageService
	maxUploadBytes int64
	log            *slog.Logger
}

func NewChatHandler(chats services.IChatService, messages services.IMessageService,
	maxUploadBytes int64, log *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chats:          chats,
		messages:       messages,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// List returns the caller's chats, most recently active first.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.NewAuth("authorization token is missing"))
		return
	}
	chats, err := h.chats.GetChatsForUser(userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toChatResponses(chats))
}

// Create opens (or returns) the direct chat with the given user.
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.NewAuth("authorization token is missing"))
		return
	}
	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	chat, err := h.chats.GetOrCreateDirectChat(userID, req.UserID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChatResponse(chat))
}

func (h *ChatHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.NewAuth("authorization token is missing"))
		return
	}
	var req struct {
		Name  string   `json:"name"`
		Users []string `json:"users"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	chat, err := h.chats.CreateGroupChat(userID, req.Name, req.Users)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChatResponse(chat))
}

// SendMessage accepts multipart form data: a chatId, and either a non-empty
// content field or one attached file.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.NewAuth("authorization token is missing"))
		return
	}
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, h.log, errors.NewValidation("Invalid message data"))
		return
	}

	cmd := services.SendMessageCommand{
		ChatID:   r.FormValue("chatId"),
		SenderID: userID,
		Content:  r.FormValue("content"),
	}
	if headers := formFiles(r); len(headers) > 0 {
		file, err := headers[0].Open()
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		defer file.Close()
		cmd.Attachment = &services.Attachment{
			Filename: headers[0].Filename,
			Reader:   file,
		}
	}

	message, err := h.messages.SendMessage(cmd)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageResponse(message))
}

// ListMessages returns the chat history in chronological order.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.ListMessages(chi.URLParam(r, "chatId"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

// formFiles flattens the multipart file headers regardless of field name,
// so clients may upload under any key.
func formFiles(r *http.Request) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	var headers []*multipart.FileHeader
	for _, hs := range r.MultipartForm.File {
		headers = append(headers, hs...)
	}
	return headers
}
