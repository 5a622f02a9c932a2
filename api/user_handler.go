package api

import (
	"log/slog"
	"net/http"

	"chatline/auth"
	"chatline/errors"
	"chatline/services"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	service services.IUserService
	log     *slog.Logger
}

func NewUserHandler(service services.IUserService, log *slog.Logger) *UserHandler {
	return &UserHandler{service: service, log: log}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByEmail(chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.SearchUsers(r.Context(), r.URL.Query().Get("searchQuery"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.log, errors.NewAuth("authorization token is missing"))
		return
	}
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	user, err := h.service.UpdateProfile(userID, req.Name, req.Email)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
