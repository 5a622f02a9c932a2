package api

import (
	"net/http"
	"time"

	"chatline/realtime"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the full HTTP surface. Everything under /api except
// register and login sits behind the token middleware. The WebSocket
// endpoint is deliberately outside it: realtime joins carry no auth.
func NewRouter(authH *AuthHandler, userH *UserHandler, chatH *ChatHandler,
	gateway *realtime.Gateway, uploadsDir string,
	authMW func(http.Handler) http.Handler) http.Handler {

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/ws", gateway.HandleWS)

	r.Handle("/uploads/multimedia/*", http.StripPrefix("/uploads/multimedia/",
		http.FileServer(http.Dir(uploadsDir))))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", authH.Register)
		api.Post("/auth/login", authH.Login)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW)
			pr.Use(middleware.Timeout(30 * time.Second))

			pr.Get("/auth/profile", authH.Profile)

			pr.Route("/users", func(u chi.Router) {
				u.Get("/", userH.List)
				u.Get("/search", userH.Search)
				u.Put("/profile", userH.UpdateProfile)
				u.Get("/email/{email}", userH.GetByEmail)
				u.Get("/{id}", userH.Get)
			})

			pr.Route("/chats", func(c chi.Router) {
				c.Get("/", chatH.List)
				c.Post("/", chatH.Create)
				c.Post("/group", chatH.CreateGroup)
				c.Post("/messages", chatH.SendMessage)
				c.Get("/{chatId}/messages", chatH.ListMessages)
			})
		})
	})

	return r
}
