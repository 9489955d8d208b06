// Package api exposes the chat backend over HTTP. Handlers stay thin:
// decode, call the service, translate the error. All business rules live
// in the services package.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"slack-chat/auth"
	"slack-chat/services"
)

type Server struct {
	auth     services.IAuthService
	channels services.IChannelService
	messages services.IMessageService
	log      *slog.Logger
}

func NewServer(
	authService services.IAuthService,
	channelService services.IChannelService,
	messageService services.IMessageService,
	log *slog.Logger,
) *Server {
	return &Server{
		auth:     authService,
		channels: channelService,
		messages: messageService,
		log:      log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.With(auth.Middleware).Post("/logout", s.handleLogout)
		})

		api.Route("/users", func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Get("/me", s.handleProfile)
			r.Put("/me", s.handleUpdateProfile)
		})

		api.Route("/channels", func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Post("/", s.handleCreateChannel)
			r.Get("/", s.handleListPublicChannels)
			r.Get("/mine", s.handleListMyChannels)

			r.Route("/{channelID}", func(r chi.Router) {
				r.Get("/", s.handleGetChannel)
				r.Post("/join", s.handleJoinChannel)
				r.Post("/leave", s.handleLeaveChannel)
				r.Post("/messages", s.handlePostMessage)
				r.Get("/messages", s.handleListMessages)
				r.Get("/messages/search", s.handleSearchMessages)
			})
		})

		api.Route("/messages/{messageID}", func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Put("/", s.handleEditMessage)
			r.Delete("/", s.handleDeleteMessage)
		})
	})

	return r
}
