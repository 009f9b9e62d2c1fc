package server

import (
	"log/slog"
	"net/http"
	"private-chat/auth"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the chat socket behind the token middleware and the
// debug endpoint next to it.
func NewRouter(log *slog.Logger, chatServer *ChatServer, debug http.Handler, issuer *auth.TokenIssuer) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.With(auth.Middleware(issuer, log)).Get("/ws", chatServer.ServeHTTP)
	r.Get("/debug/state", debug.ServeHTTP)
	return r
}
