// ABOUTME: HTTP server wiring for the panel API.
// ABOUTME: Stacks chi middleware, request logging and operator identification over the API routes.

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/2389/panel/internal/api"
	"github.com/2389/panel/internal/auth"
	"github.com/2389/panel/internal/backend"
	"github.com/2389/panel/internal/logging"
	"github.com/2389/panel/internal/store"
)

func newServer(s *store.Store, b *backend.Backend) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware)
	r.Use(logging.Middleware(s))

	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	api.NewHandlers(b, s).RegisterRoutes(r)

	return r
}
