package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// WebSocket
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Participant API (public; session token gates the later stages)
	r.Post("/api/pin", h.handlePin)
	r.Post("/api/register", h.handleRegister)
	r.Post("/api/vote", h.handleVote)
	r.Get("/api/session", h.handleSession)
	r.Get("/api/tally", h.handleTally)
	r.Get("/api/feedback", h.handleFeedback)

	// Admin auth (public)
	r.Post("/api/admin/login", h.handleAdminLogin)
	r.Post("/api/admin/logout", h.handleAdminLogout)

	// Admin API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		r.Post("/api/admin/answer", h.handleDeclareAnswer)
		r.Get("/api/admin/stats", h.handleAdminStats)
		r.Get("/api/admin/participants", h.handleAdminParticipants)
		r.Get("/api/admin/entry-qr", h.handleEntryQR)
	})

	return r
}
