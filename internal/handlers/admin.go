package handlers

import (
	"net/http"
	"time"

	"github.com/nwang/babypoll/internal/auth"
	"github.com/nwang/babypoll/internal/models"
)

// handleAdminLogin processes an admin login attempt
func (h *Handlers) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, ok := h.Auth.Login(req.Password)
	if !ok {
		respondError(w, Unauthorized("Invalid password"))
		return
	}

	auth.SetSessionCookie(w, token)
	respondSuccess(w, "Logged in")
}

// handleAdminLogout clears the admin session
func (h *Handlers) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}

	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}

// handleDeclareAnswer records the actual outcome. Repeat declarations
// overwrite without complaint.
func (h *Handlers) handleDeclareAnswer(w http.ResponseWriter, r *http.Request) {
	var req DeclareAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	option := models.Option(req.Option)
	if err := h.Admin.DeclareCorrectOption(r.Context(), h.EventID, option); err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, map[string]interface{}{"correct_option": option})
}

// handleAdminStats returns the dashboard snapshot
func (h *Handlers) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Admin.Stats(r.Context(), h.EventID, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}

// handleAdminParticipants lists everyone registered
func (h *Handlers) handleAdminParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.Admin.Participants(r.Context(), h.EventID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, participants)
}
