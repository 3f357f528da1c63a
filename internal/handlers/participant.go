package handlers

import (
	"net/http"

	"github.com/nwang/babypoll/internal/auth"
	"github.com/nwang/babypoll/internal/models"
)

// handlePin checks a submitted PIN and opens a participant session
func (h *Handlers) handlePin(w http.ResponseWriter, r *http.Request) {
	var req PinRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.PIN == "" {
		respondError(w, BadRequest("PIN is required"))
		return
	}

	sess, err := h.Gate.PresentPin(r.Context(), h.EventID, req.PIN)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, PinResponse{Token: sess.Token, EventID: sess.EventID})
}

// handleRegister identifies the session holder with a nickname and contact info
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	participant, err := h.Gate.Register(r.Context(), auth.TokenFromRequest(r), req.Nickname, req.ContactInfo)
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, RegisterResponse{ParticipantID: participant.ID, Nickname: participant.Nickname})
}

// handleVote records the session holder's ballot
func (h *Handlers) handleVote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	option := models.Option(req.Option)
	if err := h.Gate.CastVote(r.Context(), auth.TokenFromRequest(r), option); err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, VoteResponse{Accepted: true, Option: option})
}

// handleSession reports the session's current stage
func (h *Handlers) handleSession(w http.ResponseWriter, r *http.Request) {
	status, err := h.Gate.Status(r.Context(), auth.TokenFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, status)
}

// handleTally returns the current ballot counts
func (h *Handlers) handleTally(w http.ResponseWriter, r *http.Request) {
	tally, err := h.Results.Tally(r.Context(), h.EventID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, tally)
}

// handleFeedback reports whether the session holder guessed right
func (h *Handlers) handleFeedback(w http.ResponseWriter, r *http.Request) {
	fb, err := h.Gate.Feedback(r.Context(), auth.TokenFromRequest(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, fb)
}
