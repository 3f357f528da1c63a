package handlers

import "github.com/nwang/babypoll/internal/models"

// PinResponse is the response for a successful PIN submission
type PinResponse struct {
	Token   string `json:"token"`
	EventID int64  `json:"event_id"`
}

// RegisterResponse is the response for a successful registration
type RegisterResponse struct {
	ParticipantID int64  `json:"participant_id"`
	Nickname      string `json:"nickname"`
}

// VoteResponse is the response for an accepted ballot
type VoteResponse struct {
	Accepted bool          `json:"accepted"`
	Option   models.Option `json:"option"`
}
