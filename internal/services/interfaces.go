package services

import (
	"context"
	"time"

	"github.com/nwang/babypoll/internal/auth"
	"github.com/nwang/babypoll/internal/models"
)

// EventServicer defines the interface for event config operations
type EventServicer interface {
	Provision(ctx context.Context, pin string, deadline *time.Time) (int64, error)
	Get(ctx context.Context, eventID int64) (*models.VotingEvent, error)
	Active(ctx context.Context) (*models.VotingEvent, error)
	IsOpen(ctx context.Context, eventID int64, now time.Time) (bool, error)
}

// GateServicer defines the interface for the participant entry flow
type GateServicer interface {
	PresentPin(ctx context.Context, eventID int64, pin string) (*auth.Session, error)
	Register(ctx context.Context, token, nickname, contactInfo string) (*models.Participant, error)
	CastVote(ctx context.Context, token string, option models.Option) error
	Status(ctx context.Context, token string) (*SessionStatus, error)
	Feedback(ctx context.Context, token string) (*models.Feedback, error)
}

// ResultsServicer defines the interface for results operations
type ResultsServicer interface {
	Tally(ctx context.Context, eventID int64) (*models.Tally, error)
	FeedbackFor(ctx context.Context, eventID, participantID int64) (*models.Feedback, error)
}

// AdminServicer defines the interface for admin operations
type AdminServicer interface {
	DeclareCorrectOption(ctx context.Context, eventID int64, option models.Option) error
	Stats(ctx context.Context, eventID int64, now time.Time) (*EventStats, error)
	Participants(ctx context.Context, eventID int64) ([]models.Participant, error)
}

// Ensure concrete types implement interfaces
var (
	_ EventServicer   = (*EventService)(nil)
	_ GateServicer    = (*GateService)(nil)
	_ ResultsServicer = (*ResultsService)(nil)
	_ AdminServicer   = (*AdminService)(nil)
)
