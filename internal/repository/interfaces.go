package repository

import (
	"context"
	"time"

	"github.com/nwang/babypoll/internal/models"
)

// EventRepository defines voting event data operations
type EventRepository interface {
	EnsureEvent(ctx context.Context, pin string, deadline *time.Time) (int64, error)
	GetEvent(ctx context.Context, eventID int64) (*models.VotingEvent, error)
	ActiveEvent(ctx context.Context) (*models.VotingEvent, error)
	SetCorrectOption(ctx context.Context, eventID int64, option models.Option) error
}

// ParticipantRepository defines participant data operations
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, eventID int64, nickname, contactInfo string) (int64, error)
	GetParticipant(ctx context.Context, id int64) (*models.Participant, error)
	ListParticipants(ctx context.Context, eventID int64) ([]models.Participant, error)
	CountParticipants(ctx context.Context, eventID int64) (total, voted int, err error)
}

// BallotRepository defines ballot data operations
type BallotRepository interface {
	CreateBallot(ctx context.Context, eventID, participantID int64, option models.Option) (int64, error)
	GetBallotByParticipant(ctx context.Context, participantID int64) (*models.Ballot, error)
	TallyBallots(ctx context.Context, eventID int64) (map[models.Option]int, error)
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	EventRepository
	ParticipantRepository
	BallotRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
