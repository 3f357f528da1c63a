package mock

import (
	"context"
	"time"

	"github.com/nwang/babypoll/internal/models"
	"github.com/nwang/babypoll/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.TallyBallotsError = errors.New("database error")
//	svc := services.NewResultsService(log, mockRepo)
//	_, err := svc.Tally(ctx, eventID)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Event Errors =====
	EnsureEventError      error
	GetEventError         error
	ActiveEventError      error
	SetCorrectOptionError error

	// ===== Participant Errors =====
	CreateParticipantError error
	GetParticipantError    error
	ListParticipantsError  error
	CountParticipantsError error

	// ===== Ballot Errors =====
	CreateBallotError           error
	GetBallotByParticipantError error
	TallyBallotsError           error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Event Methods =====

func (m *Repository) EnsureEvent(ctx context.Context, pin string, deadline *time.Time) (int64, error) {
	if m.EnsureEventError != nil {
		return 0, m.EnsureEventError
	}
	return m.FullRepository.EnsureEvent(ctx, pin, deadline)
}

func (m *Repository) GetEvent(ctx context.Context, eventID int64) (*models.VotingEvent, error) {
	if m.GetEventError != nil {
		return nil, m.GetEventError
	}
	return m.FullRepository.GetEvent(ctx, eventID)
}

func (m *Repository) ActiveEvent(ctx context.Context) (*models.VotingEvent, error) {
	if m.ActiveEventError != nil {
		return nil, m.ActiveEventError
	}
	return m.FullRepository.ActiveEvent(ctx)
}

func (m *Repository) SetCorrectOption(ctx context.Context, eventID int64, option models.Option) error {
	if m.SetCorrectOptionError != nil {
		return m.SetCorrectOptionError
	}
	return m.FullRepository.SetCorrectOption(ctx, eventID, option)
}

// ===== Participant Methods =====

func (m *Repository) CreateParticipant(ctx context.Context, eventID int64, nickname, contactInfo string) (int64, error) {
	if m.CreateParticipantError != nil {
		return 0, m.CreateParticipantError
	}
	return m.FullRepository.CreateParticipant(ctx, eventID, nickname, contactInfo)
}

func (m *Repository) GetParticipant(ctx context.Context, id int64) (*models.Participant, error) {
	if m.GetParticipantError != nil {
		return nil, m.GetParticipantError
	}
	return m.FullRepository.GetParticipant(ctx, id)
}

func (m *Repository) ListParticipants(ctx context.Context, eventID int64) ([]models.Participant, error) {
	if m.ListParticipantsError != nil {
		return nil, m.ListParticipantsError
	}
	return m.FullRepository.ListParticipants(ctx, eventID)
}

func (m *Repository) CountParticipants(ctx context.Context, eventID int64) (int, int, error) {
	if m.CountParticipantsError != nil {
		return 0, 0, m.CountParticipantsError
	}
	return m.FullRepository.CountParticipants(ctx, eventID)
}

// ===== Ballot Methods =====

func (m *Repository) CreateBallot(ctx context.Context, eventID, participantID int64, option models.Option) (int64, error) {
	if m.CreateBallotError != nil {
		return 0, m.CreateBallotError
	}
	return m.FullRepository.CreateBallot(ctx, eventID, participantID, option)
}

func (m *Repository) GetBallotByParticipant(ctx context.Context, participantID int64) (*models.Ballot, error) {
	if m.GetBallotByParticipantError != nil {
		return nil, m.GetBallotByParticipantError
	}
	return m.FullRepository.GetBallotByParticipant(ctx, participantID)
}

func (m *Repository) TallyBallots(ctx context.Context, eventID int64) (map[models.Option]int, error) {
	if m.TallyBallotsError != nil {
		return nil, m.TallyBallotsError
	}
	return m.FullRepository.TallyBallots(ctx, eventID)
}
