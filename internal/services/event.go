package services

import (
	"context"
	"time"

	"github.com/nwang/babypoll/internal/errors"
	"github.com/nwang/babypoll/internal/logger"
	"github.com/nwang/babypoll/internal/models"
	"github.com/nwang/babypoll/internal/repository"
)

// EventService is the event config store: it owns the live event's PIN,
// deadline and declared option.
type EventService struct {
	log  logger.Logger
	repo repository.EventRepository
}

// NewEventService creates a new EventService
func NewEventService(log logger.Logger, repo repository.EventRepository) *EventService {
	return &EventService{log: log, repo: repo}
}

// Provision creates the live event if none exists and returns its ID.
// A missing event is a fatal startup condition, so this runs before the
// server accepts requests.
func (s *EventService) Provision(ctx context.Context, pin string, deadline *time.Time) (int64, error) {
	id, err := s.repo.EnsureEvent(ctx, pin, deadline)
	if err != nil {
		return 0, err
	}
	s.log.Info("Voting event ready", "event_id", id)
	return id, nil
}

// Get returns the event by ID. ErrNotFound here means the event was never
// provisioned and the request should abort.
func (s *EventService) Get(ctx context.Context, eventID int64) (*models.VotingEvent, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("voting event not found")
	}
	return event, err
}

// Active returns the single live event
func (s *EventService) Active(ctx context.Context) (*models.VotingEvent, error) {
	event, err := s.repo.ActiveEvent(ctx)
	if err == repository.ErrNotFound {
		return nil, errors.NotFound("no voting event provisioned")
	}
	return event, err
}

// IsOpen reports whether the event admits registrations and votes at the
// given instant: open when no deadline is configured or now is not past it.
func (s *EventService) IsOpen(ctx context.Context, eventID int64, now time.Time) (bool, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return false, err
	}
	if event.Deadline == nil {
		return true, nil
	}
	return !now.After(*event.Deadline), nil
}
