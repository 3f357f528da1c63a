package services

import (
	"context"
	"time"

	"github.com/nwang/babypoll/internal/errors"
	"github.com/nwang/babypoll/internal/logger"
	"github.com/nwang/babypoll/internal/models"
	"github.com/nwang/babypoll/internal/repository"
)

// AdminService exposes the organizer-only operations: declaring the correct
// option and inspecting registrations.
type AdminService struct {
	log     logger.Logger
	repo    repository.FullRepository
	events  *EventService
	results *ResultsService
}

// NewAdminService creates a new AdminService
func NewAdminService(log logger.Logger, repo repository.FullRepository, events *EventService, results *ResultsService) *AdminService {
	return &AdminService{log: log, repo: repo, events: events, results: results}
}

// DeclareCorrectOption records the actual outcome. Declaring again replaces
// the earlier value without complaint; the overwrite is only logged.
func (s *AdminService) DeclareCorrectOption(ctx context.Context, eventID int64, option models.Option) error {
	if !option.Valid() {
		return ErrInvalidOption
	}

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CorrectOption != nil && *event.CorrectOption != option {
		s.log.Warn("Correct option overwritten", "event_id", eventID, "old", *event.CorrectOption, "new", option)
	}

	if err := s.repo.SetCorrectOption(ctx, eventID, option); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("voting event not found")
		}
		return err
	}

	s.log.Info("Correct option declared", "event_id", eventID, "option", option)
	return nil
}

// EventStats is the admin dashboard snapshot.
type EventStats struct {
	EventID       int64          `json:"event_id"`
	Open          bool           `json:"open"`
	Deadline      *time.Time     `json:"deadline,omitempty"`
	Decided       bool           `json:"decided"`
	CorrectOption *models.Option `json:"correct_option,omitempty"`
	Registered    int            `json:"registered"`
	Voted         int            `json:"voted"`
	Tally         *models.Tally  `json:"tally"`
}

// Stats assembles the dashboard snapshot for the event as of now.
func (s *AdminService) Stats(ctx context.Context, eventID int64, now time.Time) (*EventStats, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	total, voted, err := s.repo.CountParticipants(ctx, eventID)
	if err != nil {
		return nil, err
	}

	tally, err := s.results.Tally(ctx, eventID)
	if err != nil {
		return nil, err
	}

	open := event.Deadline == nil || !now.After(*event.Deadline)
	return &EventStats{
		EventID:       event.ID,
		Open:          open,
		Deadline:      event.Deadline,
		Decided:       event.CorrectOption != nil,
		CorrectOption: event.CorrectOption,
		Registered:    total,
		Voted:         voted,
		Tally:         tally,
	}, nil
}

// Participants lists everyone registered for the event.
func (s *AdminService) Participants(ctx context.Context, eventID int64) ([]models.Participant, error) {
	return s.repo.ListParticipants(ctx, eventID)
}
