package services

import (
	"context"

	"github.com/nwang/babypoll/internal/errors"
	"github.com/nwang/babypoll/internal/logger"
	"github.com/nwang/babypoll/internal/models"
	"github.com/nwang/babypoll/internal/repository"
)

// ResultsService aggregates ballots into tallies and computes per-participant
// correctness feedback once the admin has declared the outcome.
type ResultsService struct {
	log     logger.Logger
	ballots repository.BallotRepository
	events  *EventService
}

// NewResultsService creates a new ResultsService
func NewResultsService(log logger.Logger, ballots repository.BallotRepository, events *EventService) *ResultsService {
	return &ResultsService{log: log, ballots: ballots, events: events}
}

// Tally returns ballot counts for every option in the fixed set. Options with
// no ballots report zero rather than being absent.
func (s *ResultsService) Tally(ctx context.Context, eventID int64) (*models.Tally, error) {
	counts, err := s.ballots.TallyBallots(ctx, eventID)
	if err != nil {
		return nil, err
	}

	tally := &models.Tally{Options: make(map[models.Option]int, len(models.Options()))}
	for _, opt := range models.Options() {
		tally.Options[opt] = counts[opt]
		tally.Total += counts[opt]
	}
	return tally, nil
}

// FeedbackFor reports whether the participant guessed right. Until the admin
// declares the correct option the result carries Decided=false and no
// correctness claim. A participant without a ballot gets a not-found error.
func (s *ResultsService) FeedbackFor(ctx context.Context, eventID, participantID int64) (*models.Feedback, error) {
	ballot, err := s.ballots.GetBallotByParticipant(ctx, participantID)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("no ballot for participant %d", participantID)
	}
	if err != nil {
		return nil, err
	}

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	fb := &models.Feedback{YourChoice: ballot.OptionChosen}
	if event.CorrectOption != nil {
		fb.Decided = true
		fb.CorrectOption = *event.CorrectOption
		fb.IsCorrect = ballot.OptionChosen == *event.CorrectOption
	}
	return fb, nil
}
