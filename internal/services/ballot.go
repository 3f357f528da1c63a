package services

import (
	"context"
	"time"

	"github.com/nwang/babypoll/internal/errors"
	"github.com/nwang/babypoll/internal/logger"
	"github.com/nwang/babypoll/internal/models"
	"github.com/nwang/babypoll/internal/repository"
)

// BallotService is the ballot box: it accepts at most one ballot per
// participant. The repository performs the flag flip and the insert as one
// transaction, so this check works even if the session gate is bypassed.
type BallotService struct {
	log    logger.Logger
	repo   repository.BallotRepository
	events *EventService
}

// NewBallotService creates a new BallotService
func NewBallotService(log logger.Logger, repo repository.BallotRepository, events *EventService) *BallotService {
	return &BallotService{log: log, repo: repo, events: events}
}

// CastVote records a ballot for the participant. Preconditions, in order:
// the option must belong to the fixed set, the event must be open at now,
// and the participant must not have voted.
func (s *BallotService) CastVote(ctx context.Context, eventID, participantID int64, option models.Option, now time.Time) error {
	if !option.Valid() {
		return ErrInvalidOption
	}

	open, err := s.events.IsOpen(ctx, eventID, now)
	if err != nil {
		return err
	}
	if !open {
		return ErrVotingClosed
	}

	_, err = s.repo.CreateBallot(ctx, eventID, participantID, option)
	switch err {
	case nil:
	case repository.ErrAlreadyVoted:
		return ErrAlreadyVoted
	case repository.ErrNotFound:
		return errors.NotFoundf("participant %d not found", participantID)
	default:
		return err
	}

	s.log.Info("Ballot accepted", "participant_id", participantID, "option", option)
	return nil
}
