package services

import (
	"context"
	"strings"

	"github.com/nwang/babypoll/internal/errors"
	"github.com/nwang/babypoll/internal/logger"
	"github.com/nwang/babypoll/internal/models"
	"github.com/nwang/babypoll/internal/repository"
)

// RegistryService is the identity registry: it creates participants and
// enforces global nickname/contact uniqueness. Uniqueness itself lives in the
// repository's transactional insert; this layer validates input and maps
// storage conflicts to user-facing rejections.
type RegistryService struct {
	log  logger.Logger
	repo repository.ParticipantRepository
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(log logger.Logger, repo repository.ParticipantRepository) *RegistryService {
	return &RegistryService{log: log, repo: repo}
}

// Register creates a new participant. Rejections are checked in order:
// empty input, duplicate nickname, duplicate contact.
func (s *RegistryService) Register(ctx context.Context, eventID int64, nickname, contactInfo string) (int64, error) {
	nickname = strings.TrimSpace(nickname)
	contactInfo = strings.TrimSpace(contactInfo)
	if nickname == "" || contactInfo == "" {
		return 0, ErrInvalidInput
	}

	id, err := s.repo.CreateParticipant(ctx, eventID, nickname, contactInfo)
	switch err {
	case nil:
	case repository.ErrDuplicateNickname:
		return 0, ErrDuplicateNickname
	case repository.ErrDuplicateContact:
		return 0, ErrDuplicateContact
	default:
		return 0, err
	}

	s.log.Info("Participant registered", "participant_id", id, "nickname", nickname)
	return id, nil
}

// Lookup returns a participant by ID. A missing participant is an integrity
// fault, not a user-facing rejection.
func (s *RegistryService) Lookup(ctx context.Context, id int64) (*models.Participant, error) {
	p, err := s.repo.GetParticipant(ctx, id)
	if err == repository.ErrNotFound {
		return nil, errors.NotFoundf("participant %d not found", id)
	}
	return p, err
}
