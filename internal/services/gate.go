package services

import (
	"context"
	"time"

	"github.com/nwang/babypoll/internal/auth"
	"github.com/nwang/babypoll/internal/logger"
	"github.com/nwang/babypoll/internal/models"
)

// Stage is a participant session's position in the entry flow.
type Stage string

const (
	StageAnonymous   Stage = "anonymous"
	StagePinVerified Stage = "pin_verified"
	StageIdentified  Stage = "identified"
	StageVoted       Stage = "voted"
)

// Broadcaster pushes live updates to connected clients. The websocket hub
// implements it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastTally(tally *models.Tally)
}

// SessionStatus is what a session sees when it asks where it stands.
type SessionStatus struct {
	Stage    Stage           `json:"stage"`
	EventID  int64           `json:"event_id"`
	Nickname string          `json:"nickname,omitempty"`
	Open     bool            `json:"open"`
	Deadline *time.Time      `json:"deadline,omitempty"`
	Options  []models.Option `json:"options"`
}

// GateService walks participants through the entry flow: PIN, registration,
// vote. It owns the session tokens; the voted stage is always re-derived from
// the stored participant record, never from session memory.
type GateService struct {
	log      logger.Logger
	sessions *auth.SessionStore
	events   *EventService
	registry *RegistryService
	ballots  *BallotService
	results  *ResultsService
	hub      Broadcaster
	now      func() time.Time
}

// NewGateService creates a new GateService
func NewGateService(log logger.Logger, sessions *auth.SessionStore, events *EventService, registry *RegistryService, ballots *BallotService, results *ResultsService, hub Broadcaster) *GateService {
	return &GateService{
		log:      log,
		sessions: sessions,
		events:   events,
		registry: registry,
		ballots:  ballots,
		results:  results,
		hub:      hub,
		now:      time.Now,
	}
}

// SetClock overrides the gate's clock. Tests use this to cross the deadline.
func (s *GateService) SetClock(now func() time.Time) {
	s.now = now
}

// PresentPin checks the submitted PIN against the event and, on a match,
// opens a new session. Closed events reject the PIN before comparing it.
func (s *GateService) PresentPin(ctx context.Context, eventID int64, pin string) (*auth.Session, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.Deadline != nil && s.now().After(*event.Deadline) {
		return nil, ErrVotingClosed
	}
	if pin != event.PIN {
		return nil, ErrWrongPin
	}

	sess := s.sessions.Create(event.ID)
	s.log.Info("PIN accepted, session opened", "event_id", event.ID)
	return sess, nil
}

// Register identifies the session's holder. The session must exist and must
// not already carry an identity; uniqueness rejections pass through from the
// registry and leave the session at the pin-verified stage.
func (s *GateService) Register(ctx context.Context, token, nickname, contactInfo string) (*models.Participant, error) {
	sess := s.sessions.Get(token)
	if sess == nil {
		return nil, ErrSessionExpired
	}
	if sess.Identified() {
		return nil, ErrAlreadyIdentified
	}

	open, err := s.events.IsOpen(ctx, sess.EventID, s.now())
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrVotingClosed
	}

	id, err := s.registry.Register(ctx, sess.EventID, nickname, contactInfo)
	if err != nil {
		return nil, err
	}

	s.sessions.Identify(token, id)
	return s.registry.Lookup(ctx, id)
}

// CastVote records the session holder's guess and broadcasts the new tally.
func (s *GateService) CastVote(ctx context.Context, token string, option models.Option) error {
	sess := s.sessions.Get(token)
	if sess == nil {
		return ErrSessionExpired
	}
	if !sess.Identified() {
		return ErrNotIdentified
	}

	if err := s.ballots.CastVote(ctx, sess.EventID, sess.ParticipantID, option, s.now()); err != nil {
		return err
	}

	if s.hub != nil {
		if tally, err := s.results.Tally(ctx, sess.EventID); err == nil {
			s.hub.BroadcastTally(tally)
		} else {
			s.log.Error("Failed to tally after vote", "error", err)
		}
	}
	return nil
}

// Status reports the session's current stage. The voted stage comes from the
// participant's stored flag, so a resumed session lands in the right place.
func (s *GateService) Status(ctx context.Context, token string) (*SessionStatus, error) {
	now := s.now()

	if token == "" || s.sessions.Get(token) == nil {
		event, err := s.events.Active(ctx)
		if err != nil {
			return nil, err
		}
		open, err := s.events.IsOpen(ctx, event.ID, now)
		if err != nil {
			return nil, err
		}
		return &SessionStatus{
			Stage:    StageAnonymous,
			EventID:  event.ID,
			Open:     open,
			Deadline: event.Deadline,
			Options:  models.Options(),
		}, nil
	}

	sess := s.sessions.Get(token)
	event, err := s.events.Get(ctx, sess.EventID)
	if err != nil {
		return nil, err
	}
	open, err := s.events.IsOpen(ctx, event.ID, now)
	if err != nil {
		return nil, err
	}

	status := &SessionStatus{
		Stage:    StagePinVerified,
		EventID:  event.ID,
		Open:     open,
		Deadline: event.Deadline,
		Options:  models.Options(),
	}
	if !sess.Identified() {
		return status, nil
	}

	participant, err := s.registry.Lookup(ctx, sess.ParticipantID)
	if err != nil {
		return nil, err
	}
	status.Nickname = participant.Nickname
	status.Stage = StageIdentified
	if participant.HasVoted {
		status.Stage = StageVoted
	}
	return status, nil
}

// Feedback returns the correctness result for the session's holder.
func (s *GateService) Feedback(ctx context.Context, token string) (*models.Feedback, error) {
	sess := s.sessions.Get(token)
	if sess == nil {
		return nil, ErrSessionExpired
	}
	if !sess.Identified() {
		return nil, ErrNotIdentified
	}
	return s.results.FeedbackFor(ctx, sess.EventID, sess.ParticipantID)
}
