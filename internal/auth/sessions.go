package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionHeader carries the participant session token on API requests.
const SessionHeader = "X-Session-Token"

// ParticipantExpiry bounds how long an idle participant session survives.
// Long enough to cover a whole party; sessions are re-derivable from the
// database if lost, so expiry only forces a fresh PIN entry.
const ParticipantExpiry = 12 * time.Hour

// Session tracks one participant's progress through the entry flow. A session
// starts holding only the event (PIN accepted) and gains a participant ID once
// the person registers.
type Session struct {
	Token         string
	EventID       int64
	ParticipantID int64 // 0 until registered
	ExpiresAt     time.Time
}

// Identified reports whether the session has completed registration.
func (s *Session) Identified() bool {
	return s.ParticipantID != 0
}

// SessionStore holds participant sessions in memory. Losing them on restart
// is acceptable: voting state lives in the database and a participant can
// re-enter the PIN to get a new session.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty SessionStore
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create starts a new session bound to the event and returns it.
func (st *SessionStore) Create(eventID int64) *Session {
	s := &Session{
		Token:     uuid.NewString(),
		EventID:   eventID,
		ExpiresAt: time.Now().Add(ParticipantExpiry),
	}
	st.mu.Lock()
	st.sessions[s.Token] = s
	st.mu.Unlock()

	snapshot := *s
	return &snapshot
}

// Get returns a snapshot of the session for the token, or nil if unknown or
// expired.
func (st *SessionStore) Get(token string) *Session {
	if token == "" {
		return nil
	}

	st.mu.RLock()
	s, ok := st.sessions[token]
	var snapshot Session
	if ok {
		snapshot = *s
	}
	st.mu.RUnlock()
	if !ok {
		return nil
	}

	if time.Now().After(snapshot.ExpiresAt) {
		st.mu.Lock()
		delete(st.sessions, token)
		st.mu.Unlock()
		return nil
	}
	return &snapshot
}

// Identify attaches a participant ID to the session.
func (st *SessionStore) Identify(token string, participantID int64) {
	st.mu.Lock()
	if s, ok := st.sessions[token]; ok {
		s.ParticipantID = participantID
	}
	st.mu.Unlock()
}

// Delete removes a session.
func (st *SessionStore) Delete(token string) {
	st.mu.Lock()
	delete(st.sessions, token)
	st.mu.Unlock()
}

// TokenFromRequest extracts the participant session token from a request.
func TokenFromRequest(r *http.Request) string {
	return r.Header.Get(SessionHeader)
}
