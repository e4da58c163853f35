// Package session tracks the mock interview each user is currently running.
package session

import (
	"errors"
	"sync"
	"time"

	"zia/internal/parser"
)

var (
	ErrSessionAlreadyActive = errors.New("interview session already active")
	ErrNoActiveSession      = errors.New("no active interview session")
)

// Session is a user's in-progress mock interview.
type Session struct {
	UserID        string
	ProblemText   string
	ProblemFields parser.ProblemFields
	HintsUsed     int
	Attempts      int
	StartTime     time.Time
}

// Elapsed returns the session duration at now, floored to whole minutes.
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.StartTime).Truncate(time.Minute)
}

// ElapsedMinutes is Elapsed expressed as a minute count.
func (s *Session) ElapsedMinutes(now time.Time) int {
	return int(s.Elapsed(now) / time.Minute)
}

// Store owns every active session. All operations on a key are serialized, so
// two concurrent Create calls for one user can never both succeed. Sessions
// handed out are copies.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// NewStoreWithClock lets callers control session timestamps.
func NewStoreWithClock(now func() time.Time) *Store {
	s := NewStore()
	s.now = now
	return s
}

// Now is the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) Create(userID, problemText string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[userID]; exists {
		return nil, ErrSessionAlreadyActive
	}

	sess := &Session{
		UserID:        userID,
		ProblemText:   problemText,
		ProblemFields: parser.ParseProblem(problemText),
		StartTime:     s.now(),
	}
	s.sessions[userID] = sess

	snapshot := *sess
	return &snapshot, nil
}

// GetActive returns the user's session without changing it.
func (s *Store) GetActive(userID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	snapshot := *sess
	return &snapshot, true
}

// RecordHint increments the hint counter. The returned HintsUsed tells the
// hint generator how deep the next hint should go.
func (s *Store) RecordHint(userID string) (*Session, error) {
	return s.update(userID, func(sess *Session) { sess.HintsUsed++ })
}

func (s *Store) RecordAttempt(userID string) (*Session, error) {
	return s.update(userID, func(sess *Session) { sess.Attempts++ })
}

// End removes the session and returns its final state.
func (s *Store) End(userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	delete(s.sessions, userID)
	snapshot := *sess
	return &snapshot, nil
}

// Count returns the number of active sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

// Oldest returns the session with the earliest start time.
func (s *Store) Oldest() (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest *Session
	for _, sess := range s.sessions {
		if oldest == nil || sess.StartTime.Before(oldest.StartTime) {
			oldest = sess
		}
	}
	if oldest == nil {
		return nil, false
	}
	snapshot := *oldest
	return &snapshot, true
}

func (s *Store) update(userID string, mutate func(*Session)) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	mutate(sess)
	snapshot := *sess
	return &snapshot, nil
}
