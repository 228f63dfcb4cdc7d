package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/neuroguard/backend/internal/model/checkin"
)

var ErrSessionNotFound = errors.New("session not found")

// Service keeps check-in sessions and their history in memory. Nothing
// survives a restart.
type Service struct {
	mu           sync.RWMutex
	sessions     map[string]checkin.Session
	entries      map[string][]checkin.Entry
	historyLimit int
}

// NewService creates an empty store. historyLimit caps entries per session,
// dropping the oldest; zero or less means unlimited.
func NewService(historyLimit int) *Service {
	if historyLimit < 0 {
		historyLimit = 0
	}
	return &Service{
		sessions:     make(map[string]checkin.Session),
		entries:      make(map[string][]checkin.Entry),
		historyLimit: historyLimit,
	}
}

// CreateSession provisions an anonymous session with empty history.
func (s *Service) CreateSession(_ context.Context) (checkin.Session, error) {
	session := checkin.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.entries[session.ID] = make([]checkin.Entry, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (checkin.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return checkin.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Append adds an entry to the end of the session history and returns it with
// ID and timestamp filled in.
func (s *Service) Append(_ context.Context, entry checkin.Entry) (checkin.Entry, error) {
	if entry.SessionID == "" {
		return checkin.Entry{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[entry.SessionID]; !ok {
		return checkin.Entry{}, ErrSessionNotFound
	}
	return s.appendLocked(entry), nil
}

// Record builds an entry from the session's current labels and appends it in
// one step, so a concurrent Reset or Record cannot land between the read and
// the write. build runs under the store lock and must not call back into the
// Service.
func (s *Service) Record(_ context.Context, sessionID string, build func(history []string) checkin.Entry) (checkin.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return checkin.Entry{}, ErrSessionNotFound
	}

	entry := build(labelsOf(s.entries[sessionID]))
	entry.SessionID = sessionID
	return s.appendLocked(entry), nil
}

func (s *Service) appendLocked(entry checkin.Entry) checkin.Entry {
	entry.ID = uuid.NewString()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	history := append(s.entries[entry.SessionID], entry)
	if s.historyLimit > 0 && len(history) > s.historyLimit {
		history = append([]checkin.Entry(nil), history[len(history)-s.historyLimit:]...)
	}
	s.entries[entry.SessionID] = history
	return entry
}

// Entries returns a copy of the session history in submission order.
func (s *Service) Entries(_ context.Context, sessionID string) ([]checkin.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]checkin.Entry, len(entries))
	copy(copied, entries)
	return copied, nil
}

// Labels returns the classifier labels of the session history in order.
func (s *Service) Labels(_ context.Context, sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return labelsOf(entries), nil
}

func labelsOf(entries []checkin.Entry) []string {
	labels := make([]string, len(entries))
	for i, entry := range entries {
		labels[i] = entry.Label
	}
	return labels
}

// Reset clears the session history but keeps the session.
func (s *Service) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	s.entries[sessionID] = make([]checkin.Entry, 0, 16)
	return nil
}

// Delete drops the session and its history.
func (s *Service) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.entries, sessionID)
	return nil
}
