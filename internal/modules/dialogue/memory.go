// README: In-memory session store for single-process deployments and tests.
package dialogue

import (
	"context"
	"sync"
	"time"
)

// SessionStore loads and saves per-conversation FSM state. Stores do
// not serialize concurrent turns for one conversation; the service
// holds a per-conversation lock around every turn.
type SessionStore interface {
	// Load returns ErrNotFound when no session exists for the id.
	Load(ctx context.Context, conversationID string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, conversationID string) error
}

// MemoryStore keeps sessions in a process-local map.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) Load(ctx context.Context, conversationID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := sess
	return &cp, nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = time.Now().UTC()
	s.sessions[sess.ConversationID] = *sess
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, conversationID)
	return nil
}

// convLocks hands out one mutex per conversation id so two
// near-simultaneous messages from the same user cannot race on the
// same slots/state pair. Entries are refcounted and dropped when the
// last holder unlocks, so the map stays bounded by the number of
// in-flight turns rather than growing with every id ever seen.
type convLocks struct {
	mu    sync.Mutex
	locks map[string]*convLock
}

type convLock struct {
	mu   sync.Mutex
	refs int
}

func (l *convLocks) lock(conversationID string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*convLock)
	}
	e, ok := l.locks[conversationID]
	if !ok {
		e = &convLock{}
		l.locks[conversationID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, conversationID)
		}
		l.mu.Unlock()
	}
}
