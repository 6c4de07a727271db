package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// StateStore keeps sessions between interactions. Lock serializes
// transitions on one session; sessions never share state.
type StateStore interface {
	Lock(ctx context.Context, id string) (func() error, error)
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

var (
	_ StateStore = (*MemoryStateStore)(nil)
	_ StateStore = (*RedisStateStore)(nil)
)

// MemoryStateStore holds sessions in process memory. Idle sessions expire
// after ttl; they are dropped on access or by Sweep.
type MemoryStateStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string][]byte
	seen     map[string]time.Time
	locks    map[string]*sessionLock
}

// sessionLock is held by at most one transition. refs counts holders and
// waiters; the entry is removed when it drops to zero and no session is left.
type sessionLock struct {
	sem  chan struct{}
	refs int
}

// NewMemoryStateStore creates an in-process store. ttl <= 0 disables expiry.
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string][]byte),
		seen:     make(map[string]time.Time),
		locks:    make(map[string]*sessionLock),
	}
}

// Lock waits for exclusive access to a session or until ctx is done.
func (m *MemoryStateStore) Lock(ctx context.Context, id string) (func() error, error) {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{sem: make(chan struct{}, 1)}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(id, l)
		return nil, fmt.Errorf("%w: %v", ErrSessionBusy, ctx.Err())
	}

	var once sync.Once
	return func() error {
		once.Do(func() {
			<-l.sem
			m.release(id, l)
		})
		return nil
	}, nil
}

func (m *MemoryStateStore) release(id string, l *sessionLock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs > 0 {
		return
	}
	if _, live := m.sessions[id]; !live && m.locks[id] == l {
		delete(m.locks, id)
	}
}

// Get returns a private copy of the session.
func (m *MemoryStateStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.ttl > 0 && m.now().Sub(m.seen[id]) > m.ttl {
		m.dropLocked(id)
		return nil, ErrSessionNotFound
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// Put stores a copy of the session and refreshes its idle deadline.
func (m *MemoryStateStore) Put(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = data
	m.seen[s.ID] = m.now()
	return nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (m *MemoryStateStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropLocked(id)
	return nil
}

// Sweep drops every session idle for longer than the ttl and returns how many
// were removed.
func (m *MemoryStateStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, seen := range m.seen {
		if now.Sub(seen) > m.ttl {
			m.dropLocked(id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemoryStateStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// dropLocked forgets a session. A lock still held or awaited stays until its
// last user releases it.
func (m *MemoryStateStore) dropLocked(id string) {
	delete(m.sessions, id)
	delete(m.seen, id)
	if l, ok := m.locks[id]; ok && l.refs == 0 {
		delete(m.locks, id)
	}
}
