package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps revocations in process-local maps with lazy expiry.
// Suitable for tests and single-node deployments; revocations are lost on
// restart, which is acceptable because the tokens they block expire on
// their own schedule regardless.
type MemoryStore struct {
	mu       sync.Mutex
	tokens   map[string]time.Time
	families map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tokens:   make(map[string]time.Time),
		families: make(map[string]time.Time),
	}
}

func (s *MemoryStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(s.tokens, jti), nil
}

func (s *MemoryStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[jti] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) IsFamilyRevoked(ctx context.Context, family string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(s.families, family), nil
}

func (s *MemoryStore) RevokeFamily(ctx context.Context, family string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.families[family] = time.Now().Add(ttl)
	return nil
}

// lookup checks a deadline map and prunes lapsed entries as it goes.
// Caller holds the lock.
func (s *MemoryStore) lookup(m map[string]time.Time, key string) bool {
	deadline, ok := m[key]
	if !ok {
		return false
	}
	if time.Now().After(deadline) {
		delete(m, key)
		return false
	}
	return true
}
