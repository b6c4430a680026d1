package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryKeyStore is an in-memory KeyStore for unit tests.
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[uuid.UUID]APIKey
}

func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[uuid.UUID]APIKey)}
}

func (s *MemoryKeyStore) Create(_ context.Context, key APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = cloneKey(key)
	return nil
}

func (s *MemoryKeyStore) GetByPrefix(_ context.Context, prefix string) (APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range s.keys {
		if k.Prefix == prefix {
			return cloneKey(k), nil
		}
	}
	return APIKey{}, ErrNotFound
}

func (s *MemoryKeyStore) List(_ context.Context) ([]APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]APIKey, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, cloneKey(k))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryKeyStore) TouchLastUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return ErrNotFound
	}
	k.LastUsedAt = &at
	s.keys[id] = k
	return nil
}

func (s *MemoryKeyStore) Revoke(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok || k.Revoked() {
		return ErrNotFound
	}
	k.RevokedAt = &at
	s.keys[id] = k
	return nil
}

func cloneKey(k APIKey) APIKey {
	out := k
	if k.LastUsedAt != nil {
		t := *k.LastUsedAt
		out.LastUsedAt = &t
	}
	if k.RevokedAt != nil {
		t := *k.RevokedAt
		out.RevokedAt = &t
	}
	return out
}
