package alerts

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for unit tests.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]Preference
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]Preference)}
}

func scopeKey(userID string, pipelineID *uuid.UUID) string {
	if pipelineID == nil {
		return userID + "/*"
	}
	return userID + "/" + pipelineID.String()
}

func (s *MemoryStore) Upsert(_ context.Context, pref Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[scopeKey(pref.UserID, pref.PipelineID)] = clonePreference(pref)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID string, pipelineID *uuid.UUID) (Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pref, ok := s.prefs[scopeKey(userID, pipelineID)]
	if !ok {
		return Preference{}, ErrNotFound
	}
	return clonePreference(pref), nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Preference
	for _, pref := range s.prefs {
		if pref.UserID == userID {
			out = append(out, clonePreference(pref))
		}
	}
	// Global scope first, then by pipeline for stable output.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].PipelineID, out[j].PipelineID
		switch {
		case a == nil:
			return true
		case b == nil:
			return false
		default:
			return a.String() < b.String()
		}
	})
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string, pipelineID *uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scopeKey(userID, pipelineID)
	if _, ok := s.prefs[key]; !ok {
		return ErrNotFound
	}
	delete(s.prefs, key)
	return nil
}

func clonePreference(pref Preference) Preference {
	out := pref
	if pref.PipelineID != nil {
		id := *pref.PipelineID
		out.PipelineID = &id
	}
	if pref.Channels != nil {
		out.Channels = append([]string(nil), pref.Channels...)
	}
	return out
}
