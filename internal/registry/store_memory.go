package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for unit tests.
type MemoryStore struct {
	mu       sync.RWMutex
	versions []ConfigVersion
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, v ConfigVersion) (ConfigVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := 1
	for _, existing := range s.versions {
		if existing.PipelineID == v.PipelineID && existing.Target == v.Target && existing.Version >= next {
			next = existing.Version + 1
		}
	}
	v.Version = next
	v.Active = false
	s.versions = append(s.versions, cloneVersion(v))
	return v, nil
}

func (s *MemoryStore) List(_ context.Context, pipelineID uuid.UUID, target Target) ([]ConfigVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ConfigVersion
	for _, v := range s.versions {
		if v.PipelineID == pipelineID && v.Target == target {
			out = append(out, cloneVersion(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, pipelineID uuid.UUID, target Target, version int) (ConfigVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.versions {
		if v.PipelineID == pipelineID && v.Target == target && v.Version == version {
			return cloneVersion(v), nil
		}
	}
	return ConfigVersion{}, ErrNotFound
}

func (s *MemoryStore) Active(_ context.Context, pipelineID uuid.UUID, target Target) (ConfigVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.versions {
		if v.PipelineID == pipelineID && v.Target == target && v.Active {
			return cloneVersion(v), nil
		}
	}
	return ConfigVersion{}, ErrNoActive
}

func (s *MemoryStore) SetActive(_ context.Context, pipelineID uuid.UUID, target Target, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.versions {
		v := &s.versions[i]
		if v.PipelineID != pipelineID || v.Target != target {
			continue
		}
		if v.Version == version {
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	for i := range s.versions {
		v := &s.versions[i]
		if v.PipelineID == pipelineID && v.Target == target {
			v.Active = v.Version == version
		}
	}
	return nil
}

func cloneVersion(v ConfigVersion) ConfigVersion {
	out := v
	if v.Config != nil {
		out.Config = make(map[string]string, len(v.Config))
		for k, val := range v.Config {
			out.Config[k] = val
		}
	}
	return out
}
