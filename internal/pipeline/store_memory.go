package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for unit tests.
type MemoryStore struct {
	mu        sync.RWMutex
	pipelines map[uuid.UUID]Pipeline
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pipelines: make(map[uuid.UUID]Pipeline)}
}

func (s *MemoryStore) Create(_ context.Context, p Pipeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipelines[p.ID] = clonePipeline(p)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pipelines[id]
	if !ok {
		return Pipeline{}, ErrNotFound
	}
	return clonePipeline(p), nil
}

func (s *MemoryStore) List(_ context.Context) ([]Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Pipeline, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		out = append(out, clonePipeline(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, p Pipeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pipelines[p.ID]; !ok {
		return ErrNotFound
	}
	s.pipelines[p.ID] = clonePipeline(p)
	return nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status Status, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pipelines[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = updatedAt
	s.pipelines[id] = p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pipelines[id]; !ok {
		return ErrNotFound
	}
	delete(s.pipelines, id)
	return nil
}

func clonePipeline(p Pipeline) Pipeline {
	out := p
	if p.SourceConfig != nil {
		out.SourceConfig = make(map[string]string, len(p.SourceConfig))
		for k, v := range p.SourceConfig {
			out.SourceConfig[k] = v
		}
	}
	if p.DestinationConfig != nil {
		out.DestinationConfig = make(map[string]string, len(p.DestinationConfig))
		for k, v := range p.DestinationConfig {
			out.DestinationConfig[k] = v
		}
	}
	if p.Topics != nil {
		out.Topics = append([]string(nil), p.Topics...)
	}
	return out
}
