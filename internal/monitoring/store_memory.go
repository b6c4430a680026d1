package monitoring

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for unit tests.
type MemoryStore struct {
	mu     sync.RWMutex
	points []Point
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(_ context.Context, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, points...)
	return nil
}

func (s *MemoryStore) Timeseries(_ context.Context, pipelineID uuid.UUID, since time.Time, step time.Duration) ([]Bucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byStart := make(map[time.Time]*Bucket)
	for _, p := range s.points {
		if p.PipelineID != pipelineID || p.RecordedAt.Before(since) {
			continue
		}
		start := p.RecordedAt.Truncate(step)
		b, ok := byStart[start]
		if !ok {
			b = &Bucket{Start: start}
			byStart[start] = b
		}
		b.Samples++
		if p.State == StateRunning {
			b.Running++
		}
		if p.TasksFailed > b.TasksFailed {
			b.TasksFailed = p.TasksFailed
		}
		if p.Lag > b.MaxLag {
			b.MaxLag = p.Lag
		}
	}

	buckets := make([]Bucket, 0, len(byStart))
	for _, b := range byStart {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start.Before(buckets[j].Start) })
	return buckets, nil
}

func (s *MemoryStore) Latest(_ context.Context, pipelineID uuid.UUID) (Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		latest Point
		found  bool
	)
	for _, p := range s.points {
		if p.PipelineID != pipelineID {
			continue
		}
		if !found || p.RecordedAt.After(latest.RecordedAt) {
			latest = p
			found = true
		}
	}
	if !found {
		return Point{}, ErrNoData
	}
	return latest, nil
}

func (s *MemoryStore) Summary(_ context.Context) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[uuid.UUID]Point)
	for _, p := range s.points {
		if cur, ok := latest[p.PipelineID]; !ok || p.RecordedAt.After(cur.RecordedAt) {
			latest[p.PipelineID] = p
		}
	}

	summary := Summary{ByState: make(map[string]int)}
	for _, p := range latest {
		summary.Pipelines++
		summary.ByState[p.State]++
		summary.TasksFailed += p.TasksFailed
	}
	return summary, nil
}

func (s *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.points[:0]
	var deleted int64
	for _, p := range s.points {
		if p.RecordedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	s.points = kept
	return deleted, nil
}
