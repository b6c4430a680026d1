package activity

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps activity records in memory. It backs unit tests and
// development without Postgres; behavior mirrors the Postgres store,
// including the staged outbox.
type MemoryStore struct {
	mu     sync.RWMutex
	logs   []Log
	outbox []OutboxEntry
}

var (
	_ Store       = (*MemoryStore)(nil)
	_ OutboxStore = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, log Log) error {
	payload, err := json.Marshal(log)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	s.outbox = append(s.outbox, OutboxEntry{
		ID:        log.ID,
		Payload:   payload,
		CreatedAt: log.CreatedAt,
	})
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter Filter) ([]Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]Log, 0, len(s.logs))
	for _, l := range s.logs {
		if filter.UserID != "" && l.UserID != filter.UserID {
			continue
		}
		if filter.ResourceType != "" && l.ResourceType != filter.ResourceType {
			continue
		}
		if filter.ResourceID != "" && l.ResourceID != filter.ResourceID {
			continue
		}
		if filter.ActionPrefix != "" && !strings.HasPrefix(l.ActionType, filter.ActionPrefix) {
			continue
		}
		if !filter.Since.IsZero() && l.CreatedAt.Before(filter.Since) {
			continue
		}
		if !filter.Until.IsZero() && l.CreatedAt.After(filter.Until) {
			continue
		}
		matched = append(matched, l)
	}

	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].CreatedAt.After(matched[b].CreatedAt)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.logs[:0]
	var removed int64
	for _, l := range s.logs {
		if l.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	s.logs = kept
	return removed, nil
}

func (s *MemoryStore) PendingOutbox(_ context.Context, limit int) ([]OutboxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.outbox)
	if limit > 0 && n > limit {
		n = limit
	}
	entries := make([]OutboxEntry, n)
	copy(entries, s.outbox[:n])
	return entries, nil
}

func (s *MemoryStore) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	published := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		published[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.outbox[:0]
	for _, e := range s.outbox {
		if _, ok := published[e.ID]; ok {
			continue
		}
		kept = append(kept, e)
	}
	s.outbox = kept
	return nil
}
