package connect

import (
	"sync"
	"time"
)

// breaker prevents hammering a Kafka Connect cluster that is already down.
// After `threshold` consecutive failures the circuit opens and calls fail
// fast until the cooldown expires; the next call then probes half-open.
type breaker struct {
	mu sync.RWMutex

	threshold int
	cooldown  time.Duration

	failures  int
	openUntil time.Time
	isOpen    bool
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &breaker{
		threshold: threshold,
		cooldown:  cooldown,
	}
}

// Allow returns true if a call may proceed.
func (b *breaker) Allow() bool {
	b.mu.RLock()
	if !b.isOpen {
		b.mu.RUnlock()
		return true
	}
	expired := time.Now().After(b.openUntil)
	b.mu.RUnlock()

	if expired {
		b.mu.Lock()
		defer b.mu.Unlock()
		// Double-check after acquiring write lock
		if b.isOpen && time.Now().After(b.openUntil) {
			b.isOpen = false
			b.failures = 0
		}
		return !b.isOpen
	}
	return false
}

func (b *breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.isOpen = false
}

func (b *breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.isOpen = true
		b.openUntil = time.Now().Add(b.cooldown)
	}
}

func (b *breaker) IsOpen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.isOpen
}
