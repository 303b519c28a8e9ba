package seathold

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"movie-booking/internal/apperrors"
)

// memoryStore keeps holds in an expirable LRU. It is meant for a single API
// instance; run with Redis when more than one instance serves traffic.
type memoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	inner    *lru.LRU[string, string]
}

func NewMemoryStore(capacity int, ttl time.Duration) Store {
	if capacity <= 0 {
		capacity = 100000
	}
	return &memoryStore{
		ttl:      ttl,
		capacity: capacity,
		inner:    lru.NewLRU[string, string](capacity, nil, ttl),
	}
}

func (m *memoryStore) Hold(_ context.Context, showtimeID uint, owner string, seats []string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Peek leaves the eviction order alone: it stays the expiry order, so the
	// LRU only ever drops expired holds while the live ones fit.
	var taken []string
	added := 0
	for _, seat := range seats {
		cur, ok := m.inner.Peek(holdKey(showtimeID, seat))
		switch {
		case !ok:
			added++
		case cur != owner:
			taken = append(taken, seat)
		}
	}
	if len(taken) > 0 {
		return time.Time{}, apperrors.NewSeatsUnavailableError(taken)
	}
	if added > 0 && len(m.inner.Keys())+added > m.capacity {
		return time.Time{}, apperrors.NewUnavailableError("seat holds are at capacity, try again shortly")
	}

	expiresAt := time.Now().Add(m.ttl)
	for _, seat := range seats {
		// Add on an existing key resets its expiry.
		m.inner.Add(holdKey(showtimeID, seat), owner)
	}
	return expiresAt, nil
}

func (m *memoryStore) Release(_ context.Context, showtimeID uint, owner string, seats []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(seats))
	if len(seats) == 0 {
		prefix := showtimePrefix(showtimeID)
		for _, key := range m.inner.Keys() {
			if strings.HasPrefix(key, prefix) {
				keys = append(keys, key)
			}
		}
	} else {
		for _, seat := range seats {
			keys = append(keys, holdKey(showtimeID, seat))
		}
	}

	for _, key := range keys {
		if cur, ok := m.inner.Peek(key); ok && cur == owner {
			m.inner.Remove(key)
		}
	}
	return nil
}

func (m *memoryStore) Holds(_ context.Context, showtimeID uint) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := showtimePrefix(showtimeID)
	holds := make(map[string]string)
	for _, key := range m.inner.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if owner, ok := m.inner.Peek(key); ok {
			holds[strings.TrimPrefix(key, prefix)] = owner
		}
	}
	return holds, nil
}

func (m *memoryStore) Close() error {
	m.inner.Purge()
	return nil
}
