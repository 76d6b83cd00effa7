// internal/storage/history/memory.go
package history

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/newthinker/cryptosignals/internal/core"
)

// MemoryStore is an in-memory notification history.
type MemoryStore struct {
	items   []core.Notification
	maxSize int
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with max capacity.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 200
	}
	return &MemoryStore{
		items:   make([]core.Notification, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends a notification, evicting the oldest when over capacity.
func (m *MemoryStore) Add(ctx context.Context, n core.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	m.items = append(m.items, n)

	if len(m.items) > m.maxSize {
		sort.SliceStable(m.items, func(i, j int) bool {
			return m.items[i].ReceivedAt.Before(m.items[j].ReceivedAt)
		})
		m.items = m.items[len(m.items)-m.maxSize:]
	}

	return nil
}

// List returns notifications newest first.
func (m *MemoryStore) List(ctx context.Context, limit int) ([]core.Notification, error) {
	m.mu.RLock()
	result := make([]core.Notification, len(m.items))
	copy(result, m.items)
	m.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ReceivedAt.After(result[j].ReceivedAt)
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// Count returns the number of stored notifications.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items), nil
}

func (m *MemoryStore) Close() error { return nil }
