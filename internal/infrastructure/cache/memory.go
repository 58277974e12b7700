package cache

import (
	"context"
	"sync"
	"time"

	repo "github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
)

// MemoryStore is a simple in-memory key-value store with expiration
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store. Expired items are removed
// periodically until ctx is done.
func NewMemoryStore(ctx context.Context) *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
		now:   time.Now,
	}

	go store.cleanupExpired(ctx, 5*time.Minute)

	return store
}

// Set stores a key-value pair with expiration
func (ms *MemoryStore) Set(key string, value string, expiration time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[key] = &memoryItem{
		value:      value,
		expireTime: ms.now().Add(expiration),
	}
}

// Get retrieves a value by key (returns empty string if not found or expired)
func (ms *MemoryStore) Get(key string) (string, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[key]
	if !exists {
		return "", false
	}

	if ms.now().After(item.expireTime) {
		return "", false
	}

	return item.value, true
}

func (ms *MemoryStore) removeExpired() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	for key, item := range ms.items {
		if now.After(item.expireTime) {
			delete(ms.items, key)
		}
	}
}

func (ms *MemoryStore) cleanupExpired(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ms.removeExpired()
		}
	}
}

// MemoryLedger is a ProcessedLedger kept in process memory.
// It only deduplicates within one process lifetime.
type MemoryLedger struct {
	store *MemoryStore
	ttl   time.Duration
}

var _ repo.ProcessedLedger = (*MemoryLedger)(nil)

// NewMemoryLedger creates a ledger whose entries expire after ttl
func NewMemoryLedger(store *MemoryStore, ttl time.Duration) *MemoryLedger {
	return &MemoryLedger{store: store, ttl: ttl}
}

func (l *MemoryLedger) IsProcessed(_ context.Context, documentID string) (bool, error) {
	_, ok := l.store.Get(ledgerKey(documentID))
	return ok, nil
}

func (l *MemoryLedger) MarkProcessed(_ context.Context, documentID string) error {
	l.store.Set(ledgerKey(documentID), time.Now().UTC().Format(time.RFC3339), l.ttl)
	return nil
}
