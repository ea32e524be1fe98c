package cache

import (
	"context"
	"sync"
	"time"

	"clearfeed/types"
)

// AllFeedsKey holds the merged article list of every category.
const AllFeedsKey = "all-feeds"

// CategoryKey returns the cache key of one category's article list.
func CategoryKey(category string) string {
	return "category-" + category
}

// Store is a key to article-list cache with a fixed TTL.
// Expired entries read as absent.
type Store interface {
	Get(ctx context.Context, key string) ([]*types.Article, bool, error)
	Set(ctx context.Context, key string, articles []*types.Article) error
	FlushAll(ctx context.Context) error
}

type entry struct {
	articles []*types.Article
	storedAt time.Time
}

// Memory is an in-process Store. Expiry is checked lazily on read.
type Memory struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		items: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]*types.Article, bool, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if m.now().Sub(e.storedAt) > m.ttl {
		m.mu.Lock()
		// Another writer may have replaced the entry in the meantime
		if cur, ok := m.items[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.articles, true, nil
}

func (m *Memory) Set(_ context.Context, key string, articles []*types.Article) error {
	m.mu.Lock()
	m.items[key] = entry{articles: articles, storedAt: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *Memory) FlushAll(_ context.Context) error {
	m.mu.Lock()
	m.items = make(map[string]entry)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
