package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache — потокобезопасная in-memory замена Redis для тестов
// и локального запуска. Часы инжектируются, чтобы тесты могли
// управлять истечением TTL без ожидания.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	now  func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(time.Now)
}

func NewMemoryCacheWithClock(now func() time.Time) *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		now:  now,
	}
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = memoryEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// GetDel выполняет чтение и удаление под одним мьютексом, поэтому при
// конкурентных вызовах значение получит ровно один из них.
func (c *MemoryCache) GetDel(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		return "", ErrCacheMiss
	}

	delete(c.data, key)

	// Просроченная запись неотличима от отсутствующей.
	if !c.now().Before(entry.expiresAt) {
		return "", ErrCacheMiss
	}
	return entry.value, nil
}
