package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_SetGetDel(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "42", time.Minute); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}

	val, err := c.GetDel(ctx, "k")
	if err != nil {
		t.Fatalf("ошибка чтения: %v", err)
	}
	if val != "42" {
		t.Fatalf("ожидалось 42, получено %q", val)
	}

	// после изъятия ключа больше нет
	if _, err := c.GetDel(ctx, "k"); err != ErrCacheMiss {
		t.Fatalf("ожидался ErrCacheMiss, получено %v", err)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache()
	if _, err := c.GetDel(context.Background(), "нет такого"); err != ErrCacheMiss {
		t.Fatalf("ожидался ErrCacheMiss, получено %v", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	now := time.Now()
	c := NewMemoryCacheWithClock(func() time.Time { return now })
	ctx := context.Background()

	_ = c.Set(ctx, "k", "v", 600*time.Second)

	// сдвигаем часы за границу TTL
	now = now.Add(601 * time.Second)

	if _, err := c.GetDel(ctx, "k"); err != ErrCacheMiss {
		t.Fatalf("просроченный ключ должен быть невидим, получено %v", err)
	}
}

func TestMemoryCache_GetDelAtMostOnce(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	_ = c.Set(ctx, "k", "v", time.Minute)

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	hits := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetDel(ctx, "k"); err == nil {
				mu.Lock()
				hits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if hits != 1 {
		t.Fatalf("значение должно достаться ровно одному, досталось %d", hits)
	}
}
