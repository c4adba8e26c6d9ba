package services

import (
	"authservice/internal/cache"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestIssueToken_Format(t *testing.T) {
	svc := NewResetTokenService(cache.NewMemoryCache(), 10*time.Minute)

	token, err := svc.IssueToken(context.Background(), 1)
	if err != nil {
		t.Fatalf("ошибка выдачи токена: %v", err)
	}
	if len(token) != 32 {
		t.Fatalf("ожидалось 32 символа, получено %d", len(token))
	}
	for _, r := range token {
		if !strings.ContainsRune(resetTokenAlphabet, r) {
			t.Fatalf("символ %q вне алфавита [A-Za-z0-9]", r)
		}
	}
}

func TestResolveAndConsume_ExactlyOnce(t *testing.T) {
	svc := NewResetTokenService(cache.NewMemoryCache(), 10*time.Minute)
	ctx := context.Background()

	token, err := svc.IssueToken(ctx, 7)
	if err != nil {
		t.Fatalf("ошибка выдачи токена: %v", err)
	}

	userID, err := svc.ResolveAndConsume(ctx, token)
	if err != nil {
		t.Fatalf("первое погашение должно пройти: %v", err)
	}
	if userID != 7 {
		t.Fatalf("ожидался user_id=7, получен %d", userID)
	}

	if _, err := svc.ResolveAndConsume(ctx, token); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("повторное погашение должно вернуть ErrResetTokenInvalid, получено %v", err)
	}
}

func TestResolveAndConsume_UnknownToken(t *testing.T) {
	svc := NewResetTokenService(cache.NewMemoryCache(), 10*time.Minute)

	if _, err := svc.ResolveAndConsume(context.Background(), "чужой-токен"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("ожидался ErrResetTokenInvalid, получено %v", err)
	}
}

func TestResolveAndConsume_Expired(t *testing.T) {
	now := time.Now()
	mem := cache.NewMemoryCacheWithClock(func() time.Time { return now })
	svc := NewResetTokenService(mem, 600*time.Second)
	ctx := context.Background()

	token, err := svc.IssueToken(ctx, 3)
	if err != nil {
		t.Fatalf("ошибка выдачи токена: %v", err)
	}

	now = now.Add(601 * time.Second)

	if _, err := svc.ResolveAndConsume(ctx, token); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("просроченный токен должен быть невалиден, получено %v", err)
	}
}

func TestResolveAndConsume_Concurrent(t *testing.T) {
	svc := NewResetTokenService(cache.NewMemoryCache(), 10*time.Minute)
	ctx := context.Background()

	token, err := svc.IssueToken(ctx, 42)
	if err != nil {
		t.Fatalf("ошибка выдачи токена: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ResolveAndConsume(ctx, token); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("токен должен погаситься ровно один раз, погашен %d", successes)
	}
}

func TestIssueToken_MultipleOutstanding(t *testing.T) {
	// Повторный forgot-password не инвалидирует прежние токены:
	// оба живут и оба гасятся независимо.
	svc := NewResetTokenService(cache.NewMemoryCache(), 10*time.Minute)
	ctx := context.Background()

	first, _ := svc.IssueToken(ctx, 5)
	second, _ := svc.IssueToken(ctx, 5)

	if first == second {
		t.Fatal("токены должны быть уникальны")
	}

	if id, err := svc.ResolveAndConsume(ctx, second); err != nil || id != 5 {
		t.Fatalf("второй токен должен быть валиден: id=%d err=%v", id, err)
	}
	if id, err := svc.ResolveAndConsume(ctx, first); err != nil || id != 5 {
		t.Fatalf("первый токен должен остаться валидным: id=%d err=%v", id, err)
	}
}
