// Package cache — эфемерное key-value хранилище с TTL для токенов сброса пароля.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss возвращается, когда ключа нет или его TTL истёк.
var ErrCacheMiss = errors.New("ключ не найден в кеше")

// TokenCache — контракт кеша токенов. GetDel обязан быть атомарным:
// две конкурентные выборки одного ключа не могут обе получить значение.
type TokenCache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
}
