package services

import (
	"authservice/internal/cache"
	"authservice/internal/logger"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ErrResetTokenInvalid — токен не найден: либо никогда не выдавался,
// либо уже использован, либо истёк. Эти случаи неразличимы снаружи.
var ErrResetTokenInvalid = errors.New("неверный или просроченный токен сброса")

const (
	resetTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	resetTokenLength   = 32
	resetKeyPrefix     = "password_reset:"
)

// ResetTokenService — жизненный цикл токена сброса пароля: выдача,
// хранение с TTL, одноразовое погашение. Кеш передаётся зависимостью,
// чтобы в тестах подставлять in-memory реализацию с управляемыми часами.
type ResetTokenService struct {
	cache cache.TokenCache
	ttl   time.Duration
}

func NewResetTokenService(c cache.TokenCache, ttl time.Duration) *ResetTokenService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ResetTokenService{cache: c, ttl: ttl}
}

func (s *ResetTokenService) TTL() time.Duration {
	return s.ttl
}

// IssueToken генерирует токен и кладёт token -> userID в кеш с TTL.
// Ранее выданные токены того же пользователя не инвалидируются:
// несколько живых токенов могут сосуществовать.
func (s *ResetTokenService) IssueToken(ctx context.Context, userID int) (string, error) {
	token, err := generateResetToken()
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка генерации токена сброса", zap.Error(err), zap.Int("user_id", userID))
		return "", err
	}

	if err := s.cache.Set(ctx, resetKeyPrefix+token, strconv.Itoa(userID), s.ttl); err != nil {
		logger.WithCtx(ctx).Error("Ошибка записи токена сброса в кеш", zap.Error(err), zap.Int("user_id", userID))
		return "", err
	}

	logger.WithCtx(ctx).Info("Выдан токен сброса пароля",
		zap.Int("user_id", userID),
		zap.Duration("ttl", s.ttl),
	)
	return token, nil
}

// ResolveAndConsume атомарно изымает токен из кеша и возвращает userID.
// Повторный вызов с тем же токеном всегда возвращает ErrResetTokenInvalid.
func (s *ResetTokenService) ResolveAndConsume(ctx context.Context, token string) (int, error) {
	val, err := s.cache.GetDel(ctx, resetKeyPrefix+token)
	if errors.Is(err, cache.ErrCacheMiss) {
		logger.WithCtx(ctx).Warn("Токен сброса не найден или просрочен")
		return 0, ErrResetTokenInvalid
	}
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка чтения токена сброса из кеша", zap.Error(err))
		return 0, err
	}

	userID, err := strconv.Atoi(val)
	if err != nil {
		logger.WithCtx(ctx).Error("Повреждённое значение в кеше токенов", zap.String("value", val))
		return 0, fmt.Errorf("повреждённая запись токена: %w", err)
	}
	return userID, nil
}

// generateResetToken — 32 символа, равномерно из [A-Za-z0-9], только
// криптостойкий источник: предсказуемость токена = захват аккаунта.
func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenLength)
	alphabetLen := big.NewInt(int64(len(resetTokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf[i] = resetTokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
