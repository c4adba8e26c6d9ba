package services

import (
	"authservice/internal/models"
	"authservice/internal/utils"
	"time"
)

// TokenIssuer — узкая способность «выдать пару токенов пользователю».
// Формат токенов определяет реализация, хендлеры знают только пару.
type TokenIssuer interface {
	IssueTokenPair(userID int) (*models.TokenPair, error)
}

// JWTIssuer выдаёт подписанные HS256 JWT с типом access/refresh.
type JWTIssuer struct {
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL, refreshTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (i *JWTIssuer) IssueTokenPair(userID int) (*models.TokenPair, error) {
	access, err := utils.GenerateToken(i.secret, userID, i.accessTTL, "access")
	if err != nil {
		return nil, err
	}
	refresh, err := utils.GenerateToken(i.secret, userID, i.refreshTTL, "refresh")
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}
