package services

import (
	"authservice/internal/logger"
	"authservice/internal/models"
	"authservice/internal/repository"
	"authservice/internal/utils"
	"context"
	"errors"

	"go.uber.org/zap"
)

var (
	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email уже зарегистрирован")
	// ErrInvalidCredentials — неизвестный email или неверный пароль.
	// Случаи намеренно не различаются, чтобы не раскрывать наличие аккаунта.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	// ErrAccountDisabled — учётная запись деактивирована.
	ErrAccountDisabled = errors.New("учётная запись отключена")
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("пользователь не найден")
)

type AuthService struct {
	repo UserRepo
}

func NewAuthService(repo UserRepo) *AuthService {
	return &AuthService{repo: repo}
}

type UserRepo interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error
}

// Register хеширует пароль и создаёт пользователя.
func (s *AuthService) Register(ctx context.Context, email, fullName, plainPassword string) (*models.User, error) {
	logger.WithCtx(ctx).Info("Регистрация пользователя (service)", zap.String("email", email))

	hashed, err := utils.HashPassword(plainPassword)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка хеширования пароля", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hashed,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		logger.WithCtx(ctx).Error("Ошибка создания пользователя (service)", zap.Error(err))
		return nil, err
	}

	logger.WithCtx(ctx).Info("Пользователь зарегистрирован (service)", zap.Int("user_id", user.ID))
	return user, nil
}

// Login проверяет учётные данные и активность аккаунта.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	logger.WithCtx(ctx).Info("Попытка входа (service)", zap.String("email", email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.WithCtx(ctx).Warn("Пользователь не найден (service)", zap.String("email", email))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.WithCtx(ctx).Warn("Неверный пароль (service)", zap.Int("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		logger.WithCtx(ctx).Warn("Учётная запись отключена (service)", zap.Int("user_id", user.ID))
		return nil, ErrAccountDisabled
	}

	logger.WithCtx(ctx).Info("Вход выполнен (service)", zap.Int("user_id", user.ID))
	return user, nil
}

func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *AuthService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// SetPassword устанавливает новый пароль пользователю (финал сброса).
func (s *AuthService) SetPassword(ctx context.Context, userID int, newPassword string) error {
	logger.WithCtx(ctx).Info("Установка нового пароля (service)", zap.Int("user_id", userID))

	// Пользователь мог быть удалён между выдачей и погашением токена.
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка хеширования нового пароля", zap.Error(err))
		return err
	}

	if err := s.repo.UpdatePasswordHash(ctx, userID, hashed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		logger.WithCtx(ctx).Error("Ошибка обновления пароля (service)", zap.Error(err), zap.Int("user_id", userID))
		return err
	}

	logger.WithCtx(ctx).Info("Пароль обновлён (service)", zap.Int("user_id", userID))
	return nil
}
