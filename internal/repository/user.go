package repository

import (
	"authservice/internal/logger"
	"authservice/internal/models"
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var (
	// ErrEmailExists — нарушение уникальности email при создании пользователя.
	ErrEmailExists = errors.New("email уже зарегистрирован")
	// ErrNotFound — пользователь не найден.
	ErrNotFound = errors.New("пользователь не найден")
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	logger.WithCtx(ctx).Info("Создание пользователя (repo)", zap.String("email", user.Email))
	query := `
	INSERT INTO users (email, full_name, password_hash, is_active)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		user.Email,
		user.FullName,
		user.PasswordHash,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		logger.WithCtx(ctx).Warn("Email уже занят (repo)", zap.String("email", user.Email))
		return ErrEmailExists
	}
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка создания пользователя (repo)", zap.Error(err))
	}
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	logger.WithCtx(ctx).Debug("Получение пользователя по email (repo)", zap.String("email", email))
	query := `SELECT id, email, full_name, password_hash, is_active, created_at, updated_at
	FROM users
	WHERE email = $1`

	var user models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения пользователя по email (repo)", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	logger.WithCtx(ctx).Debug("Получение пользователя по ID (repo)", zap.Int("user_id", id))
	query := `SELECT id, email, full_name, password_hash, is_active, created_at, updated_at
	FROM users
	WHERE id = $1`

	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка получения пользователя по ID (repo)", zap.Int("user_id", id), zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error {
	logger.WithCtx(ctx).Info("Обновление пароля (repo)", zap.Int("user_id", userID))
	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, passwordHash, userID)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка обновления пароля (repo)", zap.Error(err), zap.Int("user_id", userID))
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
