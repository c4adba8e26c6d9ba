package services

import (
	"authservice/internal/models"
	"authservice/internal/repository"
	"authservice/internal/utils"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// Мок-репозиторий (заглушка)
type mockUserRepo struct {
	mu     sync.Mutex
	nextID int
	byID   map[int]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, byID: make(map[int]*models.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByID(_ context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) UpdatePasswordHash(_ context.Context, userID int, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func TestRegister(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	user, err := service.Register(context.Background(), "test@example.com", "Тестовый Пользователь", "secret123")
	if err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	if user.ID == 0 {
		t.Fatal("пользователю не присвоен ID")
	}
	if !user.IsActive {
		t.Fatal("новый пользователь должен быть активен")
	}
	if user.PasswordHash == "" || user.PasswordHash == "secret123" {
		t.Fatal("пароль не захеширован")
	}

	// пользователь находится по email
	found, err := service.GetUserByEmail(context.Background(), "test@example.com")
	if err != nil {
		t.Fatalf("пользователь не найден после регистрации: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("ожидался ID %d, получен %d", user.ID, found.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	if _, err := service.Register(context.Background(), "dup@example.com", "Первый", "secret123"); err != nil {
		t.Fatalf("первая регистрация должна пройти: %v", err)
	}

	_, err := service.Register(context.Background(), "dup@example.com", "Второй", "secret456")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("ожидался ErrEmailTaken, получено %v", err)
	}

	// запись ровно одна
	if len(repo.byID) != 1 {
		t.Fatalf("ожидалась одна запись, найдено %d", len(repo.byID))
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	if _, err := service.Register(context.Background(), "login@example.com", "Тест", "secret123"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}

	user, err := service.Login(context.Background(), "login@example.com", "secret123")
	if err != nil {
		t.Fatalf("ошибка логина: %v", err)
	}
	if user.Email != "login@example.com" {
		t.Fatalf("возвращён не тот пользователь: %s", user.Email)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	_, _ = service.Register(context.Background(), "login@example.com", "Тест", "secret123")

	_, err := service.Login(context.Background(), "login@example.com", "не тот пароль")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("ожидался ErrInvalidCredentials, получено %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	// неизвестный email неотличим от неверного пароля
	_, err := service.Login(context.Background(), "nobody@example.com", "secret123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("ожидался ErrInvalidCredentials, получено %v", err)
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	hashed, _ := utils.HashPassword("secret123")
	repo.byID[1] = &models.User{
		ID:           1,
		Email:        "off@example.com",
		PasswordHash: hashed,
		IsActive:     false,
	}
	repo.nextID = 2

	_, err := service.Login(context.Background(), "off@example.com", "secret123")
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("ожидался ErrAccountDisabled, получено %v", err)
	}
}

func TestSetPassword(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	user, _ := service.Register(context.Background(), "reset@example.com", "Тест", "oldPassword1")

	if err := service.SetPassword(context.Background(), user.ID, "newPassword1"); err != nil {
		t.Fatalf("ошибка установки пароля: %v", err)
	}

	// старый пароль больше не подходит
	if _, err := service.Login(context.Background(), "reset@example.com", "oldPassword1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("старый пароль должен быть отвергнут, получено %v", err)
	}
	if _, err := service.Login(context.Background(), "reset@example.com", "newPassword1"); err != nil {
		t.Fatalf("новый пароль должен работать: %v", err)
	}
}

func TestSetPassword_UserGone(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo)

	err := service.SetPassword(context.Background(), 999, "newPassword1")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("ожидался ErrUserNotFound, получено %v", err)
	}
}

func TestJWTIssuer_Pair(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", 15*time.Minute, 720*time.Hour)

	pair, err := issuer.IssueTokenPair(1)
	if err != nil {
		t.Fatalf("ошибка выдачи пары токенов: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("токены не сгенерированы")
	}

	claims, err := utils.ParseToken("test-secret", pair.Access)
	if err != nil {
		t.Fatalf("access токен не парсится: %v", err)
	}
	if claims["token_type"] != "access" {
		t.Fatalf("ожидался token_type=access, получен %v", claims["token_type"])
	}

	claims, err = utils.ParseToken("test-secret", pair.Refresh)
	if err != nil {
		t.Fatalf("refresh токен не парсится: %v", err)
	}
	if claims["token_type"] != "refresh" {
		t.Fatalf("ожидался token_type=refresh, получен %v", claims["token_type"])
	}
}
