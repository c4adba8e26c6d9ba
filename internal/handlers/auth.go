package handlers

import (
	"authservice/internal/logger"
	"authservice/internal/middleware"
	"authservice/internal/services"
	"authservice/internal/utils"
	"authservice/internal/utils/helpers"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  *services.AuthService
	resetService *services.ResetTokenService
	tokenIssuer  services.TokenIssuer
	jwtSecret    string
	accessTTL    time.Duration
}

func NewAuthHandler(
	authService *services.AuthService,
	resetService *services.ResetTokenService,
	tokenIssuer services.TokenIssuer,
	jwtSecret string,
	accessTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		resetService: resetService,
		tokenIssuer:  tokenIssuer,
		jwtSecret:    jwtSecret,
		accessTTL:    accessTTL,
	}
}

type registerRequest struct {
	Email           string `json:"email"`
	FullName        string `json:"full_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerRequest true "Данные регистрации"
// @Success 201 {object} map[string]interface{} "message, user, tokens"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 409 {object} map[string]string "Email уже занят"
// @Router /api/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Register", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "validation_error", "Invalid JSON body")
		return
	}

	if err := utils.ValidateEmail(req.Email); err != nil {
		helpers.Error(w, http.StatusBadRequest, "invalid_email", "Enter a valid email address")
		return
	}
	if req.Password != req.PasswordConfirm {
		helpers.Error(w, http.StatusBadRequest, "validation_error", "Passwords do not match")
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		helpers.Error(w, http.StatusBadRequest, "validation_error", "Password must be non-empty and at most 72 characters")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			helpers.Error(w, http.StatusConflict, "email_exists", "Email already exists")
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка регистрации пользователя", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	tokens, err := h.tokenIssuer.IssueTokenPair(user.ID)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка выдачи токенов после регистрации", zap.Error(err), zap.Int("user_id", user.ID))
		helpers.Error(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	helpers.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user.View(),
		"tokens":  tokens,
	})
}

// Login godoc
// @Summary Вход по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} map[string]interface{} "message, user, tokens"
// @Failure 400 {object} map[string]string "Неверные учётные данные"
// @Failure 401 {object} map[string]string "Учётная запись отключена"
// @Router /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Login", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "validation_error", "Invalid JSON body")
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			helpers.Error(w, http.StatusBadRequest, "invalid_credentials", "Invalid credentials")
		case errors.Is(err, services.ErrAccountDisabled):
			helpers.Error(w, http.StatusUnauthorized, "account_disabled", "User account is disabled")
		default:
			logger.WithCtx(r.Context()).Error("Ошибка входа", zap.Error(err))
			helpers.Error(w, http.StatusInternalServerError, "server_error", "Internal server error")
		}
		return
	}

	tokens, err := h.tokenIssuer.IssueTokenPair(user.ID)
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка выдачи токенов при входе", zap.Error(err), zap.Int("user_id", user.ID))
		helpers.Error(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    user.View(),
		"tokens":  tokens,
	})
}

// ForgotPassword godoc
// @Summary Запрос токена сброса пароля
// @Tags auth
// @Accept json
// @Produce json
// @Param input body forgotPasswordRequest true "Email пользователя"
// @Success 200 {object} map[string]string "message, reset_token, expires_in"
// @Failure 400 {object} map[string]string "Некорректный email"
// @Failure 404 {object} map[string]string "Пользователь не найден"
// @Router /api/forgot-password [post]
//
// Токен возвращается прямо в ответе — так делал исходный сервис.
// Для продакшена сюда напрашивается внеполосная доставка (письмо),
// см. DESIGN.md.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в ForgotPassword", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "validation_error", "Invalid JSON body")
		return
	}

	if err := utils.ValidateEmail(req.Email); err != nil {
		helpers.Error(w, http.StatusBadRequest, "invalid_email", "Invalid email format")
		return
	}

	user, err := h.authService.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			helpers.Error(w, http.StatusNotFound, "user_not_found", "User with this email does not exist")
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка поиска пользователя для сброса", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	token, err := h.resetService.IssueToken(r.Context(), user.ID)
	if err != nil {
		helpers.Error(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]string{
		"message":     "Password reset token generated",
		"reset_token": token,
		"expires_in":  fmt.Sprintf("%d minutes", int(h.resetService.TTL().Minutes())),
	})
}

// ResetPassword godoc
// @Summary Сброс пароля по токену
// @Tags auth
// @Accept json
// @Produce json
// @Param input body resetPasswordRequest true "Токен и новый пароль"
// @Success 200 {object} map[string]string "message"
// @Failure 400 {object} map[string]string "Неверный или просроченный токен"
// @Failure 404 {object} map[string]string "Пользователь не найден"
// @Router /api/reset-password [post]
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в ResetPassword", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "validation_error", "Invalid JSON body")
		return
	}

	if req.NewPassword != req.ConfirmPassword {
		helpers.Error(w, http.StatusBadRequest, "validation_error", "Passwords do not match")
		return
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		helpers.Error(w, http.StatusBadRequest, "validation_error", "Password must be non-empty and at most 72 characters")
		return
	}

	userID, err := h.resetService.ResolveAndConsume(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, services.ErrResetTokenInvalid) {
			helpers.Error(w, http.StatusBadRequest, "invalid_token", "Invalid or expired reset token")
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка погашения токена сброса", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	if err := h.authService.SetPassword(r.Context(), userID, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			helpers.Error(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка установки нового пароля", zap.Error(err), zap.Int("user_id", userID))
		helpers.Error(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successful",
	})
}

// Profile godoc
// @Summary Профиль текущего пользователя
// @Tags profile
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "user"
// @Failure 401 {object} map[string]string "Нет доступа"
// @Router /api/profile [get]
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextUserID).(int)
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, "unauthorized", "Missing access token")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			helpers.Error(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		logger.WithCtx(r.Context()).Error("Ошибка получения профиля", zap.Error(err), zap.Int("user_id", userID))
		helpers.Error(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]interface{}{
		"user": user.View(),
	})
}

// Refresh godoc
// @Summary Обновление access-токена по refresh-токену
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string "access_token"
// @Failure 401 {object} map[string]string "Недействительный refresh токен"
// @Router /api/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		logger.WithCtx(r.Context()).Warn("Отсутствует refresh token в Refresh")
		helpers.Error(w, http.StatusUnauthorized, "unauthorized", "Missing refresh token")
		return
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := utils.ParseToken(h.jwtSecret, tokenString)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("Неверный или просроченный refresh token", zap.Error(err))
		helpers.Error(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired refresh token")
		return
	}

	userID, ok1 := claims["user_id"].(float64)
	tokenType, ok2 := claims["token_type"].(string)
	if !ok1 || !ok2 || tokenType != "refresh" {
		logger.WithCtx(r.Context()).Warn("Недопустимый payload refresh токена", zap.Any("claims", claims))
		helpers.Error(w, http.StatusUnauthorized, "unauthorized", "Invalid token payload")
		return
	}

	accessToken, err := utils.GenerateToken(h.jwtSecret, int(userID), h.accessTTL, "access")
	if err != nil {
		logger.WithCtx(r.Context()).Error("Ошибка генерации access токена", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]string{
		"access_token": accessToken,
	})
}
