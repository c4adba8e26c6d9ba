package app

import (
	"authservice/internal/cache"
	"authservice/internal/config"
	"authservice/internal/db"
	"authservice/internal/handlers"
	"authservice/internal/repository"
	"authservice/internal/routes"
	"authservice/internal/services"
	"time"

	"github.com/gorilla/mux"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	tokenCache := cache.NewRedisCache(redisClient)

	// Репозитории
	userRepo := repository.NewUserRepository(conn)

	// Сервисы
	authService := services.NewAuthService(userRepo)
	resetService := services.NewResetTokenService(tokenCache, cfg.ResetTokenTTL())

	accessTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		accessTTL = 15 * time.Minute
	}
	refreshTTL, err := time.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil {
		refreshTTL = 720 * time.Hour
	}
	tokenIssuer := services.NewJWTIssuer(cfg.JWTSecret, accessTTL, refreshTTL)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService, resetService, tokenIssuer, cfg.JWTSecret, accessTTL)

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, authHandler, cfg.JWTSecret)

	return router, nil
}
