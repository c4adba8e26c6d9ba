package routes

import (
	"authservice/internal/handlers"
	"authservice/internal/middleware"

	"github.com/gorilla/mux"
)

func InitRoutes(router *mux.Router, authHandler *handlers.AuthHandler, jwtSecret string) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logging)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/forgot-password", authHandler.ForgotPassword).Methods("POST")
	api.HandleFunc("/reset-password", authHandler.ResetPassword).Methods("POST")
	api.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")

	// --- Защищённые JWT ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuth(jwtSecret))

	protected.HandleFunc("/profile", authHandler.Profile).Methods("GET")
}
