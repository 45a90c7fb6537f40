package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/keyfold/keyfold/internal/account"
	"github.com/keyfold/keyfold/internal/api/handler"
	"github.com/keyfold/keyfold/internal/api/middleware"
	"github.com/keyfold/keyfold/internal/mailer"
	"github.com/keyfold/keyfold/internal/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Accounts *account.Service
	Sessions *session.Manager
	Mailer   mailer.Mailer
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.Accounts, cfg.Sessions, cfg.Mailer)
	sessionHandler := handler.NewSessionHandler(cfg.Accounts, cfg.Sessions)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.Sessions)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Unauthenticated routes
	api.HandleFunc("/signup", accountHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/login", sessionHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", sessionHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/reset-password", accountHandler.ResetPassword).Methods(http.MethodPost)

	// Protected routes
	profile := api.PathPrefix("/profile").Subrouter()
	profile.Use(authMiddleware)
	profile.HandleFunc("", accountHandler.Profile).Methods(http.MethodGet)
	profile.HandleFunc("", accountHandler.UpdateProfile).Methods(http.MethodPut)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
