package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/registrar/internal/api/handler"
	"github.com/mcoot/registrar/internal/api/middleware"
	"github.com/mcoot/registrar/internal/services/registration"
	"github.com/mcoot/registrar/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Controller *registration.Controller
	Storage    storage.Storage
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	registrantHandler := handler.NewRegistrantHandler(cfg.Controller)
	sessionHandler := handler.NewSessionHandler(cfg.Controller)
	validateHandler := handler.NewValidateHandler(cfg.Controller.Validator())
	healthHandler := handler.NewHealthHandler(cfg.Storage)

	// Create middleware
	sessionMiddleware := middleware.Session(cfg.Controller)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/validate", validateHandler.Validate).Methods(http.MethodPost)

	// Registrant routes
	api.HandleFunc("/registrants", registrantHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/registrants", registrantHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/registrants/{email}", registrantHandler.Get).Methods(http.MethodGet)

	// Session routes
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)

	sessions := api.PathPrefix("/sessions/{" + middleware.SessionIDVar + "}").Subrouter()
	sessions.Use(sessionMiddleware)
	sessions.HandleFunc("", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/identity", sessionHandler.SubmitIdentity).Methods(http.MethodPost)
	sessions.HandleFunc("/back", sessionHandler.Back).Methods(http.MethodPost)
	sessions.HandleFunc("/credentials", sessionHandler.SubmitCredentials).Methods(http.MethodPost)

	return r
}
