package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/registrar/internal/services/registration"
	"github.com/mcoot/registrar/internal/web/handler"
	"github.com/mcoot/registrar/internal/web/middleware"
	"github.com/mcoot/registrar/internal/web/sse"
	"github.com/mcoot/registrar/internal/web/static"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger     *slog.Logger
	Controller *registration.Controller
	Hub        *sse.Hub
	StaticDir  string // Overrides the embedded static files when set
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	hub := cfg.Hub
	if hub == nil {
		hub = sse.NewHub(cfg.Logger)
		go hub.Run()
	}

	registrationHandler := handler.NewRegistrationHandler(cfg.Controller, hub, cfg.Logger)

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(staticFiles(cfg.StaticDir))))

	// Stream and fragment routes need no wizard session
	r.HandleFunc("/events", registrationHandler.Events).Methods(http.MethodGet)
	r.HandleFunc("/registrants/table", registrationHandler.Table).Methods(http.MethodGet)

	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.Flash())
	pages.Use(middleware.Wizard(cfg.Controller))
	pages.HandleFunc("/", registrationHandler.Home).Methods(http.MethodGet)
	pages.HandleFunc("/register/next", registrationHandler.Next).Methods(http.MethodPost)
	pages.HandleFunc("/register/back", registrationHandler.Back).Methods(http.MethodPost)
	pages.HandleFunc("/register/save", registrationHandler.Save).Methods(http.MethodPost)

	return r
}

func staticFiles(dir string) http.FileSystem {
	if dir != "" {
		return http.Dir(dir)
	}
	return http.FS(static.FS)
}
