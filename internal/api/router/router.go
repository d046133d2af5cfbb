package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/acutecare/triage-assistant/internal/http/handlers"
	httpmiddleware "github.com/acutecare/triage-assistant/internal/http/middleware"
	"github.com/acutecare/triage-assistant/internal/webchat"
	"github.com/acutecare/triage-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	SessionHandler     *handlers.SessionHandler
	WebChatHandler     *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// SessionRateLimit throttles session creation per IP; zero disables it.
	SessionRateLimit float64
	SessionRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.SessionHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/sessions", func(api chi.Router) {
		if cfg.SessionRateLimit > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.SessionRateLimit, cfg.SessionRateBurst))
		}
		api.Post("/", cfg.SessionHandler.StartSession)
		api.Route("/{sessionID}", func(s chi.Router) {
			s.Post("/messages", cfg.SessionHandler.SubmitAnswer)
			s.Get("/result", cfg.SessionHandler.Result)
			s.Get("/export", cfg.SessionHandler.Export)
			s.Delete("/", cfg.SessionHandler.EndSession)
		})
	})

	if cfg.WebChatHandler != nil {
		r.Get("/webchat/ws", cfg.WebChatHandler.HandleWebSocket)
	}

	return r
}
