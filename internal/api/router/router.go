package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/survey-assistant/internal/conversation"
	"github.com/wolfman30/survey-assistant/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/survey-assistant/internal/http/middleware"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	ConversationHandler *conversation.Handler
	HealthHandler       http.Handler
	MetricsHandler      http.Handler
	CORS                httpmiddleware.CORSConfig
	RateLimitRPS        float64
	RateLimitBurst      int

	// Operator endpoints are mounted only when both are set.
	OperatorSecret  string
	BookingsHandler *handlers.BookingsHandler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.CORS.Enabled() {
		r.Use(httpmiddleware.CORS(cfg.CORS))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	health := cfg.HealthHandler
	if health == nil {
		health = handlers.NewHealthHandler(nil)
	}
	r.Method(http.MethodGet, "/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.ConversationHandler != nil {
		chat := cfg.ConversationHandler
		r.Group(func(api chi.Router) {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
			api.Post("/api/chat/{sessionID}", chat.Message)
			api.Get("/api/chat/{sessionID}", chat.Get)
			api.With(httpmiddleware.OperatorJWT(cfg.OperatorSecret)).Delete("/api/chat/{sessionID}", chat.Delete)
			api.Get("/ws/chat/{sessionID}", chat.ServeWS)
		})
	}

	if cfg.OperatorSecret != "" && cfg.BookingsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.OperatorJWT(cfg.OperatorSecret))
			admin.Get("/bookings", cfg.BookingsHandler.List)
		})
	}

	return r
}
