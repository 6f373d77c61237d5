package api

import (
	"net/http"

	"github.com/ValHeil/kartensets/internal/api/handler"
	customMiddleware "github.com/ValHeil/kartensets/internal/api/middleware"
	"github.com/ValHeil/kartensets/internal/catalog"
	"github.com/ValHeil/kartensets/internal/config"
	"github.com/ValHeil/kartensets/internal/domain"
	"github.com/ValHeil/kartensets/internal/reconcile"
	"github.com/ValHeil/kartensets/internal/repository/localstore"
	"github.com/ValHeil/kartensets/internal/repository/redis"
	"github.com/ValHeil/kartensets/internal/repository/remote"
	"github.com/ValHeil/kartensets/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router. redisClient and
// remoteClient may be nil when the respective backends are not
// configured; the affected features degrade quietly.
func NewRouter(
	cfg *config.Config,
	adapter *localstore.Adapter,
	repo domain.SessionRepository,
	redisClient *redis.Client,
	remoteClient *remote.Client,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Change hints ride on Redis when available.
	var notifier *redis.Notifier
	if redisClient != nil {
		notifier = redis.NewNotifier(redisClient)
	} else {
		log.Info().Msg("Redis not configured, change hints disabled")
	}

	// Initialize services
	sessionService := service.NewSessionService(repo, notifier, cfg.Server.PublicURL)
	reconciler := reconcile.NewReconciler(adapter, repo)

	var catalogService *catalog.Service
	if remoteClient != nil {
		var cache catalog.Cache
		if redisClient != nil {
			cache = redis.NewCatalogCache(redisClient)
		}
		catalogService = catalog.NewService(remoteClient, cache)
	}

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(sessionService)
	joinHandler := handler.NewJoinHandler(reconciler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)

		// Join links are unauthenticated; the URL itself is the trust
		// signal.
		r.Post("/join", joinHandler.Join)

		if catalogService != nil {
			catalogHandler := handler.NewCatalogHandler(catalogService)
			r.Get("/catalog", catalogHandler.Get)
		}

		r.Route("/sessions", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(customMiddleware.RequireUser)
				r.Get("/", sessionHandler.List)
				r.Post("/", sessionHandler.Create)
			})

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Patch("/", sessionHandler.Update)
				r.Delete("/", sessionHandler.Delete)
				r.Put("/board", sessionHandler.SaveBoard)
				r.Post("/open", sessionHandler.Open)
				r.Post("/invite", sessionHandler.Invite)
			})
		})
	})

	return r
}
