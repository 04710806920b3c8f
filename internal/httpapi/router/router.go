package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"vehicle/api/internal/config"
	"vehicle/api/internal/httpapi/handlers"
	appmw "vehicle/api/internal/httpapi/middleware"
)

// New wires the HTTP surface. A nil verifier leaves /api/v1 open.
func New(cfg config.Settings, logger logrus.FieldLogger, verifier appmw.TokenVerifier) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes)
	r.Use(chimw.Timeout(timeout))
	r.Use(appmw.RequestID)
	r.Use(appmw.AccessLog(logger))
	r.Use(appmw.Recoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	systemHandler := handlers.NewSystemHandler()
	vehicleHandler := handlers.NewVehicleHandler()

	r.NotFound(systemHandler.NotFound)
	r.MethodNotAllowed(systemHandler.MethodNotAllowed)

	r.Get("/", systemHandler.Root)
	r.Get("/health", systemHandler.Health)

	r.Route("/api/v1", func(api chi.Router) {
		if verifier != nil {
			authMiddleware := appmw.Auth{Verifier: verifier, Logger: logger}
			api.Use(authMiddleware.RequireAuth)
			if cfg.AuthRequiredRole != "" {
				api.Use(appmw.RequireRole(cfg.AuthRequiredRole))
			}
		}

		api.Get("/vehicle", vehicleHandler.Get)
	})

	return r
}
