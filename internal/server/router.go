package server

import (
	"net/http"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/config"
	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	spaces handler.SpaceHandler,
	sessions handler.SessionHandler,
	pricing handler.PricingHandler,
	tariffs handler.TariffHandler,
	shifts handler.ShiftHandler,
	dashboard handler.DashboardHandler,
	audit handler.AuditLogHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// booth level (operator/supervisor/admin)
		pr.Group(func(br chi.Router) {
			br.Use(RequireRole(domain.RoleAdmin, domain.RoleSupervisor, domain.RoleOperator))
			spaces.RegisterRoutes(br)
			sessions.RegisterRoutes(br)
			pricing.RegisterPublicRoutes(br)
			tariffs.RegisterPublicRoutes(br)
			shifts.RegisterRoutes(br)
		})
		// supervisor level (supervisor/admin)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleAdmin, domain.RoleSupervisor))
			pricing.RegisterAdminRoutes(sr)
			tariffs.RegisterAdminRoutes(sr)
			dashboard.RegisterRoutes(sr)
			audit.RegisterRoutes(sr)
		})
	})

	return r
}
