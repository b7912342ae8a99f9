package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/campuspulse/moodmeter-service/internal/authz"
	"github.com/campuspulse/moodmeter-service/internal/http/handler"
	"github.com/campuspulse/moodmeter-service/internal/http/middleware"
	"github.com/campuspulse/moodmeter-service/internal/http/response"
	"github.com/campuspulse/moodmeter-service/internal/security"
)

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	SessionHandler   *handler.SessionHandler
	FollowupHandler  *handler.FollowupHandler
	DashboardHandler *handler.DashboardHandler
	DispatchHandler  *handler.DispatchHandler
	LinkHandler      *handler.LinkHandler
	CatalogHandler   *handler.CatalogHandler
	JWTManager       *security.JWTManager
	CronSecretKey    string
	APIRateLimitRPM  int
	Readiness        func(ctx context.Context) error
	EnableOTelHTTP   bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness != nil {
			if err := dep.Readiness(r.Context()); err != nil {
				response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", nil)
				return
			}
		}
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
	})

	optionalAuth := middleware.OptionalAuthMiddleware(dep.JWTManager)
	requireAuth := middleware.AuthMiddleware(dep.JWTManager)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/exchange", dep.AuthHandler.Exchange)

		// Check-in and redemption are anonymous; a token rides along when
		// the student happens to be signed in.
		r.With(optionalAuth).Post("/sessions", dep.SessionHandler.Create)
		r.Post("/mood/classify", dep.SessionHandler.Classify)
		r.Post("/followup/redeem", dep.FollowupHandler.Redeem)

		r.Get("/catalogs/communities", dep.CatalogHandler.Communities)
		r.Get("/catalogs/mentors", dep.CatalogHandler.Mentors)
		r.Get("/catalogs/reasons", dep.CatalogHandler.Reasons)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/me/link", dep.LinkHandler.Link)
			r.Get("/me/link", dep.LinkHandler.Status)
			r.With(middleware.RequireRole(authz.RoleMentor, authz.RoleAdmin)).Get("/dashboard", dep.DashboardHandler.Dashboard)
		})

		r.With(optionalAuth, middleware.CronKeyOrAdmin(dep.CronSecretKey)).Post("/dispatch/run", dep.DispatchHandler.Run)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
