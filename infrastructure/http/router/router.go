// Package router assembles the HTTP surface of the admin provisioning service.
package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/infrastructure/http/handler"
	"github.com/fixora/complaintdesk/infrastructure/http/middleware"
	"github.com/fixora/complaintdesk/infrastructure/http/response"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
	"github.com/fixora/complaintdesk/infrastructure/service/metrics"
)

type Config struct {
	CorrelationIDHeader  string
	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	// ServiceRoleKey enables the ops routes. Empty leaves them unregistered.
	ServiceRoleKey string
	ThrottleRPS    float64
	ThrottleBurst  int
}

type Dependencies struct {
	AdminUseCase inbound.AdminUseCase
	AuthUseCase  inbound.AuthUseCase
	Gate         inbound.AuthorizationGate
	RateLimit    inbound.RateLimitService
	Metrics      *metrics.Recorder
	Logger       logger.Logger
}

func New(cfg Config, deps Dependencies) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Instrument)
		r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	auth := middleware.NewAuthMiddleware(deps.Gate, deps.Logger)
	limits := middleware.NewRateLimitMiddleware(deps.RateLimit, deps.Logger)
	throttle := middleware.NewThrottle(cfg.ThrottleRPS, cfg.ThrottleBurst)

	public := func(h http.HandlerFunc, policy middleware.RateLimitPolicy) http.Handler {
		return throttle.Middleware(limits.Limit(policy)(h))
	}

	authHandler := handler.NewAuthHandler(deps.AuthUseCase)
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Handle("/auth/login", public(authHandler.Login, middleware.LoginPolicy)).Methods(http.MethodPost)
	v1.Handle("/auth/recover", public(authHandler.Recover, middleware.RecoverPolicy)).Methods(http.MethodPost)
	v1.Handle("/auth/me", auth.RequireAuth(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)

	adminHandler := handler.NewAdminHandler(deps.AdminUseCase)
	v1.Handle("/auth/recover/request", public(adminHandler.RequestRecoveryLink, middleware.RecoverPolicy)).Methods(http.MethodPost)
	v1.Handle("/admin/bootstrap", public(adminHandler.Bootstrap, middleware.WorkflowPolicy)).Methods(http.MethodPost)
	v1.HandleFunc("/admin/bootstrap/status", adminHandler.BootstrapStatus).Methods(http.MethodGet)
	v1.Handle("/admin/requests", public(adminHandler.SubmitRequest, middleware.WorkflowPolicy)).Methods(http.MethodPost)
	v1.Handle("/admin/requests", auth.RequireAdmin(http.HandlerFunc(adminHandler.ListRequests))).Methods(http.MethodGet)
	v1.Handle("/admin/requests/{id}/review", auth.RequireAdmin(http.HandlerFunc(adminHandler.ReviewRequest))).Methods(http.MethodPost)
	v1.Handle("/admin/users", auth.RequireAdmin(http.HandlerFunc(adminHandler.CreateAdmin))).Methods(http.MethodPost)
	v1.Handle("/admin/users/{id}", auth.RequireAdmin(http.HandlerFunc(adminHandler.DeleteUser))).Methods(http.MethodDelete)

	if cfg.ServiceRoleKey != "" {
		opsHandler := handler.NewOpsHandler(deps.AdminUseCase)
		ops := v1.PathPrefix("/ops").Subrouter()
		ops.Use(middleware.RequireServiceKey(cfg.ServiceRoleKey, deps.Logger))
		ops.HandleFunc("/cleanup-orphaned-admins", opsHandler.CleanupOrphanedAdmins).Methods(http.MethodPost)
	}

	// outside the router so preflights and 404s are covered too
	var h http.Handler = r
	if cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0 {
		h = middleware.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)(h)
	}
	return middleware.Correlation(cfg.CorrelationIDHeader)(h)
}
