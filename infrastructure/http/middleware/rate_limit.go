package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/infrastructure/http/response"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
	"github.com/fixora/complaintdesk/pkg/requestctx"
)

// RateLimitPolicy is a Redis-backed fixed window per client IP. Exceeding it blocks the
// IP for Block.
type RateLimitPolicy struct {
	Name   string
	Limit  int
	Window time.Duration
	Block  time.Duration
}

var (
	LoginPolicy    = RateLimitPolicy{Name: "login", Limit: 10, Window: 15 * time.Minute, Block: 30 * time.Minute}
	RecoverPolicy  = RateLimitPolicy{Name: "recover", Limit: 10, Window: 15 * time.Minute, Block: 30 * time.Minute}
	WorkflowPolicy = RateLimitPolicy{Name: "workflow", Limit: 20, Window: time.Hour, Block: time.Hour}
)

type RateLimitMiddleware struct {
	rateLimitService inbound.RateLimitService
	logger           logger.Logger
}

// NewRateLimitMiddleware passes every request through when rateLimitService is nil.
func NewRateLimitMiddleware(rateLimitService inbound.RateLimitService, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		rateLimitService: rateLimitService,
		logger:           log,
	}
}

// Limit fails open: a Redis error is logged and the request proceeds.
func (m *RateLimitMiddleware) Limit(policy RateLimitPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.rateLimitService == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			clientIP := requestctx.ClientIP(ctx)
			key := policy.Name + ":ip:" + clientIP

			blocked, err := m.rateLimitService.IsBlocked(ctx, key)
			if err != nil {
				m.logger.Error(ctx, "Failed to check block status", err, map[string]interface{}{"key": key})
			}
			if blocked {
				logger.LogSecurityEvent(ctx, m.logger, "rate_limit_blocked", "MEDIUM", map[string]interface{}{
					"ip":         clientIP,
					"path":       r.URL.Path,
					"user_agent": r.UserAgent(),
				})
				w.Header().Set("Retry-After", strconv.Itoa(int(policy.Block.Seconds())))
				response.TooManyRequests(w)
				return
			}

			allowed, err := m.rateLimitService.CheckLimit(ctx, key, policy.Limit, policy.Window)
			if err != nil {
				m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{"key": key})
				allowed = true
			}
			if !allowed {
				if err := m.rateLimitService.Block(ctx, key, policy.Block, "rate limit exceeded"); err != nil {
					m.logger.Error(ctx, "Failed to block IP", err, map[string]interface{}{"key": key})
				}
				logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "HIGH", map[string]interface{}{
					"ip":         clientIP,
					"path":       r.URL.Path,
					"user_agent": r.UserAgent(),
				})
				w.Header().Set("Retry-After", strconv.Itoa(int(policy.Block.Seconds())))
				response.TooManyRequests(w)
				return
			}

			if err := m.rateLimitService.Increment(ctx, key, policy.Window); err != nil {
				m.logger.Error(ctx, "Failed to increment rate limit", err, map[string]interface{}{"key": key})
			}
			next.ServeHTTP(w, r)
		})
	}
}
