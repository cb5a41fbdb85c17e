package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/domain/entity"
	"github.com/fixora/complaintdesk/infrastructure/http/response"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
	"github.com/fixora/complaintdesk/pkg/requestctx"
)

type ctxKey int

const identityKey ctxKey = iota

type AuthMiddleware struct {
	gate   inbound.AuthorizationGate
	logger logger.Logger
}

// NewAuthMiddleware gates routes through the authorization gate.
func NewAuthMiddleware(gate inbound.AuthorizationGate, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		gate:   gate,
		logger: log,
	}
}

// RequireAuth resolves the bearer token to a live identity and stores it in the context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, err := m.gate.Authorize(ctx, bearerToken(r))
		if err != nil {
			logger.LogAuthEvent(ctx, m.logger, "authorize", "", requestctx.ClientIP(ctx), false, map[string]interface{}{
				"path": r.URL.Path,
			})
			response.AppError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

// RequireAdmin hides admin routes from non-admins. Use cases check the role again
// before they mutate anything.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.gate.RequireAdmin(r.Context(), IdentityFromContext(r.Context())); err != nil {
			response.AppError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// bearerToken returns "" for a missing or malformed Authorization header.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithIdentity stores the authenticated identity on ctx.
func WithIdentity(ctx context.Context, identity *entity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity stored by RequireAuth, or nil.
func IdentityFromContext(ctx context.Context) *entity.Identity {
	if identity, ok := ctx.Value(identityKey).(*entity.Identity); ok {
		return identity
	}
	return nil
}
