package middleware

import (
	"crypto/subtle"
	"net/http"

	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/infrastructure/http/response"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
	"github.com/fixora/complaintdesk/pkg/requestctx"
)

const ServiceKeyHeader = "X-Service-Key"

// RequireServiceKey admits only trusted callers presenting key. It guards the ops routes,
// which run without an admin session.
func RequireServiceKey(key string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(ServiceKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				logger.LogSecurityEvent(r.Context(), log, "service_key_rejected", "HIGH", map[string]interface{}{
					"ip":   requestctx.ClientIP(r.Context()),
					"path": r.URL.Path,
				})
				response.AppError(w, domainerr.ErrMissingCredential())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
