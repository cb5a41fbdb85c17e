package error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ErrMissingField("email"), http.StatusBadRequest},
		{"invalid action", ErrInvalidAction("delete"), http.StatusBadRequest},
		{"unauthenticated", ErrInvalidToken(""), http.StatusUnauthorized},
		{"forbidden", ErrAdminRequired(), http.StatusForbidden},
		{"already initialized", ErrAlreadyInitialized(), http.StatusForbidden},
		{"not found", ErrRequestNotFound("r1"), http.StatusNotFound},
		{"conflict", ErrAlreadyReviewed("r1"), http.StatusConflict},
		{"rate limited", ErrRateLimitExceeded(), http.StatusTooManyRequests},
		{"upstream", ErrIdentityProvider("create", errors.New("boom")), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", ErrEmailTaken()), http.StatusConflict},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatusCode(tt.err))
		})
	}
}

func TestPublicMessage_HidesCauses(t *testing.T) {
	err := ErrDatabaseError("insert admin_requests", errors.New("pq: connection refused"))
	assert.Equal(t, "Internal server error", PublicMessage(err))
	assert.NotContains(t, PublicMessage(err), "pq")

	assert.Equal(t, "An admin account already exists", PublicMessage(ErrAlreadyInitialized()))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("secret detail")))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrIdentityProvider("lookup", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindUpstream))
	assert.False(t, IsKind(nil, KindUpstream))
	assert.Equal(t, "ADMIN_8001", PublicCode(ErrAlreadyInitialized()))
}
