package outbound

import (
	"context"
	"errors"
	"time"
)

var ErrRecoveryTokenNotFound = errors.New("recovery token not found or expired")

// RecoveryTokenStore keeps single-use password recovery tokens.
type RecoveryTokenStore interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Consume returns the user bound to token and removes it in the same step.
	Consume(ctx context.Context, token string) (string, error)
}
