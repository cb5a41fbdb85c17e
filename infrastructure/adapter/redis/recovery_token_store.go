package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/fixora/complaintdesk/application/port/outbound"
)

const recoveryKeyPrefix = "recovery:"

// RecoveryTokenStore keeps recovery tokens hashed, so a Redis dump does not leak live links.
type RecoveryTokenStore struct {
	client *goredis.Client
}

func NewRecoveryTokenStore(client *goredis.Client) *RecoveryTokenStore {
	return &RecoveryTokenStore{client: client}
}

func recoveryKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return recoveryKeyPrefix + hex.EncodeToString(sum[:])
}

func (s *RecoveryTokenStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, recoveryKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store recovery token: %w", err)
	}
	return nil
}

// Consume uses GETDEL so two concurrent redemptions cannot both succeed.
func (s *RecoveryTokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, recoveryKey(token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", outbound.ErrRecoveryTokenNotFound
		}
		return "", fmt.Errorf("failed to consume recovery token: %w", err)
	}
	return userID, nil
}

var _ outbound.RecoveryTokenStore = (*RecoveryTokenStore)(nil)
