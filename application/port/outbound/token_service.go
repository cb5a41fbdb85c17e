package outbound

import "time"

type TokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	AccessTokenTTL() time.Duration
}
