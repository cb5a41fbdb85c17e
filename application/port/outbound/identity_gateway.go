package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/fixora/complaintdesk/domain/entity"
)

var (
	// ErrIdentityNotFound is the only gateway error that means "this identity does not exist".
	// Anything else is an availability problem and must not be read as absence.
	ErrIdentityNotFound = errors.New("identity not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrInvalidToken     = errors.New("invalid token")
)

type CreateIdentityInput struct {
	Email          string
	Password       string
	FullName       string
	EmailConfirmed bool
}

// IdentityPatch updates only the non-nil fields.
type IdentityPatch struct {
	Password       *string
	FullName       *string
	EmailConfirmed *bool
}

// IdentityGateway is the boundary to the external identity provider.
type IdentityGateway interface {
	VerifyToken(ctx context.Context, token string) (*entity.Identity, error)
	CreateIdentity(ctx context.Context, input CreateIdentityInput) (*entity.Identity, error)
	UpdateIdentity(ctx context.Context, id string, patch IdentityPatch) (*entity.Identity, error)
	GetIdentity(ctx context.Context, id string) (*entity.Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (*entity.Identity, error)
	ListIdentities(ctx context.Context) ([]*entity.Identity, error)
	DeleteIdentity(ctx context.Context, id string) error
	GenerateRecoveryLink(ctx context.Context, email, redirectTo string, ttl time.Duration) (string, error)
}
