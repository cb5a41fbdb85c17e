package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
)

// LocalGateway is the identity provider backed by this service's own users table.
// Passwords are bcrypt hashes, sessions are HS256 access tokens, and recovery links
// carry single-use tokens kept in Redis.
type LocalGateway struct {
	users     outbound.UserRepository
	passwords outbound.PasswordService
	tokens    outbound.TokenService
	recovery  outbound.RecoveryTokenStore
	now       func() time.Time
}

func NewLocalGateway(
	users outbound.UserRepository,
	passwords outbound.PasswordService,
	tokens outbound.TokenService,
	recovery outbound.RecoveryTokenStore,
) *LocalGateway {
	return &LocalGateway{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		recovery:  recovery,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (g *LocalGateway) VerifyToken(ctx context.Context, token string) (*entity.Identity, error) {
	claims, err := g.tokens.ValidateAccessToken(token)
	if err != nil {
		if errors.Is(err, outbound.ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", outbound.ErrInvalidToken, err)
	}
	return g.GetIdentity(ctx, claims.UserID)
}

func (g *LocalGateway) CreateIdentity(ctx context.Context, input outbound.CreateIdentityInput) (*entity.Identity, error) {
	hash, err := g.passwords.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := entity.NewUser(uuid.New().String(), input.Email, input.FullName, hash, input.EmailConfirmed)
	if err := g.users.Create(ctx, user); err != nil {
		if errors.Is(err, outbound.ErrUserAlreadyExists) {
			return nil, outbound.ErrEmailTaken
		}
		return nil, err
	}
	return user.Identity(), nil
}

func (g *LocalGateway) UpdateIdentity(ctx context.Context, id string, patch outbound.IdentityPatch) (*entity.Identity, error) {
	user, err := g.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Password != nil {
		hash, err := g.passwords.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.EmailConfirmed != nil {
		user.EmailConfirmed = *patch.EmailConfirmed
	}
	user.UpdatedAt = g.now()

	if err := g.users.Update(ctx, user); err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, outbound.ErrIdentityNotFound
		}
		return nil, err
	}
	return user.Identity(), nil
}

func (g *LocalGateway) GetIdentity(ctx context.Context, id string) (*entity.Identity, error) {
	user, err := g.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

func (g *LocalGateway) FindIdentityByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	user, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, outbound.ErrIdentityNotFound
		}
		return nil, err
	}
	return user.Identity(), nil
}

func (g *LocalGateway) ListIdentities(ctx context.Context) ([]*entity.Identity, error) {
	users, err := g.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	identities := make([]*entity.Identity, len(users))
	for i, u := range users {
		identities[i] = u.Identity()
	}
	return identities, nil
}

func (g *LocalGateway) DeleteIdentity(ctx context.Context, id string) error {
	if err := g.users.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return outbound.ErrIdentityNotFound
		}
		return err
	}
	return nil
}

// GenerateRecoveryLink stores a fresh token for ttl and returns redirectTo with ?token= appended.
func (g *LocalGateway) GenerateRecoveryLink(ctx context.Context, email, redirectTo string, ttl time.Duration) (string, error) {
	target, err := url.Parse(redirectTo)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL: %w", err)
	}

	user, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return "", outbound.ErrIdentityNotFound
		}
		return "", err
	}

	token, err := newRecoveryToken()
	if err != nil {
		return "", err
	}
	if err := g.recovery.Save(ctx, token, user.ID, ttl); err != nil {
		return "", err
	}

	q := target.Query()
	q.Set("token", token)
	target.RawQuery = q.Encode()
	return target.String(), nil
}

func (g *LocalGateway) findUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := g.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, outbound.ErrIdentityNotFound
		}
		return nil, err
	}
	return user, nil
}

func newRecoveryToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate recovery token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

var _ outbound.IdentityGateway = (*LocalGateway)(nil)
