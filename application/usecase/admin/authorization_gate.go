package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

type AuthorizationGate struct {
	identities outbound.IdentityGateway
	roles      outbound.RoleRepository
	logger     logger.Logger
}

func NewAuthorizationGate(identities outbound.IdentityGateway, roles outbound.RoleRepository, log logger.Logger) *AuthorizationGate {
	return &AuthorizationGate{
		identities: identities,
		roles:      roles,
		logger:     log,
	}
}

// Authorize resolves a bearer token to a live identity.
func (g *AuthorizationGate) Authorize(ctx context.Context, bearerToken string) (*entity.Identity, error) {
	token := strings.TrimSpace(bearerToken)
	if token == "" {
		return nil, domainerr.ErrMissingCredential()
	}

	identity, err := g.identities.VerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, outbound.ErrInvalidToken) || errors.Is(err, outbound.ErrIdentityNotFound) {
			return nil, domainerr.ErrInvalidToken("")
		}
		g.logger.Error(ctx, "Failed to verify bearer token", err, nil)
		return nil, domainerr.ErrIdentityProvider("verify_token", err)
	}
	return identity, nil
}

// IsAdmin asks the role store. Token claims are never consulted.
func (g *AuthorizationGate) IsAdmin(ctx context.Context, identity *entity.Identity) (bool, error) {
	if identity == nil || identity.ID == "" {
		return false, nil
	}
	ok, err := g.roles.HasRole(ctx, identity.ID, entity.RoleAdmin)
	if err != nil {
		g.logger.Error(ctx, "Failed to check admin role", err, map[string]interface{}{
			"user_id": identity.ID,
		})
		return false, domainerr.ErrDatabaseError("check admin role", err)
	}
	return ok, nil
}

func (g *AuthorizationGate) RequireAdmin(ctx context.Context, identity *entity.Identity) error {
	if identity == nil || identity.ID == "" {
		return domainerr.ErrMissingCredential()
	}
	ok, err := g.IsAdmin(ctx, identity)
	if err != nil {
		return err
	}
	if !ok {
		logger.LogSecurityEvent(ctx, g.logger, "admin_access_denied", "MEDIUM", map[string]interface{}{
			"user_id": identity.ID,
		})
		return domainerr.ErrAdminRequired()
	}
	return nil
}
