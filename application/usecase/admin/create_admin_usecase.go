package admin

import (
	"context"
	"errors"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/domain/valueobject"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

// CreateAdminUseCase lets an existing admin provision another admin directly.
type CreateAdminUseCase struct {
	gate       *AuthorizationGate
	identities outbound.IdentityGateway
	roles      outbound.RoleRepository
	profiles   outbound.ProfileRepository
	audit      outbound.AuditSink
	logger     logger.Logger
}

func NewCreateAdminUseCase(
	gate *AuthorizationGate,
	identities outbound.IdentityGateway,
	roles outbound.RoleRepository,
	profiles outbound.ProfileRepository,
	audit outbound.AuditSink,
	log logger.Logger,
) *CreateAdminUseCase {
	return &CreateAdminUseCase{
		gate:       gate,
		identities: identities,
		roles:      roles,
		profiles:   profiles,
		audit:      audit,
		logger:     log,
	}
}

func (uc *CreateAdminUseCase) Execute(ctx context.Context, creator *entity.Identity, req inbound.CreateAdminRequest) (*inbound.CreateAdminResponse, error) {
	creds, err := valueobject.NewCredentials(req.Email, req.Password)
	if err != nil {
		return nil, domainerr.ErrValidation(err.Error(), err)
	}
	fullName, err := valueobject.NewFullName(req.FullName)
	if err != nil {
		return nil, domainerr.ErrValidation(err.Error(), err)
	}

	if err := uc.gate.RequireAdmin(ctx, creator); err != nil {
		return nil, err
	}

	_, err = uc.identities.FindIdentityByEmail(ctx, creds.Email())
	switch {
	case err == nil:
		return nil, domainerr.ErrEmailTaken()
	case !errors.Is(err, outbound.ErrIdentityNotFound):
		return nil, domainerr.ErrIdentityProvider("find_identity_by_email", err)
	}

	identity, err := uc.identities.CreateIdentity(ctx, outbound.CreateIdentityInput{
		Email:          creds.Email(),
		Password:       creds.Password(),
		FullName:       fullName,
		EmailConfirmed: true,
	})
	if err != nil {
		if errors.Is(err, outbound.ErrEmailTaken) {
			return nil, domainerr.ErrEmailTaken()
		}
		uc.logger.Error(ctx, "Failed to create admin identity", err, map[string]interface{}{
			"email": creds.Email(),
		})
		return nil, domainerr.ErrIdentityProvider("create_identity", err)
	}

	if err := uc.roles.Upsert(ctx, entity.NewRoleAssignment(identity.ID, entity.RoleAdmin, creator.ID)); err != nil {
		uc.logger.Error(ctx, "Failed to grant admin role", err, map[string]interface{}{
			"user_id": identity.ID,
		})
		return nil, domainerr.ErrDatabaseError("grant admin role", err)
	}

	upsertProfile(ctx, uc.profiles, uc.logger, identity)
	recordAudit(ctx, uc.audit, uc.logger, entity.NewAuditEntry(
		creator.ID,
		entity.AuditActionCreateAdmin,
		entity.AuditResourceUserRoles,
		identity.ID,
		map[string]interface{}{"email": identity.Email, "full_name": identity.FullName},
	))

	logger.LogWorkflowEvent(ctx, uc.logger, "admin_created", map[string]interface{}{
		"user_id":    identity.ID,
		"created_by": creator.ID,
	})

	return &inbound.CreateAdminResponse{UserID: identity.ID}, nil
}
