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

// BootstrapFirstAdminUseCase creates the very first admin while no admin role exists.
// There is no lock: concurrent first calls converge on the unique (user, role) key.
type BootstrapFirstAdminUseCase struct {
	identities outbound.IdentityGateway
	roles      outbound.RoleRepository
	profiles   outbound.ProfileRepository
	audit      outbound.AuditSink
	metrics    outbound.WorkflowMetrics
	logger     logger.Logger
}

func NewBootstrapFirstAdminUseCase(
	identities outbound.IdentityGateway,
	roles outbound.RoleRepository,
	profiles outbound.ProfileRepository,
	audit outbound.AuditSink,
	metrics outbound.WorkflowMetrics,
	log logger.Logger,
) *BootstrapFirstAdminUseCase {
	return &BootstrapFirstAdminUseCase{
		identities: identities,
		roles:      roles,
		profiles:   profiles,
		audit:      audit,
		metrics:    metricsOrNoop(metrics),
		logger:     log,
	}
}

func (uc *BootstrapFirstAdminUseCase) Execute(ctx context.Context, req inbound.BootstrapAdminRequest) (*inbound.BootstrapAdminResponse, error) {
	creds, err := valueobject.NewCredentials(req.Email, req.Password)
	if err != nil {
		uc.metrics.BootstrapAttempt("invalid")
		return nil, domainerr.ErrValidation(err.Error(), err)
	}
	fullName, err := valueobject.NewFullName(req.FullName)
	if err != nil {
		uc.metrics.BootstrapAttempt("invalid")
		return nil, domainerr.ErrValidation(err.Error(), err)
	}

	count, err := uc.roles.CountByRole(ctx, entity.RoleAdmin)
	if err != nil {
		uc.logger.Error(ctx, "Failed to count admin roles", err, nil)
		return nil, domainerr.ErrDatabaseError("count admin roles", err)
	}
	if count > 0 {
		uc.metrics.BootstrapAttempt("already_initialized")
		logger.LogSecurityEvent(ctx, uc.logger, "bootstrap_after_initialization", "MEDIUM", map[string]interface{}{
			"email": creds.Email(),
		})
		return nil, domainerr.ErrAlreadyInitialized()
	}

	identity, err := uc.provisionIdentity(ctx, creds, fullName)
	if err != nil {
		uc.metrics.BootstrapAttempt("failed")
		return nil, err
	}

	if err := uc.roles.Upsert(ctx, entity.NewRoleAssignment(identity.ID, entity.RoleAdmin, "")); err != nil {
		uc.metrics.BootstrapAttempt("failed")
		uc.logger.Error(ctx, "Failed to grant bootstrap admin role", err, map[string]interface{}{
			"user_id": identity.ID,
		})
		return nil, domainerr.ErrDatabaseError("grant admin role", err)
	}

	upsertProfile(ctx, uc.profiles, uc.logger, identity)
	recordAudit(ctx, uc.audit, uc.logger, entity.NewAuditEntry(
		"",
		entity.AuditActionFirstAdminBootstrapped,
		entity.AuditResourceUserRoles,
		identity.ID,
		map[string]interface{}{"email": identity.Email},
	))

	uc.metrics.BootstrapAttempt("created")
	logger.LogWorkflowEvent(ctx, uc.logger, "first_admin_bootstrapped", map[string]interface{}{
		"user_id": identity.ID,
		"email":   identity.Email,
	})

	return &inbound.BootstrapAdminResponse{UserID: identity.ID}, nil
}

// provisionIdentity updates an existing identity with the supplied credentials or creates a confirmed one.
func (uc *BootstrapFirstAdminUseCase) provisionIdentity(ctx context.Context, creds *valueobject.Credentials, fullName string) (*entity.Identity, error) {
	existing, err := uc.identities.FindIdentityByEmail(ctx, creds.Email())
	switch {
	case err == nil:
		return uc.updateExisting(ctx, existing.ID, creds, fullName)
	case !errors.Is(err, outbound.ErrIdentityNotFound):
		uc.logger.Error(ctx, "Failed to look up identity by email", err, map[string]interface{}{
			"email": creds.Email(),
		})
		return nil, domainerr.ErrIdentityProvider("find_identity_by_email", err)
	}

	created, err := uc.identities.CreateIdentity(ctx, outbound.CreateIdentityInput{
		Email:          creds.Email(),
		Password:       creds.Password(),
		FullName:       fullName,
		EmailConfirmed: true,
	})
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, outbound.ErrEmailTaken) {
		uc.logger.Error(ctx, "Failed to create bootstrap identity", err, map[string]interface{}{
			"email": creds.Email(),
		})
		return nil, domainerr.ErrIdentityProvider("create_identity", err)
	}

	// a concurrent bootstrap created it between our lookup and insert
	existing, err = uc.identities.FindIdentityByEmail(ctx, creds.Email())
	if err != nil {
		return nil, domainerr.ErrIdentityProvider("find_identity_by_email", err)
	}
	return uc.updateExisting(ctx, existing.ID, creds, fullName)
}

func (uc *BootstrapFirstAdminUseCase) updateExisting(ctx context.Context, id string, creds *valueobject.Credentials, fullName string) (*entity.Identity, error) {
	updated, err := uc.identities.UpdateIdentity(ctx, id, outbound.IdentityPatch{
		Password:       strPtr(creds.Password()),
		FullName:       strPtr(fullName),
		EmailConfirmed: boolPtr(true),
	})
	if err != nil {
		uc.logger.Error(ctx, "Failed to update existing identity", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, domainerr.ErrIdentityProvider("update_identity", err)
	}
	return updated, nil
}

// BootstrapStatusUseCase reports whether any admin exists. Never cached.
type BootstrapStatusUseCase struct {
	roles  outbound.RoleRepository
	logger logger.Logger
}

func NewBootstrapStatusUseCase(roles outbound.RoleRepository, log logger.Logger) *BootstrapStatusUseCase {
	return &BootstrapStatusUseCase{roles: roles, logger: log}
}

func (uc *BootstrapStatusUseCase) Execute(ctx context.Context) (*inbound.BootstrapStatusResponse, error) {
	count, err := uc.roles.CountByRole(ctx, entity.RoleAdmin)
	if err != nil {
		uc.logger.Error(ctx, "Failed to count admin roles", err, nil)
		return nil, domainerr.ErrDatabaseError("count admin roles", err)
	}
	return &inbound.BootstrapStatusResponse{Initialized: count > 0}, nil
}
