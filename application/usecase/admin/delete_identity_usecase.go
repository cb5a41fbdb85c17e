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

// DeleteIdentityUseCase removes an identity and then, best-effort, its roles.
// If the role delete fails the rows are orphaned and the reconciler removes them later.
type DeleteIdentityUseCase struct {
	gate       *AuthorizationGate
	identities outbound.IdentityGateway
	roles      outbound.RoleRepository
	audit      outbound.AuditSink
	logger     logger.Logger
}

func NewDeleteIdentityUseCase(
	gate *AuthorizationGate,
	identities outbound.IdentityGateway,
	roles outbound.RoleRepository,
	audit outbound.AuditSink,
	log logger.Logger,
) *DeleteIdentityUseCase {
	return &DeleteIdentityUseCase{
		gate:       gate,
		identities: identities,
		roles:      roles,
		audit:      audit,
		logger:     log,
	}
}

func (uc *DeleteIdentityUseCase) Execute(ctx context.Context, actor *entity.Identity, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domainerr.ErrMissingField("user_id")
	}
	if err := uc.gate.RequireAdmin(ctx, actor); err != nil {
		return err
	}
	if actor.ID == userID {
		return domainerr.ErrSelfAction("delete_identity")
	}

	if err := uc.identities.DeleteIdentity(ctx, userID); err != nil {
		if errors.Is(err, outbound.ErrIdentityNotFound) {
			return domainerr.ErrIdentityNotFound(userID)
		}
		uc.logger.Error(ctx, "Failed to delete identity", err, map[string]interface{}{
			"user_id": userID,
		})
		return domainerr.ErrIdentityProvider("delete_identity", err)
	}

	if _, err := uc.roles.DeleteByUserIDs(ctx, []string{userID}); err != nil {
		uc.logger.Warn(ctx, "Role rows left for the orphan reconciler", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	recordAudit(ctx, uc.audit, uc.logger, entity.NewAuditEntry(
		actor.ID,
		entity.AuditActionDeleteIdentity,
		entity.AuditResourceIdentities,
		userID,
		nil,
	))
	logger.LogWorkflowEvent(ctx, uc.logger, "identity_deleted", map[string]interface{}{
		"user_id":    userID,
		"deleted_by": actor.ID,
	})
	return nil
}
