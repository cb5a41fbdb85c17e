package admin

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

const defaultCleanupConcurrency = 8

// CleanupOrphanedRolesUseCase deletes admin role rows whose identity no longer exists.
// Only a definitive not-found from the provider marks a row orphaned; any other
// lookup failure aborts the sweep before anything is deleted.
type CleanupOrphanedRolesUseCase struct {
	identities  outbound.IdentityGateway
	roles       outbound.RoleRepository
	audit       outbound.AuditSink
	metrics     outbound.WorkflowMetrics
	logger      logger.Logger
	concurrency int
}

func NewCleanupOrphanedRolesUseCase(
	identities outbound.IdentityGateway,
	roles outbound.RoleRepository,
	audit outbound.AuditSink,
	metrics outbound.WorkflowMetrics,
	log logger.Logger,
	concurrency int,
) *CleanupOrphanedRolesUseCase {
	if concurrency <= 0 {
		concurrency = defaultCleanupConcurrency
	}
	return &CleanupOrphanedRolesUseCase{
		identities:  identities,
		roles:       roles,
		audit:       audit,
		metrics:     metricsOrNoop(metrics),
		logger:      log,
		concurrency: concurrency,
	}
}

func (uc *CleanupOrphanedRolesUseCase) Execute(ctx context.Context) (*inbound.CleanupOrphanedRolesResponse, error) {
	assignments, err := uc.roles.ListByRole(ctx, entity.RoleAdmin)
	if err != nil {
		uc.logger.Error(ctx, "Failed to list admin roles", err, nil)
		return nil, domainerr.ErrDatabaseError("list admin roles", err)
	}

	orphaned, err := uc.findOrphans(ctx, assignments)
	if err != nil {
		uc.logger.Error(ctx, "Orphan sweep aborted", err, map[string]interface{}{
			"checked": len(assignments),
		})
		return nil, domainerr.ErrIdentityProvider("get_identity", err)
	}

	if len(orphaned) == 0 {
		return &inbound.CleanupOrphanedRolesResponse{
			Message:      "No orphaned admin roles found",
			CleanedCount: 0,
			UserIDs:      []string{},
		}, nil
	}

	if _, err := uc.roles.DeleteByUserIDs(ctx, orphaned); err != nil {
		uc.logger.Error(ctx, "Failed to delete orphaned admin roles", err, map[string]interface{}{
			"user_ids": orphaned,
		})
		return nil, domainerr.ErrDatabaseError("delete orphaned roles", err)
	}

	uc.metrics.OrphanedRolesCleaned(len(orphaned))
	recordAudit(ctx, uc.audit, uc.logger, entity.NewAuditEntry(
		"",
		entity.AuditActionOrphanedRolesCleaned,
		entity.AuditResourceUserRoles,
		"",
		map[string]interface{}{"user_ids": orphaned, "cleaned_count": len(orphaned)},
	))
	logger.LogWorkflowEvent(ctx, uc.logger, "orphaned_admin_roles_cleaned", map[string]interface{}{
		"cleaned_count": len(orphaned),
		"user_ids":      orphaned,
	})

	return &inbound.CleanupOrphanedRolesResponse{
		Message:      fmt.Sprintf("Cleaned up %d orphaned admin role(s)", len(orphaned)),
		CleanedCount: len(orphaned),
		UserIDs:      orphaned,
	}, nil
}

func (uc *CleanupOrphanedRolesUseCase) findOrphans(ctx context.Context, assignments []*entity.RoleAssignment) ([]string, error) {
	missing := make([]bool, len(assignments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for i, assignment := range assignments {
		i, userID := i, assignment.UserID
		g.Go(func() error {
			_, err := uc.identities.GetIdentity(gctx, userID)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, outbound.ErrIdentityNotFound):
				missing[i] = true
				return nil
			default:
				return fmt.Errorf("resolve identity %s: %w", userID, err)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	orphaned := make([]string, 0)
	for i, assignment := range assignments {
		if !missing[i] {
			continue
		}
		if _, dup := seen[assignment.UserID]; dup {
			continue
		}
		seen[assignment.UserID] = struct{}{}
		orphaned = append(orphaned, assignment.UserID)
	}
	return orphaned, nil
}
