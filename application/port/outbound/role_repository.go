package outbound

import (
	"context"

	"github.com/fixora/complaintdesk/domain/entity"
)

type RoleRepository interface {
	CountByRole(ctx context.Context, role entity.Role) (int, error)
	HasRole(ctx context.Context, userID string, role entity.Role) (bool, error)
	// Upsert inserts the assignment or keeps the existing row for (user, role).
	Upsert(ctx context.Context, assignment *entity.RoleAssignment) error
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.RoleAssignment, error)
	DeleteByUserIDs(ctx context.Context, userIDs []string) (int64, error)
}
