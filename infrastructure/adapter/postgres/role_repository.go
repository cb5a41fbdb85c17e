package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
)

// RoleRepositoryAdapter is the role store. (user_id, role) is the primary key of user_roles,
// so concurrent grants of the same role converge on one row.
type RoleRepositoryAdapter struct {
	db *sql.DB
}

func NewRoleRepositoryAdapter(db *sql.DB) *RoleRepositoryAdapter {
	return &RoleRepositoryAdapter{db: db}
}

func (r *RoleRepositoryAdapter) CountByRole(ctx context.Context, role entity.Role) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_roles WHERE role = $1`, string(role)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count roles: %w", err)
	}
	return count, nil
}

func (r *RoleRepositoryAdapter) HasRole(ctx context.Context, userID string, role entity.Role) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`,
		userID, string(role),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return exists, nil
}

// Upsert inserts the assignment or keeps the existing row. A grant with a known
// granter records it; a bootstrap grant never clears one.
func (r *RoleRepositoryAdapter) Upsert(ctx context.Context, assignment *entity.RoleAssignment) error {
	query := `
		INSERT INTO user_roles (user_id, role, granted_by, granted_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, role)
		DO UPDATE SET granted_by = COALESCE(EXCLUDED.granted_by, user_roles.granted_by)
	`
	var grantedBy sql.NullString
	if assignment.GrantedBy != nil {
		grantedBy = sql.NullString{String: *assignment.GrantedBy, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query,
		assignment.UserID,
		string(assignment.Role),
		grantedBy,
		assignment.GrantedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert role: %w", err)
	}
	return nil
}

func (r *RoleRepositoryAdapter) ListByRole(ctx context.Context, role entity.Role) ([]*entity.RoleAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, role, granted_by, granted_at
		FROM user_roles
		WHERE role = $1
		ORDER BY granted_at
	`, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	assignments := make([]*entity.RoleAssignment, 0)
	for rows.Next() {
		var (
			a         entity.RoleAssignment
			roleName  string
			grantedBy sql.NullString
		)
		if err := rows.Scan(&a.UserID, &roleName, &grantedBy, &a.GrantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		a.Role = entity.Role(roleName)
		if grantedBy.Valid {
			a.GrantedBy = &grantedBy.String
		}
		assignments = append(assignments, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate roles: %w", err)
	}
	return assignments, nil
}

// DeleteByUserIDs removes every role of the given users in one statement.
func (r *RoleRepositoryAdapter) DeleteByUserIDs(ctx context.Context, userIDs []string) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ANY($1)`, pq.Array(userIDs))
	if err != nil {
		return 0, fmt.Errorf("failed to delete roles: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

var _ outbound.RoleRepository = (*RoleRepositoryAdapter)(nil)
