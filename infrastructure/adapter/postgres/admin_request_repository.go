package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
)

type AdminRequestRepositoryAdapter struct {
	db *sql.DB
}

func NewAdminRequestRepositoryAdapter(db *sql.DB) *AdminRequestRepositoryAdapter {
	return &AdminRequestRepositoryAdapter{db: db}
}

const adminRequestColumns = `id, user_id, reason, status, reviewed_by, reviewed_at, created_at`

func scanAdminRequest(row interface{ Scan(...interface{}) error }) (*entity.AdminRequest, error) {
	var (
		req        entity.AdminRequest
		status     string
		reviewedBy sql.NullString
		reviewedAt sql.NullTime
	)
	if err := row.Scan(&req.ID, &req.UserID, &req.Reason, &status, &reviewedBy, &reviewedAt, &req.CreatedAt); err != nil {
		return nil, err
	}
	req.Status = entity.AdminRequestStatus(status)
	if reviewedBy.Valid {
		req.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		req.ReviewedAt = &t
	}
	return &req, nil
}

func (r *AdminRequestRepositoryAdapter) Create(ctx context.Context, request *entity.AdminRequest) error {
	query := `
		INSERT INTO admin_requests (id, user_id, reason, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		request.ID,
		request.UserID,
		request.Reason,
		string(request.Status),
		request.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create admin request: %w", err)
	}
	return nil
}

func (r *AdminRequestRepositoryAdapter) FindByID(ctx context.Context, id string) (*entity.AdminRequest, error) {
	query := `SELECT ` + adminRequestColumns + ` FROM admin_requests WHERE id = $1`
	req, err := scanAdminRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrAdminRequestNotFound
		}
		return nil, fmt.Errorf("failed to find admin request: %w", err)
	}
	return req, nil
}

// List returns a page ordered newest first, plus the total matching the filter.
func (r *AdminRequestRepositoryAdapter) List(ctx context.Context, offset, limit int, filter outbound.AdminRequestFilter) ([]*entity.AdminRequest, int, error) {
	var status interface{}
	if filter.Status != "" {
		status = string(filter.Status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admin_requests WHERE ($1::text IS NULL OR status = $1)`,
		status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count admin requests: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+adminRequestColumns+`
		FROM admin_requests
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list admin requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*entity.AdminRequest, 0, limit)
	for rows.Next() {
		req, err := scanAdminRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan admin request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate admin requests: %w", err)
	}
	return requests, total, nil
}

// TransitionStatus is a compare-and-set on status; exactly one reviewer wins.
func (r *AdminRequestRepositoryAdapter) TransitionStatus(ctx context.Context, id string, status entity.AdminRequestStatus, reviewerID string, reviewedAt time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE admin_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1 AND status = 'pending'
	`, id, string(status), reviewerID, reviewedAt)
	if err != nil {
		return false, fmt.Errorf("failed to update admin request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

var _ outbound.AdminRequestRepository = (*AdminRequestRepositoryAdapter)(nil)
