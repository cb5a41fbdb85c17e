package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
)

type ProfileRepositoryAdapter struct {
	db *sql.DB
}

func NewProfileRepositoryAdapter(db *sql.DB) *ProfileRepositoryAdapter {
	return &ProfileRepositoryAdapter{db: db}
}

func (r *ProfileRepositoryAdapter) Upsert(ctx context.Context, profile *entity.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, email, email_verified, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    email = EXCLUDED.email,
		    email_verified = EXCLUDED.email_verified,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Email,
		profile.EmailVerified,
		profile.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

var _ outbound.ProfileRepository = (*ProfileRepositoryAdapter)(nil)
