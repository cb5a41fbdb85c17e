package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
)

// AuditLogRepositoryAdapter appends to audit_logs. Rows are never updated or read back here.
type AuditLogRepositoryAdapter struct {
	db *sql.DB
}

func NewAuditLogRepositoryAdapter(db *sql.DB) *AuditLogRepositoryAdapter {
	return &AuditLogRepositoryAdapter{db: db}
}

func (r *AuditLogRepositoryAdapter) Append(ctx context.Context, entry *entity.AuditEntry) error {
	details := []byte("{}")
	if len(entry.Details) > 0 {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = b
	}

	var actor sql.NullString
	if entry.ActorID != "" {
		actor = sql.NullString{String: entry.ActorID, Valid: true}
	}

	query := `
		INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query,
		entry.ID,
		actor,
		entry.Action,
		entry.ResourceType,
		entry.ResourceID,
		details,
		entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

var _ outbound.AuditSink = (*AuditLogRepositoryAdapter)(nil)
