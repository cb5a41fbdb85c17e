package outbound

import (
	"context"

	"github.com/fixora/complaintdesk/domain/entity"
)

// AuditSink receives append-only audit records. Callers treat failures as best-effort.
type AuditSink interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
}
