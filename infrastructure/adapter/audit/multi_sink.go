// Package audit fans audit entries out to several sinks.
package audit

import (
	"context"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

// MultiSink appends to a primary sink and mirrors to secondaries. Only the primary's
// error is returned; secondary failures are logged.
type MultiSink struct {
	primary     outbound.AuditSink
	secondaries []outbound.AuditSink
	logger      logger.Logger
}

func NewMultiSink(log logger.Logger, primary outbound.AuditSink, secondaries ...outbound.AuditSink) *MultiSink {
	return &MultiSink{primary: primary, secondaries: secondaries, logger: log}
}

func (m *MultiSink) Append(ctx context.Context, entry *entity.AuditEntry) error {
	err := m.primary.Append(ctx, entry)

	for _, s := range m.secondaries {
		if serr := s.Append(ctx, entry); serr != nil {
			m.logger.Warn(ctx, "Failed to mirror audit entry", map[string]interface{}{
				"action":   entry.Action,
				"audit_id": entry.ID,
				"error":    serr.Error(),
			})
		}
	}
	return err
}

var _ outbound.AuditSink = (*MultiSink)(nil)
