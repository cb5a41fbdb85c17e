package admin

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

// recordAudit appends entry and swallows the failure; the audited action has already committed.
func recordAudit(ctx context.Context, sink outbound.AuditSink, log logger.Logger, entry *entity.AuditEntry) {
	if sink == nil {
		return
	}
	if err := sink.Append(ctx, entry); err != nil {
		log.Warn(ctx, "Failed to append audit entry", map[string]interface{}{
			"action":      entry.Action,
			"resource_id": entry.ResourceID,
			"error":       err.Error(),
		})
	}
}

// upsertProfile is best-effort: the profile row is a denormalized convenience.
func upsertProfile(ctx context.Context, profiles outbound.ProfileRepository, log logger.Logger, identity *entity.Identity) {
	if profiles == nil {
		return
	}
	if err := profiles.Upsert(ctx, entity.NewProfile(identity)); err != nil {
		log.Warn(ctx, "Failed to upsert profile", map[string]interface{}{
			"user_id": identity.ID,
			"error":   err.Error(),
		})
	}
}

// unusablePassword returns a random secret that is hashed by the provider and never shown to anyone.
func unusablePassword() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

type noopMetrics struct{}

func (noopMetrics) BootstrapAttempt(string)        {}
func (noopMetrics) RequestSubmitted(string)        {}
func (noopMetrics) RequestReviewed(string, string) {}
func (noopMetrics) OrphanedRolesCleaned(int)       {}
func (noopMetrics) NotificationFailed(string)      {}

func metricsOrNoop(m outbound.WorkflowMetrics) outbound.WorkflowMetrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }
