package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

// RecoveryLinkTTL is the lifetime of the set-password link sent on approval.
// It is passed to the provider explicitly rather than relying on its default.
const RecoveryLinkTTL = 24 * time.Hour

const (
	warningRecoveryLinkFailed = "recovery link could not be generated; the user can get one through forgot password"
	warningEmailFailed        = "approval email could not be delivered"
)

type ReviewRequestUseCase struct {
	gate        *AuthorizationGate
	identities  outbound.IdentityGateway
	roles       outbound.RoleRepository
	requests    outbound.AdminRequestRepository
	email       outbound.EmailSender
	audit       outbound.AuditSink
	metrics     outbound.WorkflowMetrics
	logger      logger.Logger
	redirectURL string
	now         func() time.Time
}

func NewReviewRequestUseCase(
	gate *AuthorizationGate,
	identities outbound.IdentityGateway,
	roles outbound.RoleRepository,
	requests outbound.AdminRequestRepository,
	email outbound.EmailSender,
	audit outbound.AuditSink,
	metrics outbound.WorkflowMetrics,
	log logger.Logger,
	redirectURL string,
) *ReviewRequestUseCase {
	return &ReviewRequestUseCase{
		gate:        gate,
		identities:  identities,
		roles:       roles,
		requests:    requests,
		email:       email,
		audit:       audit,
		metrics:     metricsOrNoop(metrics),
		logger:      log,
		redirectURL: redirectURL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ReviewRequestUseCase) Execute(ctx context.Context, reviewer *entity.Identity, req inbound.ReviewAdminRequestRequest) (*inbound.ReviewAdminRequestResponse, error) {
	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" {
		return nil, domainerr.ErrMissingField("request_id")
	}
	action, err := entity.ParseReviewAction(req.Action)
	if err != nil {
		return nil, domainerr.ErrInvalidAction(req.Action)
	}

	// the route is already admin-gated; re-check against the role store right before mutating
	if err := uc.gate.RequireAdmin(ctx, reviewer); err != nil {
		uc.metrics.RequestReviewed(action.String(), "forbidden")
		return nil, err
	}

	request, err := uc.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, outbound.ErrAdminRequestNotFound) {
			return nil, domainerr.ErrRequestNotFound(requestID)
		}
		uc.logger.Error(ctx, "Failed to load admin request", err, map[string]interface{}{
			"request_id": requestID,
		})
		return nil, domainerr.ErrDatabaseError("load admin request", err)
	}
	if !request.IsPending() {
		uc.metrics.RequestReviewed(action.String(), "already_reviewed")
		return nil, domainerr.ErrAlreadyReviewed(requestID)
	}

	requester, err := uc.identities.GetIdentity(ctx, request.UserID)
	if err != nil {
		if errors.Is(err, outbound.ErrIdentityNotFound) {
			return nil, domainerr.ErrIdentityNotFound(request.UserID)
		}
		uc.logger.Error(ctx, "Failed to resolve requester identity", err, map[string]interface{}{
			"request_id": requestID,
			"user_id":    request.UserID,
		})
		return nil, domainerr.ErrIdentityProvider("get_identity", err)
	}

	if action == entity.ReviewApprove {
		// idempotent, and it must succeed before any grant happens
		if _, err := uc.identities.UpdateIdentity(ctx, requester.ID, outbound.IdentityPatch{
			FullName:       strPtr(requester.DisplayName()),
			EmailConfirmed: boolPtr(true),
		}); err != nil {
			uc.metrics.RequestReviewed(action.String(), "failed")
			uc.logger.Error(ctx, "Failed to confirm requester identity", err, map[string]interface{}{
				"request_id": requestID,
				"user_id":    requester.ID,
			})
			return nil, domainerr.ErrIdentityProvider("update_identity", err)
		}
	}

	reviewedAt := uc.now()
	won, err := uc.requests.TransitionStatus(ctx, requestID, action.TargetStatus(), reviewer.ID, reviewedAt)
	if err != nil {
		uc.logger.Error(ctx, "Failed to update admin request status", err, map[string]interface{}{
			"request_id": requestID,
		})
		return nil, domainerr.ErrDatabaseError("update admin request", err)
	}
	if !won {
		uc.metrics.RequestReviewed(action.String(), "already_reviewed")
		logger.LogWorkflowEvent(ctx, uc.logger, "admin_request_review_lost_race", map[string]interface{}{
			"request_id":  requestID,
			"reviewer_id": reviewer.ID,
		})
		return nil, domainerr.ErrAlreadyReviewed(requestID)
	}
	// apply the committed transition to the loaded copy
	if err := request.Review(action, reviewer.ID, reviewedAt); err != nil {
		return nil, domainerr.ErrAlreadyReviewed(requestID)
	}

	resp := &inbound.ReviewAdminRequestResponse{
		Success: true,
		Request: toRequestItem(request, requester),
	}

	if action == entity.ReviewReject {
		uc.metrics.RequestReviewed(action.String(), "rejected")
		logger.LogWorkflowEvent(ctx, uc.logger, "admin_request_rejected", map[string]interface{}{
			"request_id":  requestID,
			"reviewer_id": reviewer.ID,
		})
		return resp, nil
	}

	if err := uc.roles.Upsert(ctx, entity.NewRoleAssignment(requester.ID, entity.RoleAdmin, reviewer.ID)); err != nil {
		uc.metrics.RequestReviewed(action.String(), "failed")
		logger.LogSecurityEvent(ctx, uc.logger, "admin_grant_incomplete", "HIGH", map[string]interface{}{
			"request_id": requestID,
			"user_id":    requester.ID,
			"error":      err.Error(),
		})
		return nil, domainerr.ErrDatabaseError("grant admin role", err)
	}

	resp.EmailSent, resp.Warnings = uc.notifyApproval(ctx, requester)

	recordAudit(ctx, uc.audit, uc.logger, entity.NewAuditEntry(
		reviewer.ID,
		entity.AuditActionAdminRoleGranted,
		entity.AuditResourceUserRoles,
		requester.ID,
		map[string]interface{}{
			"email":      requester.Email,
			"request_id": requestID,
		},
	))

	uc.metrics.RequestReviewed(action.String(), "approved")
	logger.LogWorkflowEvent(ctx, uc.logger, "admin_request_approved", map[string]interface{}{
		"request_id":  requestID,
		"reviewer_id": reviewer.ID,
		"user_id":     requester.ID,
		"email_sent":  resp.EmailSent,
	})

	return resp, nil
}

// notifyApproval sends the set-password link. The grant is already committed, so
// failures become warnings on the response instead of errors.
func (uc *ReviewRequestUseCase) notifyApproval(ctx context.Context, requester *entity.Identity) (bool, []string) {
	link, err := uc.identities.GenerateRecoveryLink(ctx, requester.Email, uc.redirectURL, RecoveryLinkTTL)
	if err != nil {
		uc.metrics.NotificationFailed("recovery_link")
		uc.logger.Warn(ctx, "Failed to generate recovery link", map[string]interface{}{
			"user_id": requester.ID,
			"error":   err.Error(),
		})
		return false, []string{warningRecoveryLinkFailed}
	}

	html, err := renderApprovalEmail(requester.DisplayName(), link)
	if err == nil {
		err = uc.email.Send(ctx, outbound.EmailMessage{
			To:      requester.Email,
			Subject: approvalEmailSubject,
			HTML:    html,
		})
	}
	if err != nil {
		uc.metrics.NotificationFailed("email")
		uc.logger.Warn(ctx, "Failed to send approval email", map[string]interface{}{
			"user_id": requester.ID,
			"code":    string(domainerr.ErrCodeNotificationFailed),
			"error":   err.Error(),
		})
		return false, []string{warningEmailFailed}
	}
	return true, nil
}

func toRequestItem(request *entity.AdminRequest, requester *entity.Identity) inbound.AdminRequestItem {
	item := inbound.AdminRequestItem{
		ID:         request.ID,
		UserID:     request.UserID,
		Reason:     request.Reason,
		Status:     string(request.Status),
		ReviewedBy: request.ReviewedBy,
		ReviewedAt: request.ReviewedAt,
		CreatedAt:  request.CreatedAt,
	}
	if requester != nil {
		item.Email = requester.Email
		item.FullName = requester.FullName
	}
	return item
}
