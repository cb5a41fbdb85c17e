package admin

import (
	"context"
	"errors"
	"time"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/domain/valueobject"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

const (
	recoveryRequestLimit  = 3
	recoveryRequestWindow = time.Hour

	recoveryRequestAccepted = "If the address belongs to an admin account, a password link has been sent"
)

// RequestRecoveryLinkUseCase re-issues the set-password link for admins whose
// approval link expired or was never delivered. The caller gets the same answer
// whether or not the address is known.
type RequestRecoveryLinkUseCase struct {
	identities  outbound.IdentityGateway
	roles       outbound.RoleRepository
	email       outbound.EmailSender
	rateLimit   inbound.RateLimitService
	metrics     outbound.WorkflowMetrics
	logger      logger.Logger
	redirectURL string
}

func NewRequestRecoveryLinkUseCase(
	identities outbound.IdentityGateway,
	roles outbound.RoleRepository,
	email outbound.EmailSender,
	rateLimit inbound.RateLimitService,
	metrics outbound.WorkflowMetrics,
	log logger.Logger,
	redirectURL string,
) *RequestRecoveryLinkUseCase {
	return &RequestRecoveryLinkUseCase{
		identities:  identities,
		roles:       roles,
		email:       email,
		rateLimit:   rateLimit,
		metrics:     metricsOrNoop(metrics),
		logger:      log,
		redirectURL: redirectURL,
	}
}

func (uc *RequestRecoveryLinkUseCase) Execute(ctx context.Context, req inbound.RecoveryLinkRequest) (*inbound.RecoveryLinkResponse, error) {
	email, err := valueobject.NewEmail(req.Email)
	if err != nil {
		return nil, domainerr.ErrValidation(err.Error(), err)
	}
	accepted := &inbound.RecoveryLinkResponse{Message: recoveryRequestAccepted}

	if !uc.allow(ctx, email) {
		return accepted, nil
	}

	identity, err := uc.identities.FindIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, outbound.ErrIdentityNotFound) {
			uc.logger.Debug(ctx, "Recovery link requested for unknown address", nil)
			return accepted, nil
		}
		uc.logger.Error(ctx, "Failed to look up identity by email", err, nil)
		return nil, domainerr.ErrIdentityProvider("find_identity_by_email", err)
	}

	isAdmin, err := uc.roles.HasRole(ctx, identity.ID, entity.RoleAdmin)
	if err != nil {
		uc.logger.Error(ctx, "Failed to check admin role", err, map[string]interface{}{
			"user_id": identity.ID,
		})
		return nil, domainerr.ErrDatabaseError("check admin role", err)
	}
	// pending requesters and plain users get nothing; only admins may set a password this way
	if !isAdmin {
		logger.LogSecurityEvent(ctx, uc.logger, "recovery_link_requested_without_role", "LOW", map[string]interface{}{
			"user_id": identity.ID,
		})
		return accepted, nil
	}

	link, err := uc.identities.GenerateRecoveryLink(ctx, identity.Email, uc.redirectURL, RecoveryLinkTTL)
	if err != nil {
		uc.metrics.NotificationFailed("recovery_link")
		uc.logger.Warn(ctx, "Failed to generate recovery link", map[string]interface{}{
			"user_id": identity.ID,
			"error":   err.Error(),
		})
		return accepted, nil
	}

	html, err := renderResetEmail(identity.DisplayName(), link)
	if err == nil {
		err = uc.email.Send(ctx, outbound.EmailMessage{
			To:      identity.Email,
			Subject: resetEmailSubject,
			HTML:    html,
		})
	}
	if err != nil {
		uc.metrics.NotificationFailed("email")
		uc.logger.Warn(ctx, "Failed to send recovery email", map[string]interface{}{
			"user_id": identity.ID,
			"code":    string(domainerr.ErrCodeNotificationFailed),
			"error":   err.Error(),
		})
		return accepted, nil
	}

	logger.LogWorkflowEvent(ctx, uc.logger, "recovery_link_reissued", map[string]interface{}{
		"user_id": identity.ID,
	})
	return accepted, nil
}

// allow caps requests per address. Redis errors fail open.
func (uc *RequestRecoveryLinkUseCase) allow(ctx context.Context, email string) bool {
	if uc.rateLimit == nil {
		return true
	}
	key := "recover_request:email:" + email

	allowed, err := uc.rateLimit.CheckLimit(ctx, key, recoveryRequestLimit, recoveryRequestWindow)
	if err != nil {
		uc.logger.Error(ctx, "Failed to check recovery request limit", err, nil)
		return true
	}
	if !allowed {
		logger.LogSecurityEvent(ctx, uc.logger, "recovery_request_limit_exceeded", "MEDIUM", nil)
		return false
	}
	if err := uc.rateLimit.Increment(ctx, key, recoveryRequestWindow); err != nil {
		uc.logger.Warn(ctx, "Failed to count recovery request", map[string]interface{}{"error": err.Error()})
	}
	return true
}
