package admin

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/domain/valueobject"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

const maxReasonLength = 2000

// SubmitRequestUseCase registers a prospective admin. The new identity gets an
// unusable password and no role; access comes only through approval.
type SubmitRequestUseCase struct {
	identities outbound.IdentityGateway
	requests   outbound.AdminRequestRepository
	recaptcha  inbound.RecaptchaService
	metrics    outbound.WorkflowMetrics
	logger     logger.Logger
}

func NewSubmitRequestUseCase(
	identities outbound.IdentityGateway,
	requests outbound.AdminRequestRepository,
	recaptcha inbound.RecaptchaService,
	metrics outbound.WorkflowMetrics,
	log logger.Logger,
) *SubmitRequestUseCase {
	return &SubmitRequestUseCase{
		identities: identities,
		requests:   requests,
		recaptcha:  recaptcha,
		metrics:    metricsOrNoop(metrics),
		logger:     log,
	}
}

func (uc *SubmitRequestUseCase) Execute(ctx context.Context, req inbound.SubmitAdminRequestRequest) (*inbound.SubmitAdminRequestResponse, error) {
	email, err := valueobject.NewEmail(req.Email)
	if err != nil {
		uc.metrics.RequestSubmitted("invalid")
		return nil, domainerr.ErrValidation(err.Error(), err)
	}
	fullName, err := valueobject.NewFullName(req.FullName)
	if err != nil {
		uc.metrics.RequestSubmitted("invalid")
		return nil, domainerr.ErrValidation(err.Error(), err)
	}
	if utf8.RuneCountInString(req.Reason) > maxReasonLength {
		uc.metrics.RequestSubmitted("invalid")
		return nil, domainerr.ErrValidation("reason must be at most 2000 characters", nil)
	}

	if uc.recaptcha != nil && uc.recaptcha.IsEnabled() {
		valid, err := uc.recaptcha.VerifyToken(ctx, req.RecaptchaToken)
		if err != nil || !valid {
			uc.metrics.RequestSubmitted("recaptcha_failed")
			logger.LogSecurityEvent(ctx, uc.logger, "admin_request_recaptcha_failed", "MEDIUM", map[string]interface{}{
				"email": email,
			})
			return nil, domainerr.ErrRecaptchaInvalid(err)
		}
	}

	_, err = uc.identities.FindIdentityByEmail(ctx, email)
	switch {
	case err == nil:
		uc.metrics.RequestSubmitted("email_taken")
		return nil, domainerr.ErrEmailTaken()
	case !errors.Is(err, outbound.ErrIdentityNotFound):
		uc.logger.Error(ctx, "Failed to look up identity by email", err, map[string]interface{}{
			"email": email,
		})
		return nil, domainerr.ErrIdentityProvider("find_identity_by_email", err)
	}

	password, err := unusablePassword()
	if err != nil {
		return nil, domainerr.ErrInternalServerError("generate password", err)
	}

	identity, err := uc.identities.CreateIdentity(ctx, outbound.CreateIdentityInput{
		Email:          email,
		Password:       password,
		FullName:       fullName,
		EmailConfirmed: false,
	})
	if err != nil {
		if errors.Is(err, outbound.ErrEmailTaken) {
			uc.metrics.RequestSubmitted("email_taken")
			return nil, domainerr.ErrEmailTaken()
		}
		uc.logger.Error(ctx, "Failed to create requester identity", err, map[string]interface{}{
			"email": email,
		})
		return nil, domainerr.ErrIdentityProvider("create_identity", err)
	}

	request := entity.NewAdminRequest(uuid.New().String(), identity.ID, req.Reason)
	if err := uc.requests.Create(ctx, request); err != nil {
		uc.logger.Error(ctx, "Failed to store admin request", err, map[string]interface{}{
			"user_id": identity.ID,
		})
		uc.discardIdentity(ctx, identity.ID)
		return nil, domainerr.ErrDatabaseError("insert admin request", err)
	}

	uc.metrics.RequestSubmitted("created")
	logger.LogWorkflowEvent(ctx, uc.logger, "admin_request_submitted", map[string]interface{}{
		"request_id": request.ID,
		"user_id":    identity.ID,
	})

	return &inbound.SubmitAdminRequestResponse{
		RequestID: request.ID,
		Status:    string(request.Status),
	}, nil
}

// discardIdentity removes an identity whose request was never stored, so the
// email is free for a retry. A leftover would answer every later submit with EmailTaken.
func (uc *SubmitRequestUseCase) discardIdentity(ctx context.Context, userID string) {
	if err := uc.identities.DeleteIdentity(ctx, userID); err != nil && !errors.Is(err, outbound.ErrIdentityNotFound) {
		logger.LogSecurityEvent(ctx, uc.logger, "admin_request_identity_stranded", "MEDIUM", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
