package admin

import (
	"context"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

// Dependencies bundles the collaborators of the admin workflow.
type Dependencies struct {
	Identities outbound.IdentityGateway
	Roles      outbound.RoleRepository
	Requests   outbound.AdminRequestRepository
	Profiles   outbound.ProfileRepository
	Email      outbound.EmailSender
	Audit      outbound.AuditSink
	Recaptcha  inbound.RecaptchaService
	RateLimit  inbound.RateLimitService
	Metrics    outbound.WorkflowMetrics
	Logger     logger.Logger

	// RecoveryRedirectURL is where the set-password link lands, e.g. https://portal/auth/admin.
	RecoveryRedirectURL string
	CleanupConcurrency  int
}

type AdminUseCaseImpl struct {
	gate                 *AuthorizationGate
	bootstrapUseCase     *BootstrapFirstAdminUseCase
	bootstrapStatus      *BootstrapStatusUseCase
	submitRequestUseCase *SubmitRequestUseCase
	reviewRequestUseCase *ReviewRequestUseCase
	listRequestsUseCase  *ListRequestsUseCase
	createAdminUseCase   *CreateAdminUseCase
	deleteIdentity       *DeleteIdentityUseCase
	recoveryLink         *RequestRecoveryLinkUseCase
	cleanupUseCase       *CleanupOrphanedRolesUseCase
}

func NewAdminUseCase(deps Dependencies) *AdminUseCaseImpl {
	gate := NewAuthorizationGate(deps.Identities, deps.Roles, deps.Logger)
	return &AdminUseCaseImpl{
		gate:                 gate,
		bootstrapUseCase:     NewBootstrapFirstAdminUseCase(deps.Identities, deps.Roles, deps.Profiles, deps.Audit, deps.Metrics, deps.Logger),
		bootstrapStatus:      NewBootstrapStatusUseCase(deps.Roles, deps.Logger),
		submitRequestUseCase: NewSubmitRequestUseCase(deps.Identities, deps.Requests, deps.Recaptcha, deps.Metrics, deps.Logger),
		reviewRequestUseCase: NewReviewRequestUseCase(gate, deps.Identities, deps.Roles, deps.Requests, deps.Email, deps.Audit, deps.Metrics, deps.Logger, deps.RecoveryRedirectURL),
		listRequestsUseCase:  NewListRequestsUseCase(gate, deps.Identities, deps.Requests, deps.Logger),
		createAdminUseCase:   NewCreateAdminUseCase(gate, deps.Identities, deps.Roles, deps.Profiles, deps.Audit, deps.Logger),
		deleteIdentity:       NewDeleteIdentityUseCase(gate, deps.Identities, deps.Roles, deps.Audit, deps.Logger),
		recoveryLink:         NewRequestRecoveryLinkUseCase(deps.Identities, deps.Roles, deps.Email, deps.RateLimit, deps.Metrics, deps.Logger, deps.RecoveryRedirectURL),
		cleanupUseCase:       NewCleanupOrphanedRolesUseCase(deps.Identities, deps.Roles, deps.Audit, deps.Metrics, deps.Logger, deps.CleanupConcurrency),
	}
}

// Gate exposes the authorization gate shared with the HTTP middleware.
func (uc *AdminUseCaseImpl) Gate() *AuthorizationGate {
	return uc.gate
}

func (uc *AdminUseCaseImpl) BootstrapFirstAdmin(ctx context.Context, req inbound.BootstrapAdminRequest) (*inbound.BootstrapAdminResponse, error) {
	return uc.bootstrapUseCase.Execute(ctx, req)
}

func (uc *AdminUseCaseImpl) BootstrapStatus(ctx context.Context) (*inbound.BootstrapStatusResponse, error) {
	return uc.bootstrapStatus.Execute(ctx)
}

func (uc *AdminUseCaseImpl) SubmitRequest(ctx context.Context, req inbound.SubmitAdminRequestRequest) (*inbound.SubmitAdminRequestResponse, error) {
	return uc.submitRequestUseCase.Execute(ctx, req)
}

func (uc *AdminUseCaseImpl) ReviewRequest(ctx context.Context, reviewer *entity.Identity, req inbound.ReviewAdminRequestRequest) (*inbound.ReviewAdminRequestResponse, error) {
	return uc.reviewRequestUseCase.Execute(ctx, reviewer, req)
}

func (uc *AdminUseCaseImpl) ListRequests(ctx context.Context, viewer *entity.Identity, req inbound.ListAdminRequestsRequest) (*inbound.ListAdminRequestsResponse, error) {
	return uc.listRequestsUseCase.Execute(ctx, viewer, req)
}

func (uc *AdminUseCaseImpl) CreateAdmin(ctx context.Context, creator *entity.Identity, req inbound.CreateAdminRequest) (*inbound.CreateAdminResponse, error) {
	return uc.createAdminUseCase.Execute(ctx, creator, req)
}

func (uc *AdminUseCaseImpl) DeleteIdentity(ctx context.Context, actor *entity.Identity, userID string) error {
	return uc.deleteIdentity.Execute(ctx, actor, userID)
}

func (uc *AdminUseCaseImpl) RequestRecoveryLink(ctx context.Context, req inbound.RecoveryLinkRequest) (*inbound.RecoveryLinkResponse, error) {
	return uc.recoveryLink.Execute(ctx, req)
}

func (uc *AdminUseCaseImpl) CleanupOrphanedAdminRoles(ctx context.Context) (*inbound.CleanupOrphanedRolesResponse, error) {
	return uc.cleanupUseCase.Execute(ctx)
}

var (
	_ inbound.AdminUseCase      = (*AdminUseCaseImpl)(nil)
	_ inbound.AuthorizationGate = (*AuthorizationGate)(nil)
)
