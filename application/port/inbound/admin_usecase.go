package inbound

import (
	"context"
	"time"

	"github.com/fixora/complaintdesk/domain/entity"
)

// Bootstrap
type BootstrapAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
}

type BootstrapAdminResponse struct {
	UserID string `json:"user_id"`
}

type BootstrapStatusResponse struct {
	Initialized bool `json:"initialized"`
}

// Submit admin access request
type SubmitAdminRequestRequest struct {
	FullName       string `json:"full_name" validate:"required,min=2,max=255"`
	Email          string `json:"email" validate:"required,email"`
	Reason         string `json:"reason" validate:"max=2000"`
	RecaptchaToken string `json:"recaptcha_token"`
}

type SubmitAdminRequestResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// Review admin access request
type ReviewAdminRequestRequest struct {
	RequestID string `json:"-"`
	Action    string `json:"action" validate:"required,oneof=approve reject"`
}

type ReviewAdminRequestResponse struct {
	Success   bool             `json:"success"`
	Request   AdminRequestItem `json:"request"`
	EmailSent bool             `json:"email_sent"`
	Warnings  []string         `json:"warnings,omitempty"`
}

// List admin access requests
type ListAdminRequestsRequest struct {
	Status string `json:"status,omitempty"`
	Page   int    `json:"page" validate:"min=1"`
	Limit  int    `json:"limit" validate:"min=1,max=100"`
}

type AdminRequestItem struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Email      string     `json:"email,omitempty"`
	FullName   string     `json:"full_name,omitempty"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ListAdminRequestsResponse struct {
	Requests   []AdminRequestItem `json:"requests"`
	Pagination PaginationInfo     `json:"pagination"`
}

type PaginationInfo struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Direct admin creation
type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
}

type CreateAdminResponse struct {
	UserID string `json:"user_id"`
}

// Recovery link re-issue
type RecoveryLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RecoveryLinkResponse struct {
	Message string `json:"message"`
}

// Orphaned role cleanup
type CleanupOrphanedRolesResponse struct {
	Message      string   `json:"message"`
	CleanedCount int      `json:"cleaned_count"`
	UserIDs      []string `json:"user_ids"`
}

// AdminUseCase is the admin provisioning workflow.
type AdminUseCase interface {
	BootstrapFirstAdmin(ctx context.Context, req BootstrapAdminRequest) (*BootstrapAdminResponse, error)
	BootstrapStatus(ctx context.Context) (*BootstrapStatusResponse, error)
	SubmitRequest(ctx context.Context, req SubmitAdminRequestRequest) (*SubmitAdminRequestResponse, error)
	ReviewRequest(ctx context.Context, reviewer *entity.Identity, req ReviewAdminRequestRequest) (*ReviewAdminRequestResponse, error)
	ListRequests(ctx context.Context, viewer *entity.Identity, req ListAdminRequestsRequest) (*ListAdminRequestsResponse, error)
	CreateAdmin(ctx context.Context, creator *entity.Identity, req CreateAdminRequest) (*CreateAdminResponse, error)
	DeleteIdentity(ctx context.Context, actor *entity.Identity, userID string) error
	RequestRecoveryLink(ctx context.Context, req RecoveryLinkRequest) (*RecoveryLinkResponse, error)
	CleanupOrphanedAdminRoles(ctx context.Context) (*CleanupOrphanedRolesResponse, error)
}

// AuthorizationGate decides who may reach admin operations.
// Admin status always comes from the role store, never from token claims.
type AuthorizationGate interface {
	Authorize(ctx context.Context, bearerToken string) (*entity.Identity, error)
	RequireAdmin(ctx context.Context, identity *entity.Identity) error
	IsAdmin(ctx context.Context, identity *entity.Identity) (bool, error)
}
