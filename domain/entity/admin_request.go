package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type AdminRequestStatus string

const (
	AdminRequestPending  AdminRequestStatus = "pending"
	AdminRequestApproved AdminRequestStatus = "approved"
	AdminRequestRejected AdminRequestStatus = "rejected"
)

func (s AdminRequestStatus) IsValid() bool {
	switch s {
	case AdminRequestPending, AdminRequestApproved, AdminRequestRejected:
		return true
	}
	return false
}

// ReviewAction is the decision an admin takes on a pending request.
type ReviewAction int

const (
	ReviewApprove ReviewAction = iota + 1
	ReviewReject
)

var ErrInvalidReviewAction = errors.New("action must be approve or reject")

// ParseReviewAction accepts exactly "approve" or "reject".
func ParseReviewAction(s string) (ReviewAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve":
		return ReviewApprove, nil
	case "reject":
		return ReviewReject, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidReviewAction, s)
}

func (a ReviewAction) String() string {
	switch a {
	case ReviewApprove:
		return "approve"
	case ReviewReject:
		return "reject"
	}
	return "unknown"
}

// TargetStatus is the terminal status a request lands in after the action.
func (a ReviewAction) TargetStatus() AdminRequestStatus {
	if a == ReviewApprove {
		return AdminRequestApproved
	}
	return AdminRequestRejected
}

// AdminRequest is a pending or decided request from an identity to be granted admin.
// ReviewedBy and ReviewedAt are set together, once, when the request leaves pending.
type AdminRequest struct {
	ID         string             `json:"id"`
	UserID     string             `json:"user_id"`
	Reason     string             `json:"reason"`
	Status     AdminRequestStatus `json:"status"`
	ReviewedBy *string            `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

func NewAdminRequest(id, userID, reason string) *AdminRequest {
	return &AdminRequest{
		ID:        id,
		UserID:    userID,
		Reason:    strings.TrimSpace(reason),
		Status:    AdminRequestPending,
		CreatedAt: time.Now().UTC(),
	}
}

func (r *AdminRequest) IsPending() bool {
	return r.Status == AdminRequestPending
}

var ErrRequestNotPending = errors.New("admin request is not pending")

// Review moves the request out of pending. Terminal states never change again.
func (r *AdminRequest) Review(action ReviewAction, reviewerID string, at time.Time) error {
	if !r.IsPending() {
		return ErrRequestNotPending
	}
	r.Status = action.TargetStatus()
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &at
	return nil
}
