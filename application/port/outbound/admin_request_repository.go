package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/fixora/complaintdesk/domain/entity"
)

var (
	ErrAdminRequestNotFound = errors.New("admin request not found")
)

type AdminRequestFilter struct {
	Status entity.AdminRequestStatus
}

type AdminRequestRepository interface {
	Create(ctx context.Context, request *entity.AdminRequest) error
	FindByID(ctx context.Context, id string) (*entity.AdminRequest, error)
	List(ctx context.Context, offset, limit int, filter AdminRequestFilter) ([]*entity.AdminRequest, int, error)
	// TransitionStatus moves the request from pending to status only if it is still pending.
	// It reports false when another reviewer got there first.
	TransitionStatus(ctx context.Context, id string, status entity.AdminRequestStatus, reviewerID string, reviewedAt time.Time) (bool, error)
}
