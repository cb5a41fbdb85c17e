package admin

import (
	"context"

	"github.com/fixora/complaintdesk/application/port/inbound"
	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/domain/entity"
	domainerr "github.com/fixora/complaintdesk/domain/error"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

type ListRequestsUseCase struct {
	gate       *AuthorizationGate
	identities outbound.IdentityGateway
	requests   outbound.AdminRequestRepository
	logger     logger.Logger
}

func NewListRequestsUseCase(
	gate *AuthorizationGate,
	identities outbound.IdentityGateway,
	requests outbound.AdminRequestRepository,
	log logger.Logger,
) *ListRequestsUseCase {
	return &ListRequestsUseCase{
		gate:       gate,
		identities: identities,
		requests:   requests,
		logger:     log,
	}
}

func (uc *ListRequestsUseCase) Execute(ctx context.Context, viewer *entity.Identity, req inbound.ListAdminRequestsRequest) (*inbound.ListAdminRequestsResponse, error) {
	if err := uc.gate.RequireAdmin(ctx, viewer); err != nil {
		return nil, err
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	filter := outbound.AdminRequestFilter{Status: entity.AdminRequestStatus(req.Status)}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domainerr.ErrValidation("status must be pending, approved or rejected", nil)
	}

	offset := (req.Page - 1) * req.Limit
	requests, total, err := uc.requests.List(ctx, offset, req.Limit, filter)
	if err != nil {
		uc.logger.Error(ctx, "Failed to list admin requests", err, nil)
		return nil, domainerr.ErrDatabaseError("list admin requests", err)
	}

	// one provider call per page; an outage degrades to rows without names
	byID := make(map[string]*entity.Identity)
	if len(requests) > 0 {
		identities, err := uc.identities.ListIdentities(ctx)
		if err != nil {
			uc.logger.Warn(ctx, "Failed to resolve requester identities", map[string]interface{}{
				"error": err.Error(),
			})
		}
		for _, identity := range identities {
			byID[identity.ID] = identity
		}
	}

	items := make([]inbound.AdminRequestItem, len(requests))
	for i, request := range requests {
		items[i] = toRequestItem(request, byID[request.UserID])
	}

	return &inbound.ListAdminRequestsResponse{
		Requests: items,
		Pagination: inbound.PaginationInfo{
			Page:  req.Page,
			Limit: req.Limit,
			Total: total,
		},
	}, nil
}
