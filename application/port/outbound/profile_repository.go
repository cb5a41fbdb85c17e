package outbound

import (
	"context"

	"github.com/fixora/complaintdesk/domain/entity"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, profile *entity.Profile) error
}
