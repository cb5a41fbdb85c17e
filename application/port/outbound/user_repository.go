package outbound

import (
	"context"
	"errors"

	"github.com/fixora/complaintdesk/domain/entity"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository stores credential records for the local identity provider.
// Soft-deleted users are invisible to every finder.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	SoftDelete(ctx context.Context, id string) error
	FindAll(ctx context.Context) ([]*entity.User, error)
}
