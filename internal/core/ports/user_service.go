package ports

import (
	"context"

	"github.com/kata-academy/useradmin/internal/core/domain"
)

// UserService is the directory of managed users.
type UserService interface {
	ListAll(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// PrincipalService bridges the user directory to the authentication layer.
type PrincipalService interface {
	LoadPrincipal(ctx context.Context, username string) (*domain.Principal, error)
}
