package ports

import (
	"context"

	"github.com/kata-academy/useradmin/internal/core/domain"
)

// AuthService authenticates credentials and issues session tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.Principal, error)
}
