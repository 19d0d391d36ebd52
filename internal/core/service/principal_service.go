package service

import (
	"context"

	"github.com/kata-academy/useradmin/internal/core/domain"
	"github.com/kata-academy/useradmin/internal/core/ports"
)

// PrincipalService adapts the user directory to the authentication layer.
type PrincipalService struct {
	users ports.UserService
}

func NewPrincipalService(users ports.UserService) *PrincipalService {
	return &PrincipalService{users: users}
}

// LoadPrincipal resolves a username into an authenticatable principal. A
// missing user fails with domain.ErrPrincipalNotFound so the login flow can
// treat it as an authentication failure rather than a server error.
func (s *PrincipalService) LoadPrincipal(ctx context.Context, username string) (*domain.Principal, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrPrincipalNotFound
	}

	return &domain.Principal{
		Username:     user.Username,
		PasswordHash: user.Password,
		Authorities:  domain.Authorities(user.Roles),
	}, nil
}
