package ports

import (
	"context"

	"github.com/kata-academy/useradmin/internal/core/domain"
)

// RoleRepository reads role reference data. Roles are maintained outside this
// service; only lookups are exposed.
type RoleRepository interface {
	FindAll(ctx context.Context) ([]domain.Role, error)
	// FindByIDs resolves the given role ids, failing with domain.ErrRoleNotFound
	// when any id has no backing record.
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Role, error)
}
