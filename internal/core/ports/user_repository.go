package ports

import (
	"context"

	"github.com/kata-academy/useradmin/internal/core/domain"
)

// UserRepository defines the persistence contract for users.
//
// Save upserts by id: a zero id inserts and assigns a new identity (written
// back into the passed user), a non-zero id overwrites the existing record and
// its role associations wholesale. A username collision surfaces as
// domain.ErrUserExists. FindByUsername returns (nil, nil) when there is no
// match; absence is not an error on that path. DeleteByID is idempotent.
type UserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	DeleteByID(ctx context.Context, id int64) error
}
