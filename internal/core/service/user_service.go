package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kata-academy/useradmin/internal/core/domain"
	"github.com/kata-academy/useradmin/internal/core/ports"
)

// UserService implements the user directory: listing, lookups, and the
// create/update/delete flows including password hashing.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, logger: logger}
}

func (s *UserService) ListAll(ctx context.Context) ([]domain.User, error) {
	return s.repo.FindAll(ctx)
}

// GetByID fails with domain.ErrUserNotFound when no such user exists.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// GetByUsername returns (nil, nil) when no user carries the username. The
// authentication path depends on distinguishing absence from store failures.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Create hashes the plaintext password in place and persists the user as a new
// record. Username uniqueness is not pre-checked; a collision surfaces from
// the store as domain.ErrUserExists.
func (s *UserService) Create(ctx context.Context, user *domain.User) error {
	digest, err := s.hasher.Hash(user.Password)
	if err != nil {
		return err
	}
	user.Password = digest
	user.ID = 0

	if err := s.repo.Save(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("username", user.Username).Msg("failed to create user")
		return err
	}

	s.logger.Info().Int64("id", user.ID).Str("username", user.Username).Msg("user created")
	return nil
}

// Update overwrites username, age, email and the role set of the record whose
// id is carried by the submitted user. Password handling is conditional: a
// submitted value byte-equal to the stored digest is kept as-is, anything else
// is hashed and stored. The equality check is a fragile round-trip heuristic
// (an edit form that resubmits the stored digest untouched must not re-hash
// it) and is kept deliberately, quirks included.
//
// The read-modify-write is not isolated from concurrent updates to the same
// id; last write wins.
func (s *UserService) Update(ctx context.Context, user *domain.User) error {
	existing, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrUserNotFound
	}

	existing.Username = user.Username
	existing.Age = user.Age
	existing.Email = user.Email
	existing.Roles = user.Roles

	if user.Password != existing.Password {
		digest, err := s.hasher.Hash(user.Password)
		if err != nil {
			return err
		}
		existing.Password = digest
	}

	if err := s.repo.Save(ctx, existing); err != nil {
		s.logger.Error().Err(err).Int64("id", user.ID).Msg("failed to update user")
		return err
	}

	user.Password = existing.Password
	s.logger.Info().Int64("id", user.ID).Str("username", user.Username).Msg("user updated")
	return nil
}

// Delete removes the user and its role associations. Deleting an id that does
// not exist is a no-op, matching delete-by-key store semantics.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("failed to delete user")
		return err
	}
	s.logger.Info().Int64("id", id).Msg("user deleted")
	return nil
}
