package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kata-academy/useradmin/internal/core/domain"
)

const uniqueViolation = "23505"

// UserRepository persists users and their role associations in PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, age, email, password FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("find all users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	index := make(map[int64]int)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Age, &u.Email, &u.Password); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	linkRows, err := r.db.QueryContext(ctx,
		`SELECT ur.user_id, r.id, r.name
		   FROM users_roles ur
		   JOIN roles r ON r.id = ur.role_id
		  ORDER BY ur.user_id, r.id`)
	if err != nil {
		return nil, fmt.Errorf("find role links: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var userID int64
		var role domain.Role
		if err := linkRows.Scan(&userID, &role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role link: %w", err)
		}
		if i, ok := index[userID]; ok {
			users[i].Roles = append(users[i].Roles, role)
		}
	}
	if err := linkRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role links: %w", err)
	}

	return users, nil
}

// FindByID returns (nil, nil) when no user carries the id.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx,
		`SELECT id, username, age, email, password FROM users WHERE id = $1`, id)
}

// FindByUsername returns (nil, nil) when no user carries the username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx,
		`SELECT id, username, age, email, password FROM users WHERE username = $1`, username)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Age, &u.Email, &u.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	roles, err := r.rolesOf(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (r *UserRepository) rolesOf(ctx context.Context, userID int64) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.name
		   FROM users_roles ur
		   JOIN roles r ON r.id = ur.role_id
		  WHERE ur.user_id = $1
		  ORDER BY r.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("find user roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// Save upserts by id. A zero id inserts and writes the assigned identity back
// into user; a non-zero id overwrites the row and replaces the role set
// wholesale. A username collision maps to domain.ErrUserExists.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if user.ID == 0 {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO users (username, age, email, password)
			 VALUES ($1, $2, $3, $4) RETURNING id`,
			user.Username, user.Age, user.Email, user.Password).Scan(&user.ID)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET username = $1, age = $2, email = $3, password = $4 WHERE id = $5`,
			user.Username, user.Age, user.Email, user.Password, user.ID)
		if err == nil {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM users_roles WHERE user_id = $1`, user.ID)
		}
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrUserExists
		}
		return fmt.Errorf("save user: %w", err)
	}

	for _, role := range user.Roles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users_roles (user_id, role_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			user.ID, role.ID); err != nil {
			return fmt.Errorf("save user role: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// DeleteByID removes the user row; the role links go with it via the cascade.
// Unknown ids are a no-op.
func (r *UserRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
