package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kata-academy/useradmin/internal/core/domain"
)

// RoleRepository reads role reference data from PostgreSQL.
type RoleRepository struct {
	db *sql.DB
}

func NewRoleRepository(db *sql.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) FindAll(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("find all roles: %w", err)
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

// FindByIDs resolves the given ids, failing with domain.ErrRoleNotFound when
// any of them has no backing row.
func (r *RoleRepository) FindByIDs(ctx context.Context, ids []int64) ([]domain.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT id, name FROM roles WHERE id IN (%s) ORDER BY id`,
		strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	defer rows.Close()

	found := make([]domain.Role, 0, len(ids))
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		found = append(found, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Duplicate ids in the input collapse in the IN clause, so compare sets.
	seen := make(map[int64]struct{}, len(found))
	for _, role := range found {
		seen[role.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			return nil, domain.ErrRoleNotFound
		}
	}

	return found, nil
}
