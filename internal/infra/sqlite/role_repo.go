package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

// RoleRepo implements ports.RoleRepository. Role rows are written out of
// band (user administration is not part of this service); here they are
// read-only.
type RoleRepo struct {
	db *sql.DB
}

func (r *RoleRepo) HasRole(ctx context.Context, callerID, role string) (bool, error) {
	const q = `SELECT 1 FROM user_roles WHERE user_id = ? AND role = ?`

	var one int
	err := r.db.QueryRowContext(ctx, q, callerID, role).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: role lookup for %q: %w", callerID, err)
	}
	return true, nil
}

// ProfileRepo implements ports.ProfileRepository.
type ProfileRepo struct {
	db *sql.DB
}

func (r *ProfileRepo) Get(ctx context.Context, callerID string) (*entity.Profile, error) {
	const q = `SELECT id, name, email FROM profiles WHERE id = ?`

	var p entity.Profile
	err := r.db.QueryRowContext(ctx, q, callerID).Scan(&p.ID, &p.Name, &p.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: profile %q: %w", callerID, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load profile %q: %w", callerID, err)
	}
	return &p, nil
}
