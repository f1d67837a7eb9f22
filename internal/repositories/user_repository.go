package repository

import (
	"context"
	"database/sql"

	"github.com/bulkmart/catalog-platform/internal/utils"
	"github.com/google/uuid"
)

type userRoleRepository struct {
	DB *sql.DB
}

func NewUserRoleRepo(db *sql.DB) UserRoleRepository {
	return &userRoleRepository{DB: db}
}

// GetRole resolves the caller's role for the catalog write guard. A user
// without a row has no role, which callers treat as no write permission.
func (r *userRoleRepository) GetRole(ctx context.Context, userID uuid.UUID) (string, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var role string

	query := `SELECT role FROM user_roles WHERE user_id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&role)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}

		return "", err
	}

	return role, nil
}
