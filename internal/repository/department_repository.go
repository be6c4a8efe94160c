package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/duyuru-api/internal/models"
)

// DepartmentRepository reads departments and memberships.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs the repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns all departments ordered by name.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, departman_adi AS name FROM portal_departman ORDER BY departman_adi ASC`
	departments := []models.Department{}
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindMissing returns the ids among the given ones that do not exist.
func (r *DepartmentRepository) FindMissing(ctx context.Context, ids []int64) ([]int64, error) {
	const query = `SELECT want.id FROM unnest($1::bigint[]) AS want(id)
WHERE NOT EXISTS (SELECT 1 FROM portal_departman d WHERE d.id = want.id)
ORDER BY want.id`
	missing := []int64{}
	if err := r.db.SelectContext(ctx, &missing, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("check departments: %w", err)
	}
	return missing, nil
}

// ActiveIDsForUser returns the departments in which the user has an active, non-deleted membership.
func (r *DepartmentRepository) ActiveIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	const query = `SELECT DISTINCT PDU.department_id
FROM portal_departman_users PDU
INNER JOIN portal_user PU ON PDU.sicil = PU.sicil
WHERE PU.id = $1 AND PDU.is_delete = false AND PDU.is_active = true
ORDER BY PDU.department_id`
	ids := []int64{}
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list user departments: %w", err)
	}
	return ids, nil
}
