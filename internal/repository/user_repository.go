package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/duyuru-api/internal/models"
)

// UserRepository reads portal users and their role grants.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `U.id, U.sicil, U.user_name, U.password_hash, U.is_delete,
	COALESCE((SELECT array_agg(L.rol_adi ORDER BY L.id)
		FROM gk_yetkilendirme Y
		JOIN gk_yetki_list L ON Y.rol_id = L.id
		WHERE Y.user_id = U.id), '{}') AS yetkiler`

// FindBySicil returns an active (non-deleted) user by identity number.
func (r *UserRepository) FindBySicil(ctx context.Context, sicil string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM portal_user U WHERE U.sicil = $1 AND U.is_delete = false LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, sicil); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by sicil: %w", err)
	}
	return &user, nil
}

// FindByID returns an active (non-deleted) user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM portal_user U WHERE U.id = $1 AND U.is_delete = false LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}
