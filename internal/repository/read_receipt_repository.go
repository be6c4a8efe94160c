package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ReadReceiptRepository records which user read which announcement.
type ReadReceiptRepository struct {
	db *sqlx.DB
}

// NewReadReceiptRepository constructs the repository.
func NewReadReceiptRepository(db *sqlx.DB) *ReadReceiptRepository {
	return &ReadReceiptRepository{db: db}
}

// Insert stores a receipt for (announcementID, userID) unless one already exists.
// The returned flag is true only when this call created the receipt.
func (r *ReadReceiptRepository) Insert(ctx context.Context, announcementID, userID int64) (bool, error) {
	const query = `INSERT INTO portal_duyuru_user (duyuru_id, kullanici_id, okunma_tarihi)
VALUES ($1, $2, NOW())
ON CONFLICT (kullanici_id, duyuru_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, announcementID, userID)
	if err != nil {
		return false, fmt.Errorf("insert read receipt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert read receipt rows: %w", err)
	}
	return affected > 0, nil
}
