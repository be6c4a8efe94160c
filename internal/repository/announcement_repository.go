package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/noah-isme/duyuru-api/internal/models"
)

// departmentsColumn aggregates the departments linked to announcement D as a JSON array.
const departmentsColumn = `(SELECT COALESCE(json_agg(json_build_object('id', Dep.id, 'departman_adi', Dep.departman_adi) ORDER BY Dep.departman_adi), '[]'::json)
		FROM portal_duyuru_birim DB
		INNER JOIN portal_departman Dep ON DB.department_id = Dep.id
		WHERE DB.duyuru_id = D.id) AS departmanlar`

// visibilityClause restricts D to announcements targeting one of the active departments of user $1.
const visibilityClause = `EXISTS (SELECT 1
		FROM portal_duyuru_birim DB
		INNER JOIN portal_departman_users PDU ON PDU.department_id = DB.department_id
		INNER JOIN portal_user PU ON PU.sicil = PDU.sicil
		WHERE DB.duyuru_id = D.id AND PU.id = $1 AND PDU.is_active = true AND PDU.is_delete = false)`

const announcementSelect = `SELECT D.id, D.baslik, D.aciklama, D.oncelik, D.created_by, U.user_name AS olusturan_isim,
	D.olusturulma_tarihi, D.guncellenme_tarihi, D.duyuru_baslangic_tarihi, D.duyuru_bitis_tarihi,
	(O.kullanici_id IS NOT NULL) AS okundu, O.okunma_tarihi,
	` + departmentsColumn + `
FROM portal_duyuru D
LEFT JOIN portal_user U ON D.created_by = U.id
LEFT JOIN portal_duyuru_user O ON O.duyuru_id = D.id AND O.kullanici_id = $1`

const (
	currentClause = `(D.duyuru_bitis_tarihi IS NULL OR D.duyuru_bitis_tarihi >= NOW())`
	pastClause    = `(D.duyuru_bitis_tarihi IS NOT NULL AND D.duyuru_bitis_tarihi < NOW())`
)

// AnnouncementRepository persists announcements and their department links.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository constructs the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns the non-deleted announcements visible to filter.UserID, ordered by priority and start date.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	conditions := []string{"D.is_delete = false"}
	if !filter.Privileged {
		conditions = append(conditions, visibilityClause)
	}
	switch filter.Status {
	case models.FilterCurrent:
		conditions = append(conditions, currentClause)
	case models.FilterPast:
		conditions = append(conditions, pastClause)
	}

	query := announcementSelect + "\nWHERE " + strings.Join(conditions, " AND ") +
		"\nORDER BY D.oncelik DESC, D.duyuru_baslangic_tarihi DESC, D.id DESC"

	announcements := []models.Announcement{}
	if err := r.db.SelectContext(ctx, &announcements, query, filter.UserID); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// FindByID returns a non-deleted announcement with the read state of userID.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id, userID int64) (*models.Announcement, error) {
	query := announcementSelect + "\nWHERE D.is_delete = false AND D.id = $2"
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, userID, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &announcement, nil
}

// Create inserts the announcement and its department links in one transaction.
func (r *AnnouncementRepository) Create(ctx context.Context, write models.AnnouncementWrite) (id int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin create announcement: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO portal_duyuru (baslik, aciklama, oncelik, created_by, duyuru_baslangic_tarihi, duyuru_bitis_tarihi)
VALUES ($1, $2, $3, $4, COALESCE($5, NOW()), $6) RETURNING id`
	if err = tx.QueryRowxContext(ctx, insert, write.Title, write.Body, write.Priority, write.CreatedBy, write.StartsAt, write.EndsAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert announcement: %w", err)
	}

	if err = insertLinks(ctx, tx, id, write.DepartmentIDs); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create announcement: %w", err)
	}
	return id, nil
}

// Update rewrites the fields of a non-deleted announcement and, when requested,
// reconciles its department links against write.DepartmentIDs. The row is locked
// first so an end date can be checked against the stored start when no new start is
// given. A missing announcement yields sql.ErrNoRows and an end before the effective
// start yields models.ErrEndBeforeStart; neither modifies anything.
func (r *AnnouncementRepository) Update(ctx context.Context, id int64, write models.AnnouncementWrite) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update announcement: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lock = `SELECT duyuru_baslangic_tarihi FROM portal_duyuru WHERE id = $1 AND is_delete = false FOR UPDATE`
	var stored sql.NullTime
	if err = tx.QueryRowxContext(ctx, lock, id).Scan(&stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("lock announcement: %w", err)
	}

	start := write.StartsAt
	if start == nil && stored.Valid {
		start = &stored.Time
	}
	if start != nil && write.EndsAt != nil && write.EndsAt.Before(*start) {
		return models.ErrEndBeforeStart
	}

	const update = `UPDATE portal_duyuru SET baslik = $1, aciklama = $2, oncelik = $3,
	duyuru_baslangic_tarihi = COALESCE($4, duyuru_baslangic_tarihi), duyuru_bitis_tarihi = $5, guncellenme_tarihi = NOW()
WHERE id = $6 AND is_delete = false`
	if _, err = tx.ExecContext(ctx, update, write.Title, write.Body, write.Priority, write.StartsAt, write.EndsAt, id); err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}

	if write.ReplaceDepartments {
		if err = reconcileLinks(ctx, tx, id, write.DepartmentIDs); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update announcement: %w", err)
	}
	return nil
}

// SoftDelete flags the announcement as deleted. Links and read receipts are retained.
func (r *AnnouncementRepository) SoftDelete(ctx context.Context, id int64) error {
	const query = `UPDATE portal_duyuru SET is_delete = true, guncellenme_tarihi = NOW() WHERE id = $1 AND is_delete = false`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete announcement rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func insertLinks(ctx context.Context, tx *sqlx.Tx, announcementID int64, departmentIDs []int64) error {
	if len(departmentIDs) == 0 {
		return nil
	}
	const query = `INSERT INTO portal_duyuru_birim (duyuru_id, department_id)
SELECT $1, unnest($2::bigint[])
ON CONFLICT (duyuru_id, department_id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, query, announcementID, pq.Array(departmentIDs)); err != nil {
		return fmt.Errorf("insert announcement departments: %w", err)
	}
	return nil
}

func reconcileLinks(ctx context.Context, tx *sqlx.Tx, announcementID int64, desired []int64) error {
	current := []int64{}
	const selectLinks = `SELECT department_id FROM portal_duyuru_birim WHERE duyuru_id = $1 FOR UPDATE`
	if err := tx.SelectContext(ctx, &current, selectLinks, announcementID); err != nil {
		return fmt.Errorf("load announcement departments: %w", err)
	}

	removed, added := lo.Difference(current, desired)
	if len(removed) > 0 {
		const remove = `DELETE FROM portal_duyuru_birim WHERE duyuru_id = $1 AND department_id = ANY($2::bigint[])`
		if _, err := tx.ExecContext(ctx, remove, announcementID, pq.Array(removed)); err != nil {
			return fmt.Errorf("remove announcement departments: %w", err)
		}
	}
	return insertLinks(ctx, tx, announcementID, added)
}
