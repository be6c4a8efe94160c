package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/duyuru-api/internal/models"
)

// ReportRepository runs the read-only reporting aggregates. Soft-deleted
// announcements and their receipts are excluded from every query.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// GeneralStats counts live announcements and the receipts recorded against them.
func (r *ReportRepository) GeneralStats(ctx context.Context) (*models.GeneralStats, error) {
	const query = `SELECT
	(SELECT COUNT(D.id) FROM portal_duyuru D WHERE D.is_delete = false) AS toplam_duyuru,
	(SELECT COUNT(O.id) FROM portal_duyuru_user O INNER JOIN portal_duyuru D ON D.id = O.duyuru_id WHERE D.is_delete = false) AS toplam_okunma`
	var stats models.GeneralStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("general stats: %w", err)
	}
	return &stats, nil
}

// AnnouncementReport lists live announcements with their read counts, most read first.
func (r *ReportRepository) AnnouncementReport(ctx context.Context) ([]models.AnnouncementReportRow, error) {
	query := `SELECT D.id, D.baslik, D.oncelik, D.duyuru_baslangic_tarihi, D.duyuru_bitis_tarihi,
	U.user_name AS olusturan_isim,
	(SELECT COUNT(O.id) FROM portal_duyuru_user O WHERE O.duyuru_id = D.id) AS okunma_sayisi,
	` + departmentsColumn + `
FROM portal_duyuru D
LEFT JOIN portal_user U ON D.created_by = U.id
WHERE D.is_delete = false
ORDER BY okunma_sayisi DESC, D.id DESC`
	rows := []models.AnnouncementReportRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("announcement report: %w", err)
	}
	return rows, nil
}

// ReadDetail lists the non-deleted users who read a live announcement, newest first.
func (r *ReportRepository) ReadDetail(ctx context.Context, announcementID int64) ([]models.ReadDetail, error) {
	const query = `SELECT K.sicil, K.user_name AS isim, O.okunma_tarihi
FROM portal_duyuru_user O
INNER JOIN portal_user K ON O.kullanici_id = K.id
INNER JOIN portal_duyuru D ON D.id = O.duyuru_id
WHERE O.duyuru_id = $1 AND K.is_delete = false AND D.is_delete = false
ORDER BY O.okunma_tarihi DESC`
	details := []models.ReadDetail{}
	if err := r.db.SelectContext(ctx, &details, query, announcementID); err != nil {
		return nil, fmt.Errorf("read detail: %w", err)
	}
	return details, nil
}

// UserActivity returns at most limit of the user's most recent reads.
func (r *ReportRepository) UserActivity(ctx context.Context, userID int64, limit int) ([]models.UserActivity, error) {
	query := `SELECT O.duyuru_id, O.okunma_tarihi, D.baslik, D.aciklama, D.oncelik,
	` + departmentsColumn + `
FROM portal_duyuru_user O
INNER JOIN portal_duyuru D ON O.duyuru_id = D.id
WHERE O.kullanici_id = $1 AND D.is_delete = false
ORDER BY O.okunma_tarihi DESC
LIMIT $2`
	activity := []models.UserActivity{}
	if err := r.db.SelectContext(ctx, &activity, query, userID, limit); err != nil {
		return nil, fmt.Errorf("user activity: %w", err)
	}
	return activity, nil
}

// UserActivityDetail returns every live announcement the user has read, newest read first.
func (r *ReportRepository) UserActivityDetail(ctx context.Context, userID int64) ([]models.Announcement, error) {
	query := `SELECT D.id, D.baslik, D.aciklama, D.oncelik, D.created_by, U.user_name AS olusturan_isim,
	D.olusturulma_tarihi, D.guncellenme_tarihi, D.duyuru_baslangic_tarihi, D.duyuru_bitis_tarihi,
	true AS okundu, O.okunma_tarihi,
	` + departmentsColumn + `
FROM portal_duyuru_user O
INNER JOIN portal_duyuru D ON O.duyuru_id = D.id
LEFT JOIN portal_user U ON D.created_by = U.id
WHERE O.kullanici_id = $1 AND D.is_delete = false
ORDER BY O.okunma_tarihi DESC`
	announcements := []models.Announcement{}
	if err := r.db.SelectContext(ctx, &announcements, query, userID); err != nil {
		return nil, fmt.Errorf("user activity detail: %w", err)
	}
	return announcements, nil
}

// DepartmentDistribution aggregates live announcements and their reads per department.
func (r *ReportRepository) DepartmentDistribution(ctx context.Context) ([]models.DepartmentDistribution, error) {
	const query = `SELECT Dep.id, Dep.departman_adi,
	COUNT(DISTINCT D.id) AS duyuru_sayisi,
	COUNT(O.id) AS okunma_sayisi
FROM portal_departman Dep
LEFT JOIN portal_duyuru_birim DB ON DB.department_id = Dep.id
LEFT JOIN portal_duyuru D ON D.id = DB.duyuru_id AND D.is_delete = false
LEFT JOIN portal_duyuru_user O ON O.duyuru_id = D.id
GROUP BY Dep.id, Dep.departman_adi
ORDER BY okunma_sayisi DESC, Dep.departman_adi ASC`
	rows := []models.DepartmentDistribution{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("department distribution: %w", err)
	}
	return rows, nil
}
