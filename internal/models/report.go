package models

import "time"

// GeneralStats summarises the board for the report dashboard.
type GeneralStats struct {
	TotalAnnouncements int64 `db:"toplam_duyuru" json:"toplamDuyuru"`
	TotalReads         int64 `db:"toplam_okunma" json:"toplamOkunma"`
}

// AnnouncementReportRow is one line of the per-announcement read report.
type AnnouncementReportRow struct {
	ID          int64          `db:"id" json:"id"`
	Title       string         `db:"baslik" json:"baslik"`
	Priority    Priority       `db:"oncelik" json:"oncelik"`
	StartsAt    *time.Time     `db:"duyuru_baslangic_tarihi" json:"duyuru_baslangic_tarihi"`
	EndsAt      *time.Time     `db:"duyuru_bitis_tarihi" json:"duyuru_bitis_tarihi"`
	CreatorName *string        `db:"olusturan_isim" json:"olusturan_isim"`
	ReadCount   int64          `db:"okunma_sayisi" json:"okunmaSayisi"`
	Departments DepartmentRefs `db:"departmanlar" json:"departmanlar"`
}

// ReadDetail lists one reader of an announcement.
type ReadDetail struct {
	Sicil  string    `db:"sicil" json:"sicil"`
	Name   string    `db:"isim" json:"isim"`
	ReadAt time.Time `db:"okunma_tarihi" json:"okunma_tarihi"`
}

// UserActivity is one entry of a user's read history.
type UserActivity struct {
	AnnouncementID int64          `db:"duyuru_id" json:"duyuru_id"`
	ReadAt         time.Time      `db:"okunma_tarihi" json:"okunma_tarihi"`
	Title          string         `db:"baslik" json:"baslik"`
	Body           string         `db:"aciklama" json:"aciklama"`
	Priority       Priority       `db:"oncelik" json:"oncelik"`
	Departments    DepartmentRefs `db:"departmanlar" json:"departmanlar"`
}

// DepartmentDistribution aggregates announcements and reads per department.
type DepartmentDistribution struct {
	DepartmentID      int64  `db:"id" json:"id"`
	Name              string `db:"departman_adi" json:"departman_adi"`
	AnnouncementCount int64  `db:"duyuru_sayisi" json:"duyuruSayisi"`
	ReadCount         int64  `db:"okunma_sayisi" json:"okunmaSayisi"`
}
