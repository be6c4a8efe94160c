package models

import (
	"errors"
	"time"
)

// ErrEndBeforeStart reports an end date earlier than the effective start date.
var ErrEndBeforeStart = errors.New("duyuru_bitis_tarihi is before duyuru_baslangic_tarihi")

// Priority orders announcements; higher is more important.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// Valid reports whether the priority is within 1..3.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// Label returns the Turkish display label.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Düşük"
	case PriorityMedium:
		return "Orta"
	case PriorityHigh:
		return "Yüksek"
	default:
		return ""
	}
}

// AnnouncementStatus is the time-window state of an announcement.
type AnnouncementStatus string

const (
	StatusFuture  AnnouncementStatus = "gelecek"
	StatusActive  AnnouncementStatus = "aktif"
	StatusExpired AnnouncementStatus = "suresi_dolmus"
)

// StatusFilter narrows listings by expiry (the durum query parameter).
type StatusFilter string

const (
	FilterNone    StatusFilter = ""
	FilterCurrent StatusFilter = "guncel"
	FilterPast    StatusFilter = "gecmis"
)

// Valid reports whether the filter is one of the known values.
func (f StatusFilter) Valid() bool {
	switch f {
	case FilterNone, FilterCurrent, FilterPast:
		return true
	default:
		return false
	}
}

// Announcement represents a portal_duyuru row enriched for a specific reader.
type Announcement struct {
	ID          int64              `db:"id" json:"id"`
	Title       string             `db:"baslik" json:"baslik"`
	Body        string             `db:"aciklama" json:"aciklama"`
	Priority    Priority           `db:"oncelik" json:"oncelik"`
	CreatedBy   int64              `db:"created_by" json:"created_by"`
	CreatorName *string            `db:"olusturan_isim" json:"olusturan_isim"`
	CreatedAt   time.Time          `db:"olusturulma_tarihi" json:"olusturulma_tarihi"`
	UpdatedAt   *time.Time         `db:"guncellenme_tarihi" json:"guncellenme_tarihi,omitempty"`
	StartsAt    *time.Time         `db:"duyuru_baslangic_tarihi" json:"duyuru_baslangic_tarihi"`
	EndsAt      *time.Time         `db:"duyuru_bitis_tarihi" json:"duyuru_bitis_tarihi"`
	Read        bool               `db:"okundu" json:"okundu"`
	ReadAt      *time.Time         `db:"okunma_tarihi" json:"okunma_tarihi,omitempty"`
	Departments DepartmentRefs     `db:"departmanlar" json:"departmanlar"`
	Status      AnnouncementStatus `db:"-" json:"durum"`
}

// AnnouncementFilter scopes a listing to one reader.
type AnnouncementFilter struct {
	UserID     int64
	Privileged bool
	Status     StatusFilter
}

// AnnouncementWrite carries the validated values persisted by create and update.
type AnnouncementWrite struct {
	Title         string
	Body          string
	Priority      Priority
	CreatedBy     int64
	StartsAt      *time.Time
	EndsAt        *time.Time
	DepartmentIDs []int64
	// ReplaceDepartments is false when an update leaves the department set untouched.
	ReplaceDepartments bool
}

// MarkReadResult reports the outcome of recording a read receipt.
type MarkReadResult struct {
	AnnouncementID int64 `json:"duyuru_id"`
	Read           bool  `json:"okundu"`
	AlreadyRead    bool  `json:"zaten_okunmus"`
}
