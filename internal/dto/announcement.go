package dto

// CreateAnnouncementRequest is the payload of POST /api/duyurular.
// Dates accept RFC3339 timestamps or YYYY-MM-DD; empty strings mean absent.
type CreateAnnouncementRequest struct {
	Title         string  `json:"baslik" validate:"required"`
	Body          string  `json:"aciklama" validate:"required"`
	Priority      int     `json:"oncelik" validate:"required,min=1,max=3"`
	DepartmentIDs []int64 `json:"departmanlar" validate:"required,min=1,dive,gt=0"`
	StartsAt      *string `json:"duyuru_baslangic_tarihi"`
	EndsAt        *string `json:"duyuru_bitis_tarihi"`
}

// UpdateAnnouncementRequest is the payload of PUT /api/duyurular/:id.
// A nil DepartmentIDs leaves the current department set untouched.
type UpdateAnnouncementRequest struct {
	Title         string   `json:"baslik" validate:"required"`
	Body          string   `json:"aciklama" validate:"required"`
	Priority      int      `json:"oncelik" validate:"required,min=1,max=3"`
	DepartmentIDs *[]int64 `json:"departmanlar"`
	StartsAt      *string  `json:"duyuru_baslangic_tarihi"`
	EndsAt        *string  `json:"duyuru_bitis_tarihi"`
}

// CreateAnnouncementResponse echoes the new identifier.
type CreateAnnouncementResponse struct {
	ID int64 `json:"duyuruId"`
}
