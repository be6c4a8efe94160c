package models

import "github.com/lib/pq"

// Role names granted through gk_yetkilendirme. Roles are free-form strings; these are the
// ones the announcement board checks.
const (
	RoleAdmin                = "admin"
	RoleAnnouncementManager  = "duyuru_yonetimi"
	RoleAnnouncementReporter = "duyuru_raporlama"

	// DefaultRole is reported as the primary role of users without any grant.
	DefaultRole = "kullanici"
)

// User represents a portal_user row together with its aggregated role names.
type User struct {
	ID           int64          `db:"id" json:"id"`
	Sicil        string         `db:"sicil" json:"sicil"`
	Name         string         `db:"user_name" json:"isim"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Deleted      bool           `db:"is_delete" json:"-"`
	Roles        pq.StringArray `db:"yetkiler" json:"yetkiler"`
}

// PrimaryRole returns the first granted role. It is display metadata only.
func (u *User) PrimaryRole() string {
	if u == nil || len(u.Roles) == 0 {
		return DefaultRole
	}
	return u.Roles[0]
}

// RoleNames returns the granted roles as a plain slice, never nil.
func (u *User) RoleNames() []string {
	if u == nil || len(u.Roles) == 0 {
		return []string{}
	}
	out := make([]string, len(u.Roles))
	copy(out, u.Roles)
	return out
}
