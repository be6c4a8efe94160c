// Package authz holds the pure authorization and visibility predicates of the
// announcement board. Nothing here performs I/O.
package authz

import (
	"time"

	"github.com/samber/lo"

	"github.com/noah-isme/duyuru-api/internal/models"
)

var (
	// ManageRoles may create, update and delete announcements.
	ManageRoles = []string{models.RoleAdmin, models.RoleAnnouncementManager}
	// ReportRoles may read the reporting endpoints.
	ReportRoles = []string{models.RoleAdmin, models.RoleAnnouncementReporter}
	// PrivilegedRoles see every announcement regardless of department.
	PrivilegedRoles = []string{models.RoleAdmin, models.RoleAnnouncementManager, models.RoleAnnouncementReporter}
)

// Authorize reports whether the session holds at least one of the required roles.
// There is no implicit elevation: admin must be listed in required to pass.
func Authorize(sessionRoles, required []string) bool {
	return len(lo.Intersect(sessionRoles, required)) > 0
}

// IsPrivileged reports whether the roles bypass department scoping.
func IsPrivileged(roles []string) bool {
	return Authorize(roles, PrivilegedRoles)
}

// Visible reports whether an announcement assigned to announcementDepartments can be
// seen by a user with active memberships in userDepartments.
func Visible(privileged bool, userDepartments, announcementDepartments []int64) bool {
	if privileged {
		return true
	}
	return lo.Some(announcementDepartments, userDepartments)
}

// Status derives the time-window state at now. A missing start means already started;
// a missing end means the announcement never expires.
func Status(start, end *time.Time, now time.Time) models.AnnouncementStatus {
	if start != nil && now.Before(*start) {
		return models.StatusFuture
	}
	if end != nil && end.Before(now) {
		return models.StatusExpired
	}
	return models.StatusActive
}

// MatchesFilter applies the durum filter to an end timestamp using the same rule as the
// listing query: current means not yet expired, past means expired.
func MatchesFilter(filter models.StatusFilter, end *time.Time, now time.Time) bool {
	expired := end != nil && end.Before(now)
	switch filter {
	case models.FilterCurrent:
		return !expired
	case models.FilterPast:
		return expired
	default:
		return true
	}
}
