package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/duyuru-api/internal/models"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name     string
		roles    []string
		required []string
		want     bool
	}{
		{"manager may manage", []string{"duyuru_yonetimi"}, ManageRoles, true},
		{"admin listed explicitly", []string{"admin"}, ManageRoles, true},
		{"reporter may not manage", []string{"duyuru_raporlama"}, ManageRoles, false},
		{"manager may not report", []string{"duyuru_yonetimi"}, ReportRoles, false},
		{"no roles", nil, ReportRoles, false},
		{"admin gets no implicit elevation", []string{"admin"}, []string{"something_else"}, false},
		{"empty requirement never passes", []string{"admin"}, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Authorize(tc.roles, tc.required))
		})
	}
}

func TestIsPrivileged(t *testing.T) {
	assert.True(t, IsPrivileged([]string{"kullanici", "duyuru_raporlama"}))
	assert.True(t, IsPrivileged([]string{"admin"}))
	assert.False(t, IsPrivileged([]string{"kullanici"}))
	assert.False(t, IsPrivileged(nil))
}

func TestVisible(t *testing.T) {
	announcement := []int64{1, 3}

	assert.True(t, Visible(false, []int64{1}, announcement), "member of department 1")
	assert.True(t, Visible(false, []int64{2, 3}, announcement), "member of department 3")
	assert.False(t, Visible(false, []int64{2}, announcement), "member of department 2 only")
	assert.False(t, Visible(false, nil, announcement), "no memberships")
	assert.True(t, Visible(true, nil, announcement), "privileged ignores departments")
	assert.False(t, Visible(false, []int64{1}, nil), "announcement without departments")
}

func TestStatus(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	assert.Equal(t, models.StatusActive, Status(nil, nil, now))
	assert.Equal(t, models.StatusActive, Status(&past, &future, now))
	assert.Equal(t, models.StatusFuture, Status(&future, nil, now))
	assert.Equal(t, models.StatusExpired, Status(&past, &past, now))
	assert.Equal(t, models.StatusExpired, Status(nil, &past, now))
	assert.Equal(t, models.StatusActive, Status(nil, &now, now), "end equal to now is still active")
}

func TestMatchesFilter(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, MatchesFilter(models.FilterCurrent, &past, now))
	assert.True(t, MatchesFilter(models.FilterPast, &past, now))
	assert.True(t, MatchesFilter(models.FilterCurrent, &future, now))
	assert.True(t, MatchesFilter(models.FilterCurrent, nil, now))
	assert.False(t, MatchesFilter(models.FilterPast, nil, now))
	assert.True(t, MatchesFilter(models.FilterNone, &past, now))
}
