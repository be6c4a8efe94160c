package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/duyuru-api/internal/dto"
	"github.com/noah-isme/duyuru-api/internal/models"
	appErrors "github.com/noah-isme/duyuru-api/pkg/errors"
)

var (
	manager  = models.Session{UserID: 1, Sicil: "1000", Roles: []string{models.RoleAnnouncementManager}}
	reporter = models.Session{UserID: 2, Sicil: "2000", Roles: []string{models.RoleAnnouncementReporter}}
	memberA  = models.Session{UserID: 10, Sicil: "1010", Roles: []string{models.DefaultRole}}
	memberB  = models.Session{UserID: 11, Sicil: "1011"}
	admin    = models.Session{UserID: 3, Sicil: "3000", Roles: []string{models.RoleAdmin}}
)

type announcementFixture struct {
	svc      *AnnouncementService
	repo     *fakeAnnouncementRepo
	receipts *fakeReceiptRepo
	cache    *memoryCacheRepo
	metrics  *MetricsService
}

func newAnnouncementFixture() *announcementFixture {
	active := map[int64][]int64{memberA.UserID: {1}, memberB.UserID: {2}}
	repo := newFakeAnnouncementRepo(active)
	receipts := newFakeReceiptRepo()
	memberships := &fakeMembershipRepo{
		memberships: active,
		known:       map[int64]bool{1: true, 2: true, 3: true},
	}
	cacheRepo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(cacheRepo, metrics, time.Minute, nil, true)
	svc := NewAnnouncementService(repo, receipts, memberships, cache, metrics, nil, nil)
	return &announcementFixture{svc: svc, repo: repo, receipts: receipts, cache: cacheRepo, metrics: metrics}
}

func strPtr(v string) *string { return &v }

func assertCode(t *testing.T, err error, want *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected typed error, got %v", err)
	assert.Equal(t, want.Code, appErr.Code)
	assert.Equal(t, want.Status, appErr.Status)
}

func validCreate(departments ...int64) dto.CreateAnnouncementRequest {
	return dto.CreateAnnouncementRequest{Title: "Yemekhane", Body: "Menü değişti", Priority: 2, DepartmentIDs: departments}
}

func TestCreateWithoutDepartmentsWritesNothing(t *testing.T) {
	f := newAnnouncementFixture()

	_, err := f.svc.Create(context.Background(), manager, validCreate())
	assertCode(t, err, appErrors.ErrValidation)
	assert.Equal(t, 0, f.repo.writes)
}

func TestCreateValidation(t *testing.T) {
	f := newAnnouncementFixture()
	cases := map[string]dto.CreateAnnouncementRequest{
		"missing title":      {Body: "x", Priority: 1, DepartmentIDs: []int64{1}},
		"blank body":         {Title: "x", Body: "   ", Priority: 1, DepartmentIDs: []int64{1}},
		"priority too high":  {Title: "x", Body: "y", Priority: 4, DepartmentIDs: []int64{1}},
		"unknown department": {Title: "x", Body: "y", Priority: 1, DepartmentIDs: []int64{1, 99}},
		"end before start": {Title: "x", Body: "y", Priority: 1, DepartmentIDs: []int64{1},
			StartsAt: strPtr("2025-03-10"), EndsAt: strPtr("2025-03-01")},
		"malformed date": {Title: "x", Body: "y", Priority: 1, DepartmentIDs: []int64{1}, StartsAt: strPtr("10/03/2025")},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), manager, req)
			assertCode(t, err, appErrors.ErrValidation)
		})
	}
	assert.Equal(t, 0, f.repo.writes)
}

func TestCreateThenListReturnsSameDepartments(t *testing.T) {
	f := newAnnouncementFixture()

	req := validCreate(3, 1, 3)
	req.StartsAt = strPtr("")
	id, err := f.svc.Create(context.Background(), manager, req)
	require.NoError(t, err)

	items, err := f.svc.List(context.Background(), reporter, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.ElementsMatch(t, []int64{1, 3}, items[0].Departments.IDs())
	assert.Equal(t, manager.UserID, items[0].CreatedBy)
	assert.Equal(t, models.StatusActive, items[0].Status)
}

func TestGetAppliesDepartmentVisibility(t *testing.T) {
	f := newAnnouncementFixture()
	id, err := f.svc.Create(context.Background(), manager, validCreate(1, 3))
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), memberA, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = f.svc.Get(context.Background(), memberB, id)
	assertCode(t, err, appErrors.ErrNotFound)

	_, err = f.svc.Get(context.Background(), reporter, id)
	assert.NoError(t, err)
}

func TestListScopesByDepartmentMembership(t *testing.T) {
	f := newAnnouncementFixture()
	id, err := f.svc.Create(context.Background(), manager, validCreate(1, 3))
	require.NoError(t, err)

	cases := []struct {
		name    string
		session models.Session
		visible bool
	}{
		{name: "member of department 1", session: memberA, visible: true},
		{name: "member of department 2 only", session: memberB, visible: false},
		{name: "admin without memberships", session: admin, visible: true},
		{name: "reporter without memberships", session: reporter, visible: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := f.svc.List(context.Background(), tc.session, "")
			require.NoError(t, err)
			if !tc.visible {
				assert.Empty(t, items)
				return
			}
			require.Len(t, items, 1)
			assert.Equal(t, id, items[0].ID)
		})
	}
}

func TestListRejectsUnknownDurum(t *testing.T) {
	f := newAnnouncementFixture()
	_, err := f.svc.List(context.Background(), memberA, "yarin")
	assertCode(t, err, appErrors.ErrValidation)
}

func TestListFiltersByDurum(t *testing.T) {
	f := newAnnouncementFixture()
	yesterday := time.Now().Add(-24 * time.Hour)
	lastWeek := time.Now().Add(-7 * 24 * time.Hour)
	f.repo.seed(models.Announcement{ID: 1, Title: "A", Priority: 1, StartsAt: &lastWeek, EndsAt: &yesterday, Departments: departmentRefs([]int64{1})})
	f.repo.seed(models.Announcement{ID: 2, Title: "B", Priority: 1, StartsAt: &lastWeek, Departments: departmentRefs([]int64{1})})

	current, err := f.svc.List(context.Background(), memberA, "guncel")
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, int64(2), current[0].ID)
	assert.Equal(t, models.StatusActive, current[0].Status)

	past, err := f.svc.List(context.Background(), memberA, "gecmis")
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, int64(1), past[0].ID)
	assert.Equal(t, models.StatusExpired, past[0].Status)

	all, err := f.svc.List(context.Background(), memberA, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateMissingAnnouncement(t *testing.T) {
	f := newAnnouncementFixture()
	departments := []int64{1}

	err := f.svc.Update(context.Background(), manager, 404, dto.UpdateAnnouncementRequest{Title: "x", Body: "y", Priority: 1, DepartmentIDs: &departments})
	assertCode(t, err, appErrors.ErrNotFound)
	assert.Equal(t, 0, f.repo.writes)
}

func TestUpdateDepartments(t *testing.T) {
	f := newAnnouncementFixture()
	id, err := f.svc.Create(context.Background(), manager, validCreate(1, 3))
	require.NoError(t, err)

	empty := []int64{}
	err = f.svc.Update(context.Background(), manager, id, dto.UpdateAnnouncementRequest{Title: "x", Body: "y", Priority: 1, DepartmentIDs: &empty})
	assertCode(t, err, appErrors.ErrValidation)

	require.NoError(t, f.svc.Update(context.Background(), manager, id, dto.UpdateAnnouncementRequest{Title: "Yeni", Body: "Metin", Priority: 3}))
	got, err := f.svc.Get(context.Background(), reporter, id)
	require.NoError(t, err)
	assert.Equal(t, "Yeni", got.Title)
	assert.Equal(t, []int64{1, 3}, got.Departments.IDs(), "nil list keeps links")

	replacement := []int64{2, 2}
	require.NoError(t, f.svc.Update(context.Background(), manager, id, dto.UpdateAnnouncementRequest{Title: "Yeni", Body: "Metin", Priority: 3, DepartmentIDs: &replacement}))
	got, err = f.svc.Get(context.Background(), reporter, id)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, got.Departments.IDs())
}

func TestUpdateRejectsEndBeforeStoredStart(t *testing.T) {
	f := newAnnouncementFixture()
	req := validCreate(1)
	req.StartsAt = strPtr("2030-05-20")
	id, err := f.svc.Create(context.Background(), manager, req)
	require.NoError(t, err)

	err = f.svc.Update(context.Background(), manager, id, dto.UpdateAnnouncementRequest{Title: "x", Body: "y", Priority: 1, EndsAt: strPtr("2030-05-10")})
	assertCode(t, err, appErrors.ErrValidation)

	got, err := f.svc.Get(context.Background(), manager, id)
	require.NoError(t, err)
	assert.Nil(t, got.EndsAt)
	assert.Equal(t, "Yemekhane", got.Title)
	assert.Equal(t, 1, f.repo.writes)

	require.NoError(t, f.svc.Update(context.Background(), manager, id, dto.UpdateAnnouncementRequest{Title: "x", Body: "y", Priority: 1, EndsAt: strPtr("2030-05-30")}))
	got, err = f.svc.Get(context.Background(), manager, id)
	require.NoError(t, err)
	require.NotNil(t, got.EndsAt)
	assert.Equal(t, 20, got.StartsAt.Day())
}

func TestCreateRejectsPastEndWithoutStart(t *testing.T) {
	f := newAnnouncementFixture()
	f.svc.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local) }

	past := validCreate(1)
	past.EndsAt = strPtr("2025-02-01")
	_, err := f.svc.Create(context.Background(), manager, past)
	assertCode(t, err, appErrors.ErrValidation)
	assert.Equal(t, 0, f.repo.writes)

	future := validCreate(1)
	future.EndsAt = strPtr("2025-04-01")
	_, err = f.svc.Create(context.Background(), manager, future)
	require.NoError(t, err)
}

func TestDeleteIsSoftAndNotRepeatable(t *testing.T) {
	f := newAnnouncementFixture()
	id, err := f.svc.Create(context.Background(), manager, validCreate(1))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), manager, id))
	assertCode(t, f.svc.Delete(context.Background(), manager, id), appErrors.ErrNotFound)

	_, err = f.svc.Get(context.Background(), reporter, id)
	assertCode(t, err, appErrors.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.writes.WithLabelValues(ActionDelete)))
}

func TestMarkReadIsIdempotent(t *testing.T) {
	f := newAnnouncementFixture()
	id, err := f.svc.Create(context.Background(), manager, validCreate(1))
	require.NoError(t, err)

	first, err := f.svc.MarkRead(context.Background(), memberA, "1")
	require.NoError(t, err)
	assert.Equal(t, id, first.AnnouncementID)
	assert.True(t, first.Read)
	assert.False(t, first.AlreadyRead)

	second, err := f.svc.MarkRead(context.Background(), memberA, "1")
	require.NoError(t, err)
	assert.True(t, second.AlreadyRead)
	assert.Equal(t, 1, f.receipts.count())
}

func TestMarkReadRejectsBadInput(t *testing.T) {
	f := newAnnouncementFixture()
	_, err := f.svc.Create(context.Background(), manager, validCreate(1))
	require.NoError(t, err)

	for _, raw := range []string{"abc", "0", "-3", ""} {
		_, err := f.svc.MarkRead(context.Background(), memberA, raw)
		assertCode(t, err, appErrors.ErrValidation)
	}

	_, err = f.svc.MarkRead(context.Background(), memberA, "999")
	assertCode(t, err, appErrors.ErrNotFound)

	_, err = f.svc.MarkRead(context.Background(), memberB, "1")
	assertCode(t, err, appErrors.ErrNotFound)
	assert.Equal(t, 0, f.receipts.count())
}

func TestConcurrentMarkReadCountsOnce(t *testing.T) {
	f := newAnnouncementFixture()
	_, err := f.svc.Create(context.Background(), manager, validCreate(1))
	require.NoError(t, err)

	const callers = 25
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.svc.MarkRead(context.Background(), memberA, "1")
			if !assert.NoError(t, err) {
				return
			}
			if !result.AlreadyRead {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fresh)
	assert.Equal(t, 1, f.receipts.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.readReceipts.WithLabelValues(ReceiptNew)))
	assert.Equal(t, float64(callers-1), testutil.ToFloat64(f.metrics.readReceipts.WithLabelValues(ReceiptDuplicate)))
}

func TestWritesAndNewReadsInvalidateReportCache(t *testing.T) {
	f := newAnnouncementFixture()
	id, err := f.svc.Create(context.Background(), manager, validCreate(1))
	require.NoError(t, err)
	require.Len(t, f.cache.invalidated, 1)

	_, err = f.svc.MarkRead(context.Background(), memberA, "1")
	require.NoError(t, err)
	_, err = f.svc.MarkRead(context.Background(), memberA, "1")
	require.NoError(t, err)
	assert.Len(t, f.cache.invalidated, 2, "duplicate reads leave the cache alone")

	require.NoError(t, f.svc.Delete(context.Background(), manager, id))
	assert.Equal(t, []string{ReportCachePrefix, ReportCachePrefix, ReportCachePrefix}, f.cache.invalidated)
}

func TestParseDate(t *testing.T) {
	parsed, err := parseDate(strPtr("2025-03-10T08:30:00Z"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC), parsed.UTC())

	parsed, err = parseDate(strPtr("2025-03-10T08:30"))
	require.NoError(t, err)
	assert.Equal(t, 8, parsed.Hour())

	parsed, err = parseDate(strPtr("  "))
	require.NoError(t, err)
	assert.Nil(t, parsed)

	parsed, err = parseDate(nil)
	require.NoError(t, err)
	assert.Nil(t, parsed)
}
