package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/noah-isme/duyuru-api/internal/authz"
	"github.com/noah-isme/duyuru-api/internal/models"
	appErrors "github.com/noah-isme/duyuru-api/pkg/errors"
)

// fakeAnnouncementRepo mirrors the SQL store: listings are scoped by the active
// memberships of the reader unless the filter is privileged.
type fakeAnnouncementRepo struct {
	mu          sync.Mutex
	items       map[int64]*models.Announcement
	deleted     map[int64]bool
	memberships map[int64][]int64
	nextID      int64
	writes      int
	err         error
}

func newFakeAnnouncementRepo(memberships map[int64][]int64) *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{items: map[int64]*models.Announcement{}, deleted: map[int64]bool{}, memberships: memberships}
}

func departmentRefs(ids []int64) models.DepartmentRefs {
	sorted := lo.Uniq(ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	refs := models.DepartmentRefs{}
	for _, id := range sorted {
		refs = append(refs, models.DepartmentRef{ID: id, Name: fmt.Sprintf("Departman %d", id)})
	}
	return refs
}

func (r *fakeAnnouncementRepo) seed(a models.Announcement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := a
	r.items[a.ID] = &copied
	if a.ID > r.nextID {
		r.nextID = a.ID
	}
}

func (r *fakeAnnouncementRepo) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []models.Announcement{}
	for id, item := range r.items {
		if r.deleted[id] || !authz.MatchesFilter(filter.Status, item.EndsAt, time.Now()) {
			continue
		}
		if !authz.Visible(filter.Privileged, r.memberships[filter.UserID], item.Departments.IDs()) {
			continue
		}
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

func (r *fakeAnnouncementRepo) FindByID(ctx context.Context, id, userID int64) (*models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || r.deleted[id] {
		return nil, sql.ErrNoRows
	}
	copied := *item
	return &copied, nil
}

func (r *fakeAnnouncementRepo) Create(ctx context.Context, write models.AnnouncementWrite) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.nextID++
	r.writes++
	start := write.StartsAt
	if start == nil {
		now := time.Now()
		start = &now
	}
	r.items[r.nextID] = &models.Announcement{
		ID:          r.nextID,
		Title:       write.Title,
		Body:        write.Body,
		Priority:    write.Priority,
		CreatedBy:   write.CreatedBy,
		StartsAt:    start,
		EndsAt:      write.EndsAt,
		Departments: departmentRefs(write.DepartmentIDs),
	}
	return r.nextID, nil
}

func (r *fakeAnnouncementRepo) Update(ctx context.Context, id int64, write models.AnnouncementWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || r.deleted[id] {
		return sql.ErrNoRows
	}
	start := write.StartsAt
	if start == nil {
		start = item.StartsAt
	}
	if start != nil && write.EndsAt != nil && write.EndsAt.Before(*start) {
		return models.ErrEndBeforeStart
	}
	r.writes++
	item.Title = write.Title
	item.Body = write.Body
	item.Priority = write.Priority
	item.EndsAt = write.EndsAt
	if write.StartsAt != nil {
		item.StartsAt = write.StartsAt
	}
	if write.ReplaceDepartments {
		item.Departments = departmentRefs(write.DepartmentIDs)
	}
	return nil
}

func (r *fakeAnnouncementRepo) SoftDelete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok || r.deleted[id] {
		return sql.ErrNoRows
	}
	r.writes++
	r.deleted[id] = true
	return nil
}

type fakeReceiptRepo struct {
	mu       sync.Mutex
	receipts map[[2]int64]bool
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: map[[2]int64]bool{}}
}

func (r *fakeReceiptRepo) Insert(ctx context.Context, announcementID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int64{userID, announcementID}
	if r.receipts[key] {
		return false, nil
	}
	r.receipts[key] = true
	return true, nil
}

func (r *fakeReceiptRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.receipts)
}

type fakeMembershipRepo struct {
	memberships map[int64][]int64
	known       map[int64]bool
}

func (r *fakeMembershipRepo) ActiveIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	return r.memberships[userID], nil
}

func (r *fakeMembershipRepo) FindMissing(ctx context.Context, ids []int64) ([]int64, error) {
	return lo.Filter(ids, func(id int64, _ int) bool { return !r.known[id] }), nil
}

type memoryCacheRepo struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (r *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = raw
	return nil
}

func (r *memoryCacheRepo) DeletePrefix(ctx context.Context, prefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, prefix)
	for key := range r.entries {
		if strings.HasPrefix(key, prefix) {
			delete(r.entries, key)
		}
	}
	return nil
}
