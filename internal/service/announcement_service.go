package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/duyuru-api/internal/authz"
	"github.com/noah-isme/duyuru-api/internal/dto"
	"github.com/noah-isme/duyuru-api/internal/models"
	appErrors "github.com/noah-isme/duyuru-api/pkg/errors"
)

// Announcement write actions, used as metric labels.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error)
	FindByID(ctx context.Context, id, userID int64) (*models.Announcement, error)
	Create(ctx context.Context, write models.AnnouncementWrite) (int64, error)
	Update(ctx context.Context, id int64, write models.AnnouncementWrite) error
	SoftDelete(ctx context.Context, id int64) error
}

type readReceiptRepository interface {
	Insert(ctx context.Context, announcementID, userID int64) (bool, error)
}

type membershipRepository interface {
	ActiveIDsForUser(ctx context.Context, userID int64) ([]int64, error)
	FindMissing(ctx context.Context, ids []int64) ([]int64, error)
}

// AnnouncementService implements the announcement store and read-receipt tracking.
type AnnouncementService struct {
	repo        announcementRepository
	receipts    readReceiptRepository
	departments membershipRepository
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAnnouncementService wires dependencies for announcement use cases.
func NewAnnouncementService(repo announcementRepository, receipts readReceiptRepository, departments membershipRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{
		repo:        repo,
		receipts:    receipts,
		departments: departments,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// ParseID converts a path parameter into a positive identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}

// List returns the announcements visible to the session, optionally narrowed by durum.
func (s *AnnouncementService) List(ctx context.Context, session models.Session, durum string) ([]models.Announcement, error) {
	filter := models.StatusFilter(strings.TrimSpace(durum))
	if !filter.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "durum must be guncel or gecmis")
	}

	items, err := s.repo.List(ctx, models.AnnouncementFilter{
		UserID:     session.UserID,
		Privileged: authz.IsPrivileged(session.Roles),
		Status:     filter,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list announcements")
	}

	now := s.now()
	for i := range items {
		items[i].Status = authz.Status(items[i].StartsAt, items[i].EndsAt, now)
	}
	return items, nil
}

// Get returns one announcement if it exists and is visible to the session.
func (s *AnnouncementService) Get(ctx context.Context, session models.Session, id int64) (*models.Announcement, error) {
	announcement, err := s.repo.FindByID(ctx, id, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Internal(err, "failed to load announcement")
	}

	privileged := authz.IsPrivileged(session.Roles)
	var memberships []int64
	if !privileged {
		memberships, err = s.departments.ActiveIDsForUser(ctx, session.UserID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load departments")
		}
	}
	if !authz.Visible(privileged, memberships, announcement.Departments.IDs()) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
	}

	announcement.Status = authz.Status(announcement.StartsAt, announcement.EndsAt, s.now())
	return announcement, nil
}

// Create validates and persists a new announcement with its department links.
func (s *AnnouncementService) Create(ctx context.Context, session models.Session, req dto.CreateAnnouncementRequest) (int64, error) {
	if err := s.validator.Struct(req); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "baslik, aciklama, oncelik (1-3) and at least one departman are required")
	}

	write, err := s.buildWrite(ctx, req.Title, req.Body, req.Priority, req.StartsAt, req.EndsAt, req.DepartmentIDs)
	if err != nil {
		return 0, err
	}
	// The store starts undated announcements now.
	if write.StartsAt == nil && write.EndsAt != nil && write.EndsAt.Before(s.now()) {
		return 0, endBeforeStartError()
	}
	write.CreatedBy = session.UserID

	id, err := s.repo.Create(ctx, write)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to create announcement")
	}

	s.afterWrite(ctx, ActionCreate, id, session)
	return id, nil
}

// Update rewrites a non-deleted announcement. A nil department list keeps the current links.
func (s *AnnouncementService) Update(ctx context.Context, session models.Session, id int64, req dto.UpdateAnnouncementRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "baslik, aciklama and oncelik (1-3) are required")
	}

	var departmentIDs []int64
	replace := req.DepartmentIDs != nil
	if replace {
		departmentIDs = *req.DepartmentIDs
		if len(departmentIDs) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "at least one departman is required")
		}
	}

	write, err := s.buildWrite(ctx, req.Title, req.Body, req.Priority, req.StartsAt, req.EndsAt, departmentIDs)
	if err != nil {
		return err
	}
	write.ReplaceDepartments = replace

	if err := s.repo.Update(ctx, id, write); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		if errors.Is(err, models.ErrEndBeforeStart) {
			return endBeforeStartError()
		}
		return appErrors.Internal(err, "failed to update announcement")
	}

	s.afterWrite(ctx, ActionUpdate, id, session)
	return nil
}

// Delete soft-deletes an announcement. Already deleted announcements are not found.
func (s *AnnouncementService) Delete(ctx context.Context, session models.Session, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Internal(err, "failed to delete announcement")
	}
	s.afterWrite(ctx, ActionDelete, id, session)
	return nil
}

// MarkRead records that the session user read the announcement. Repeated calls succeed
// and report AlreadyRead.
func (s *AnnouncementService) MarkRead(ctx context.Context, session models.Session, rawID string) (*models.MarkReadResult, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, session, id); err != nil {
		return nil, err
	}

	inserted, err := s.receipts.Insert(ctx, id, session.UserID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to record read receipt")
	}
	s.metrics.RecordReadReceipt(inserted)
	if inserted {
		s.cache.Invalidate(ctx, ReportCachePrefix)
	}

	return &models.MarkReadResult{AnnouncementID: id, Read: true, AlreadyRead: !inserted}, nil
}

func (s *AnnouncementService) buildWrite(ctx context.Context, title, body string, priority int, startsRaw, endsRaw *string, departmentIDs []int64) (models.AnnouncementWrite, error) {
	write := models.AnnouncementWrite{
		Title:    strings.TrimSpace(title),
		Body:     strings.TrimSpace(body),
		Priority: models.Priority(priority),
	}
	if write.Title == "" || write.Body == "" {
		return write, appErrors.Clone(appErrors.ErrValidation, "baslik and aciklama must not be blank")
	}
	if !write.Priority.Valid() {
		return write, appErrors.Clone(appErrors.ErrValidation, "oncelik must be between 1 and 3")
	}

	var err error
	if write.StartsAt, err = parseDate(startsRaw); err != nil {
		return write, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duyuru_baslangic_tarihi")
	}
	if write.EndsAt, err = parseDate(endsRaw); err != nil {
		return write, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duyuru_bitis_tarihi")
	}
	if write.StartsAt != nil && write.EndsAt != nil && write.EndsAt.Before(*write.StartsAt) {
		return write, endBeforeStartError()
	}

	if len(departmentIDs) > 0 {
		write.DepartmentIDs = lo.Uniq(departmentIDs)
		if lo.SomeBy(write.DepartmentIDs, func(id int64) bool { return id <= 0 }) {
			return write, appErrors.Clone(appErrors.ErrValidation, "departman ids must be positive")
		}
		missing, err := s.departments.FindMissing(ctx, write.DepartmentIDs)
		if err != nil {
			return write, appErrors.Internal(err, "failed to check departments")
		}
		if len(missing) > 0 {
			return write, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown departman ids: %v", missing))
		}
	}
	return write, nil
}

func endBeforeStartError() error {
	return appErrors.Clone(appErrors.ErrValidation, "duyuru_bitis_tarihi must not be before duyuru_baslangic_tarihi")
}

func (s *AnnouncementService) afterWrite(ctx context.Context, action string, id int64, session models.Session) {
	s.metrics.RecordAnnouncementWrite(action)
	s.cache.Invalidate(ctx, ReportCachePrefix)
	s.logger.Info("announcement "+action+"d",
		zap.Int64("announcement_id", id),
		zap.Int64("user_id", session.UserID),
	)
}

// parseDate accepts RFC3339 or local date/time layouts. Nil or blank means absent.
func parseDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		parsed, err := time.ParseInLocation(layout, value, time.Local)
		if err == nil {
			return &parsed, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
