package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/duyuru-api/internal/authz"
	"github.com/noah-isme/duyuru-api/internal/dto"
	"github.com/noah-isme/duyuru-api/internal/models"
	appErrors "github.com/noah-isme/duyuru-api/pkg/errors"
	"github.com/noah-isme/duyuru-api/pkg/export"
)

// ReportCachePrefix namespaces every cached report; announcement writes and new reads drop it.
const ReportCachePrefix = "reports:"

const (
	cacheKeyGeneral      = ReportCachePrefix + "general"
	cacheKeyAnnouncement = ReportCachePrefix + "announcements"
	cacheKeyDepartments  = ReportCachePrefix + "departments"
	cacheKeyReadDetail   = ReportCachePrefix + "read-detail:"
)

const defaultActivityLimit = 50

type reportRepository interface {
	GeneralStats(ctx context.Context) (*models.GeneralStats, error)
	AnnouncementReport(ctx context.Context) ([]models.AnnouncementReportRow, error)
	ReadDetail(ctx context.Context, announcementID int64) ([]models.ReadDetail, error)
	UserActivity(ctx context.Context, userID int64, limit int) ([]models.UserActivity, error)
	UserActivityDetail(ctx context.Context, userID int64) ([]models.Announcement, error)
	DepartmentDistribution(ctx context.Context) ([]models.DepartmentDistribution, error)
}

// Exporter renders a dataset into a downloadable document.
type Exporter interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset) ([]byte, error)
}

// ReportService serves the read-only reporting aggregates.
type ReportService struct {
	repo          reportRepository
	cache         *CacheService
	exporters     map[dto.ExportFormat]Exporter
	activityLimit int
	logger        *zap.Logger
	now           func() time.Time
}

// NewReportService constructs the reporting service with CSV and PDF exporters.
func NewReportService(repo reportRepository, cache *CacheService, activityLimit int, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if activityLimit <= 0 {
		activityLimit = defaultActivityLimit
	}
	return &ReportService{
		repo:  repo,
		cache: cache,
		exporters: map[dto.ExportFormat]Exporter{
			dto.ExportFormatCSV: export.NewCSVExporter(),
			dto.ExportFormatPDF: export.NewPDFExporter(),
		},
		activityLimit: activityLimit,
		logger:        logger,
		now:           time.Now,
	}
}

// GeneralStats returns the board-wide totals.
func (s *ReportService) GeneralStats(ctx context.Context) (*models.GeneralStats, error) {
	var cached models.GeneralStats
	if s.cache.Get(ctx, cacheKeyGeneral, &cached) {
		return &cached, nil
	}
	stats, err := s.repo.GeneralStats(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load statistics")
	}
	s.cache.Set(ctx, cacheKeyGeneral, stats)
	return stats, nil
}

// AnnouncementReport lists announcements by read count.
func (s *ReportService) AnnouncementReport(ctx context.Context) ([]models.AnnouncementReportRow, error) {
	var cached []models.AnnouncementReportRow
	if s.cache.Get(ctx, cacheKeyAnnouncement, &cached) {
		return cached, nil
	}
	rows, err := s.repo.AnnouncementReport(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load announcement report")
	}
	s.cache.Set(ctx, cacheKeyAnnouncement, rows)
	return rows, nil
}

// ReadDetail lists who read the announcement identified by rawID.
func (s *ReportService) ReadDetail(ctx context.Context, rawID string) ([]models.ReadDetail, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	key := cacheKeyReadDetail + strconv.FormatInt(id, 10)
	var cached []models.ReadDetail
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	details, err := s.repo.ReadDetail(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load read detail")
	}
	s.cache.Set(ctx, key, details)
	return details, nil
}

// DepartmentDistribution aggregates announcements and reads per department.
func (s *ReportService) DepartmentDistribution(ctx context.Context) ([]models.DepartmentDistribution, error) {
	var cached []models.DepartmentDistribution
	if s.cache.Get(ctx, cacheKeyDepartments, &cached) {
		return cached, nil
	}
	rows, err := s.repo.DepartmentDistribution(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load department distribution")
	}
	s.cache.Set(ctx, cacheKeyDepartments, rows)
	return rows, nil
}

// UserActivity returns the session user's most recent reads.
func (s *ReportService) UserActivity(ctx context.Context, session models.Session) ([]models.UserActivity, error) {
	activity, err := s.repo.UserActivity(ctx, session.UserID, s.activityLimit)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load activity")
	}
	return activity, nil
}

// UserActivityDetail returns every announcement the session user has read.
func (s *ReportService) UserActivityDetail(ctx context.Context, session models.Session) ([]models.Announcement, error) {
	items, err := s.repo.UserActivityDetail(ctx, session.UserID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load activity")
	}
	now := s.now()
	for i := range items {
		items[i].Status = authz.Status(items[i].StartsAt, items[i].EndsAt, now)
	}
	return items, nil
}

// ExportAnnouncementReport renders the announcement report as CSV or PDF.
func (s *ReportService) ExportAnnouncementReport(ctx context.Context, format string) (*dto.ReportFile, error) {
	exportFormat := dto.ExportFormat(strings.ToLower(strings.TrimSpace(format)))
	if exportFormat == "" {
		exportFormat = dto.ExportFormatCSV
	}
	exporter, ok := s.exporters[exportFormat]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	rows, err := s.AnnouncementReport(ctx)
	if err != nil {
		return nil, err
	}

	generated := s.now()
	data, err := exporter.Render(announcementDataset(rows, generated))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}
	s.logger.Info("announcement report exported", zap.String("format", string(exportFormat)), zap.Int("rows", len(rows)))

	return &dto.ReportFile{
		Filename:    fmt.Sprintf("duyuru-raporu-%s.%s", generated.Format("20060102-1504"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Data:        data,
	}, nil
}

func announcementDataset(rows []models.AnnouncementReportRow, generated time.Time) export.Dataset {
	data := export.Dataset{
		Title:   "Duyuru Okunma Raporu - " + generated.Format("02.01.2006 15:04"),
		Headers: []string{"ID", "Başlık", "Öncelik", "Başlangıç", "Bitiş", "Oluşturan", "Departmanlar", "Okunma"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		creator := ""
		if row.CreatorName != nil {
			creator = *row.CreatorName
		}
		data.Rows = append(data.Rows, []string{
			strconv.FormatInt(row.ID, 10),
			row.Title,
			row.Priority.Label(),
			formatDate(row.StartsAt),
			formatDate(row.EndsAt),
			creator,
			strings.Join(row.Departments.Names(), ", "),
			strconv.FormatInt(row.ReadCount, 10),
		})
	}
	return data
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02.01.2006")
}
