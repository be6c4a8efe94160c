package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/duyuru-api/internal/dto"
	"github.com/noah-isme/duyuru-api/internal/models"
	"github.com/noah-isme/duyuru-api/pkg/response"
)

type reportService interface {
	GeneralStats(ctx context.Context) (*models.GeneralStats, error)
	AnnouncementReport(ctx context.Context) ([]models.AnnouncementReportRow, error)
	ReadDetail(ctx context.Context, rawID string) ([]models.ReadDetail, error)
	DepartmentDistribution(ctx context.Context) ([]models.DepartmentDistribution, error)
	ExportAnnouncementReport(ctx context.Context, format string) (*dto.ReportFile, error)
}

// ReportHandler serves the reporting endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// GeneralStats godoc
// @Summary Board statistics
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /api/raporlar/genel-istatistikler [get]
func (h *ReportHandler) GeneralStats(c *gin.Context) {
	stats, err := h.service.GeneralStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// AnnouncementReport godoc
// @Summary Per-announcement read counts
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /api/raporlar/duyuru-listesi [get]
func (h *ReportHandler) AnnouncementReport(c *gin.Context) {
	rows, err := h.service.AnnouncementReport(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, listMeta(len(rows)))
}

// ExportAnnouncementReport godoc
// @Summary Download the announcement report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /api/raporlar/duyuru-listesi/export [get]
func (h *ReportHandler) ExportAnnouncementReport(c *gin.Context) {
	file, err := h.service.ExportAnnouncementReport(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// DepartmentDistribution godoc
// @Summary Announcements and reads per department
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /api/raporlar/departman-dagilimi [get]
func (h *ReportHandler) DepartmentDistribution(c *gin.Context) {
	rows, err := h.service.DepartmentDistribution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, listMeta(len(rows)))
}

// ReadDetail godoc
// @Summary Readers of an announcement
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/raporlar/okuma-detaylari/{id} [get]
func (h *ReportHandler) ReadDetail(c *gin.Context) {
	details, err := h.service.ReadDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, listMeta(len(details)))
}
