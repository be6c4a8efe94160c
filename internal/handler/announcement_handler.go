package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/duyuru-api/internal/dto"
	"github.com/noah-isme/duyuru-api/internal/models"
	"github.com/noah-isme/duyuru-api/internal/service"
	appErrors "github.com/noah-isme/duyuru-api/pkg/errors"
	"github.com/noah-isme/duyuru-api/pkg/response"
)

type announcementService interface {
	List(ctx context.Context, session models.Session, durum string) ([]models.Announcement, error)
	Get(ctx context.Context, session models.Session, id int64) (*models.Announcement, error)
	Create(ctx context.Context, session models.Session, req dto.CreateAnnouncementRequest) (int64, error)
	Update(ctx context.Context, session models.Session, id int64, req dto.UpdateAnnouncementRequest) error
	Delete(ctx context.Context, session models.Session, id int64) error
	MarkRead(ctx context.Context, session models.Session, rawID string) (*models.MarkReadResult, error)
}

// AnnouncementHandler exposes the announcement board endpoints.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler constructs the handler.
func NewAnnouncementHandler(svc announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc}
}

// List godoc
// @Summary List visible announcements
// @Description Announcements targeting the caller's departments, or all for privileged roles
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param durum query string false "guncel or gecmis"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/duyurular [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), session, c.Query("durum"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, listMeta(len(items)))
}

// Get godoc
// @Summary Get announcement
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/duyurular/{id} [get]
func (h *AnnouncementHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id, err := service.ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	announcement, err := h.service.Get(c.Request.Context(), session, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcement)
}

// Create godoc
// @Summary Create announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateAnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /api/duyurular [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcement payload"))
		return
	}
	id, err := h.service.Create(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Duyuru başarıyla oluşturuldu", dto.CreateAnnouncementResponse{ID: id})
}

// Update godoc
// @Summary Update announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Param payload body dto.UpdateAnnouncementRequest true "Announcement payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/duyurular/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id, err := service.ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid announcement payload"))
		return
	}
	if err := h.service.Update(c.Request.Context(), session, id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Duyuru başarıyla güncellendi", nil)
}

// Delete godoc
// @Summary Soft-delete announcement
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/duyurular/{id}/delete [patch]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id, err := service.ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), session, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Duyuru başarıyla silindi", nil)
}

// MarkRead godoc
// @Summary Mark announcement as read
// @Description Idempotent; repeated calls report zaten_okunmus
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/duyurular/{id}/oku [post]
func (h *AnnouncementHandler) MarkRead(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	result, err := h.service.MarkRead(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
