package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/duyuru-api/internal/models"
	"github.com/noah-isme/duyuru-api/pkg/response"
)

type activityService interface {
	UserActivity(ctx context.Context, session models.Session) ([]models.UserActivity, error)
	UserActivityDetail(ctx context.Context, session models.Session) ([]models.Announcement, error)
}

// ActivityHandler serves the caller's own read history.
type ActivityHandler struct {
	service activityService
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(svc activityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// Recent godoc
// @Summary Recent reads of the caller
// @Tags Activity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /api/kullanici/aktiviteler [get]
func (h *ActivityHandler) Recent(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	activity, err := h.service.UserActivity(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, listMeta(len(activity)))
}

// Detail godoc
// @Summary Announcements read by the caller
// @Tags Activity
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /api/duyurular/kullanici-aktiviteleri [get]
func (h *ActivityHandler) Detail(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.UserActivityDetail(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, listMeta(len(items)))
}
