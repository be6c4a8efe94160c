package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/duyuru-api/internal/authz"
	"github.com/noah-isme/duyuru-api/internal/middleware"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth          *AuthHandler
	Departments   *DepartmentHandler
	Announcements *AnnouncementHandler
	Reports       *ReportHandler
	Activity      *ActivityHandler
	Metrics       *MetricsHandler
}

// RegisterRoutes mounts the public, session and role-gated routes. requireSession
// must authenticate the request and store claims under middleware.ContextUserKey.
func RegisterRoutes(r gin.IRouter, h Handlers, requireSession gin.HandlerFunc, exposeMetrics bool) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if exposeMetrics {
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	auth := r.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.GET("/me", requireSession, h.Auth.Me)

	api := r.Group("/api", requireSession)
	api.GET("/departmanlar", h.Departments.List)
	api.GET("/kullanici/aktiviteler", h.Activity.Recent)

	announcements := api.Group("/duyurular")
	announcements.GET("", h.Announcements.List)
	announcements.GET("/kullanici-aktiviteleri", h.Activity.Detail)
	announcements.GET("/:id", h.Announcements.Get)
	announcements.POST("/:id/oku", h.Announcements.MarkRead)

	manage := middleware.RequireRoles(authz.ManageRoles...)
	announcements.POST("", manage, h.Announcements.Create)
	announcements.PUT("/:id", manage, h.Announcements.Update)
	announcements.PATCH("/:id/delete", manage, h.Announcements.Delete)

	reports := api.Group("/raporlar", middleware.RequireRoles(authz.ReportRoles...))
	reports.GET("/genel-istatistikler", h.Reports.GeneralStats)
	reports.GET("/duyuru-listesi", h.Reports.AnnouncementReport)
	reports.GET("/duyuru-listesi/export", h.Reports.ExportAnnouncementReport)
	reports.GET("/departman-dagilimi", h.Reports.DepartmentDistribution)
	reports.GET("/okuma-detaylari/:id", h.Reports.ReadDetail)
}
