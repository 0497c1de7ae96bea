package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vortechdev/enilai-gateway/internal/middleware"
	"github.com/vortechdev/enilai-gateway/internal/service"
	"github.com/vortechdev/enilai-gateway/pkg/response"
)

// DashboardHandler serves the role landing pages.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Admin godoc
// @Summary Admin landing page
// @Description Aggregate counts and per-class, per-major student distributions
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	dashboard, cached, err := h.service.Admin(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, dashboard, middleware.ExtractMeta(c))
}

// Overview godoc
// @Summary School-wide grading overview
// @Description Aggregate score counts and per-subject averages
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /admin/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	overview, cached, err := h.service.Overview(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, overview, middleware.ExtractMeta(c))
}

// Teacher godoc
// @Summary Teacher landing page
// @Description List the authenticated teacher's class assignments
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /teacher/dashboard [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	dashboard, err := h.service.Teacher(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard)
}
