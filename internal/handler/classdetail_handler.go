package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vortechdev/enilai-gateway/internal/service"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
	"github.com/vortechdev/enilai-gateway/pkg/response"
)

// ClassDetailHandler serves the teacher's per-assignment page.
type ClassDetailHandler struct {
	service *service.ClassDetailService
}

// NewClassDetailHandler creates a new handler.
func NewClassDetailHandler(svc *service.ClassDetailService) *ClassDetailHandler {
	return &ClassDetailHandler{service: svc}
}

// Detail godoc
// @Summary Teacher class detail
// @Description Assignment with class roster, recorded scores and score stats
// @Tags Dashboard
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /teacher/classes/{id} [get]
func (h *ClassDetailHandler) Detail(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// SubmitScore godoc
// @Summary Record a grade from the class-detail page
// @Description Validate and store one score, then return the refreshed page
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body service.ScoreSubmission true "Score fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/classes/{id}/scores [post]
func (h *ClassDetailHandler) SubmitScore(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var submission service.ScoreSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid score payload"))
		return
	}

	detail, err := h.service.SubmitScore(c.Request.Context(), sess, c.Param("id"), submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}
