package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vortechdev/enilai-gateway/internal/service"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
	"github.com/vortechdev/enilai-gateway/pkg/response"
)

// ProfileHandler serves the role-scoped profile views.
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// Teacher godoc
// @Summary Teacher profile
// @Description Fetch the authenticated teacher's profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /teacher/profile [get]
func (h *ProfileHandler) Teacher(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	profile, err := h.service.Teacher(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// UpdateTeacher godoc
// @Summary Update teacher profile
// @Description Push profile edits to the remote API
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body service.TeacherProfileUpdate true "Profile fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /teacher/profile [put]
func (h *ProfileHandler) UpdateTeacher(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var update service.TeacherProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.service.UpdateTeacher(c.Request.Context(), sess, update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// Student godoc
// @Summary Student landing page
// @Description Fetch the pupil profile merged with their scores
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /student/profile [get]
func (h *ProfileHandler) Student(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	profile, err := h.service.Student(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// UpdateStudentPassword godoc
// @Summary Change student password
// @Description Update the pupil's password after a local confirmation check
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body service.PasswordUpdate true "Password fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student/update-password [put]
func (h *ProfileHandler) UpdateStudentPassword(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var update service.PasswordUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid password payload"))
		return
	}

	if err := h.service.UpdateStudentPassword(c.Request.Context(), sess, update); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Password berhasil diperbarui!"})
}
