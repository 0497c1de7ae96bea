package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vortechdev/enilai-gateway/internal/screen"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
	"github.com/vortechdev/enilai-gateway/pkg/response"
)

// ScreenHandler exposes the shared CRUD orchestrator over HTTP. All six
// resource screens route through the same handlers; the :entity parameter
// selects the configuration.
type ScreenHandler struct {
	manager *screen.Manager
}

// NewScreenHandler creates a new handler.
func NewScreenHandler(manager *screen.Manager) *ScreenHandler {
	return &ScreenHandler{manager: manager}
}

// resolve loads the session's screen for the entity after the role gate.
// Foreign roles are redirected to their own landing page, same as the route
// guard does for whole route groups.
func (h *ScreenHandler) resolve(c *gin.Context) (*screen.Screen, bool) {
	sess, ok := currentSession(c)
	if !ok {
		return nil, false
	}

	entity := c.Param("entity")
	cfg, err := h.manager.Config(entity)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}

	allowed := false
	for _, role := range cfg.Roles {
		if role == sess.User.Role {
			allowed = true
			break
		}
	}
	if !allowed {
		response.Redirect(c, appErrors.ErrForbidden, sess.User.Role.Home())
		return nil, false
	}

	scr, err := h.manager.Screen(sess, entity)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return scr, true
}

// Show godoc
// @Summary View a resource screen
// @Description Load the entity list with its reference lists and return the screen state
// @Tags Screens
// @Produce json
// @Param entity path string true "Screen entity"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /screens/{entity} [get]
func (h *ScreenHandler) Show(c *gin.Context) {
	scr, ok := h.resolve(c)
	if !ok {
		return
	}

	// A failed load still renders; the screen carries the inline error and
	// any later action that re-triggers a fetch recovers it.
	_ = scr.Load(c.Request.Context())
	response.JSON(c, http.StatusOK, scr.Snapshot())
}

// State godoc
// @Summary Current screen state
// @Description Return the screen state without re-fetching
// @Tags Screens
// @Produce json
// @Param entity path string true "Screen entity"
// @Success 200 {object} response.Envelope
// @Router /screens/{entity}/state [get]
func (h *ScreenHandler) State(c *gin.Context) {
	scr, ok := h.resolve(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, scr.Snapshot())
}

// Draft godoc
// @Summary Update the form draft
// @Description Merge field values into the screen's form draft
// @Tags Screens
// @Accept json
// @Produce json
// @Param entity path string true "Screen entity"
// @Param payload body map[string]string true "Draft fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /screens/{entity}/draft [post]
func (h *ScreenHandler) Draft(c *gin.Context) {
	scr, ok := h.resolve(c)
	if !ok {
		return
	}

	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid draft payload"))
		return
	}
	if err := scr.SetDraft(fields); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scr.Snapshot())
}

// Edit godoc
// @Summary Enter edit mode
// @Description Seed the draft from an existing record and switch to edit mode
// @Tags Screens
// @Produce json
// @Param entity path string true "Screen entity"
// @Param id path string true "Record identifier"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /screens/{entity}/edit/{id} [post]
func (h *ScreenHandler) Edit(c *gin.Context) {
	scr, ok := h.resolve(c)
	if !ok {
		return
	}
	if err := scr.BeginEdit(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scr.Snapshot())
}

// CancelEdit godoc
// @Summary Leave edit mode
// @Description Clear the draft and return to create mode
// @Tags Screens
// @Produce json
// @Param entity path string true "Screen entity"
// @Success 200 {object} response.Envelope
// @Router /screens/{entity}/edit/cancel [post]
func (h *ScreenHandler) CancelEdit(c *gin.Context) {
	scr, ok := h.resolve(c)
	if !ok {
		return
	}
	scr.CancelEdit()
	response.JSON(c, http.StatusOK, scr.Snapshot())
}

// Submit godoc
// @Summary Submit the draft
// @Description Validate and dispatch a create or update, then re-fetch the list
// @Tags Screens
// @Produce json
// @Param entity path string true "Screen entity"
// @Success 200 {object} response.Envelope
// @Router /screens/{entity}/submit [post]
func (h *ScreenHandler) Submit(c *gin.Context) {
	scr, ok := h.resolve(c)
	if !ok {
		return
	}

	// Validation and upstream failures are part of the screen state, not a
	// transport error; the shell renders them inline.
	_ = scr.Submit(c.Request.Context())
	response.JSON(c, http.StatusOK, scr.Snapshot())
}

// Delete godoc
// @Summary Ask to delete a record
// @Description Mark a record for deletion, pending confirmation
// @Tags Screens
// @Produce json
// @Param entity path string true "Screen entity"
// @Param id path string true "Record identifier"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /screens/{entity}/delete/{id} [post]
func (h *ScreenHandler) Delete(c *gin.Context) {
	scr, ok := h.resolve(c)
	if !ok {
		return
	}
	if err := scr.BeginDelete(c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scr.Snapshot())
}

// ConfirmDelete godoc
// @Summary Confirm the pending deletion
// @Description Issue the delete upstream and re-fetch the list
// @Tags Screens
// @Produce json
// @Param entity path string true "Screen entity"
// @Success 200 {object} response.Envelope
// @Router /screens/{entity}/delete/confirm [post]
func (h *ScreenHandler) ConfirmDelete(c *gin.Context) {
	scr, ok := h.resolve(c)
	if !ok {
		return
	}
	_ = scr.ConfirmDelete(c.Request.Context())
	response.JSON(c, http.StatusOK, scr.Snapshot())
}

// CancelDelete godoc
// @Summary Dismiss the pending deletion
// @Description Close the confirmation without deleting anything
// @Tags Screens
// @Produce json
// @Param entity path string true "Screen entity"
// @Success 200 {object} response.Envelope
// @Router /screens/{entity}/delete/cancel [post]
func (h *ScreenHandler) CancelDelete(c *gin.Context) {
	scr, ok := h.resolve(c)
	if !ok {
		return
	}
	scr.CancelDelete()
	response.JSON(c, http.StatusOK, scr.Snapshot())
}
