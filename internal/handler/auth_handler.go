package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vortechdev/enilai-gateway/internal/models"
	"github.com/vortechdev/enilai-gateway/internal/service"
	"github.com/vortechdev/enilai-gateway/internal/session"
	"github.com/vortechdev/enilai-gateway/pkg/config"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
	"github.com/vortechdev/enilai-gateway/pkg/response"
)

// AuthHandler wires the login lifecycle to HTTP. The upstream token never
// leaves the gateway; the browser only ever holds the signed session cookie.
type AuthHandler struct {
	service *service.AuthService
	cookies *session.CookieCodec
	cfg     config.SessionConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, cookies *session.CookieCodec, cfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies, cfg: cfg}
}

// Login godoc
// @Summary Authenticate user
// @Description Forward credentials to the remote API and open a gateway session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	sess, result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	value, err := h.cookies.Issue(sess.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.SetCookie(h.cfg.CookieName, value, int(h.cookies.TTL().Seconds()), "/", "", h.cfg.Secure, true)

	response.JSON(c, http.StatusOK, result)
}

// Logout godoc
// @Summary End the current session
// @Description Destroy the gateway session and clear the cookie
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if value, err := c.Cookie(h.cfg.CookieName); err == nil && value != "" {
		if sessionID, err := h.cookies.Decode(value); err == nil {
			if err := h.service.Logout(c.Request.Context(), sessionID); err != nil {
				response.Error(c, err)
				return
			}
		}
	}

	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.Secure, true)
	response.JSON(c, http.StatusOK, gin.H{"redirect": "/login"})
}

// Me godoc
// @Summary Current session profile
// @Description Return the authenticated user and their landing page
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	result := models.LoginResult{User: sess.User, Role: sess.User.Role, Home: sess.User.Role.Home()}
	response.JSON(c, http.StatusOK, result)
}
