package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vortechdev/enilai-gateway/internal/middleware"
	"github.com/vortechdev/enilai-gateway/internal/models"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
	"github.com/vortechdev/enilai-gateway/pkg/response"
)

// currentSession pulls the authenticated session placed by the auth
// middleware. Handlers behind the guard can rely on it being present; the
// nil branch covers misrouted registrations.
func currentSession(c *gin.Context) (*models.Session, bool) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		response.Redirect(c, appErrors.ErrUnauthorized, "/login")
		return nil, false
	}
	return sess, true
}
