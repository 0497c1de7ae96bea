package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/vortechdev/enilai-gateway/internal/models"
	"github.com/vortechdev/enilai-gateway/internal/session"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
	"github.com/vortechdev/enilai-gateway/pkg/response"
)

// ContextSessionKey is the gin context key storing the resolved session.
const ContextSessionKey = "currentSession"

// loginPath is where the shell navigates when no usable session exists.
const loginPath = "/login"

// Authenticate resolves the session cookie on every guarded request. No
// session, a tampered cookie, or an expired store entry all redirect to the
// login page. The decision is made fresh per request; nothing is cached.
func Authenticate(store session.Store, cookies *session.CookieCodec, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(cookieName)
		if err != nil || value == "" {
			response.Redirect(c, appErrors.ErrUnauthorized, loginPath)
			c.Abort()
			return
		}

		sessionID, err := cookies.Decode(value)
		if err != nil {
			response.Redirect(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid session cookie"), loginPath)
			c.Abort()
			return
		}

		sess, err := store.Find(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				response.Redirect(c, appErrors.ErrSessionGone, loginPath)
			} else {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session"))
			}
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// RequireRoles gates a route to the given roles. A session with a different
// role is redirected to its own home instead of seeing the view, mirroring
// the SPA's ProtectedRoute behaviour.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		sess := SessionFromContext(c)
		if sess == nil {
			response.Redirect(c, appErrors.ErrUnauthorized, loginPath)
			c.Abort()
			return
		}

		if _, ok := allowed[sess.User.Role]; !ok {
			response.Redirect(c, appErrors.ErrForbidden, sess.User.Role.Home())
			c.Abort()
			return
		}

		c.Next()
	}
}

// SessionFromContext returns the session placed by Authenticate, or nil.
func SessionFromContext(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	sess, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return sess
}
