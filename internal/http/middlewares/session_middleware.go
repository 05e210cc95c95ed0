package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/diettrack/internal/config"
	"github.com/geocoder89/diettrack/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// SessionCookieName is the sole authentication mechanism: an opaque token
// minted at registration and carried as a cookie.
const SessionCookieName = "sessionId"

// Keep this small interface so tests can fake it easily.
type SessionResolver interface {
	GetBySessionID(ctx context.Context, sessionID string) (user.User, error)
}

type SessionMiddleware struct {
	users SessionResolver
}

func NewSessionMiddleware(users SessionResolver) *SessionMiddleware {
	return &SessionMiddleware{users: users}
}

// RequireSession resolves the session cookie to a user row and stashes the
// user ID on the request context. Missing or unresolvable sessions
// short-circuit with 401 before any handler runs.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)

		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)

		defer cancel()

		u, err := m.users.GetBySessionID(cctx, sessionID)

		if err != nil {
			// only a missing user row is Unauthorized, a store fault is not
			if errors.Is(err, user.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Unauthorized",
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Could not resolve session",
			})
			return
		}

		setUserID(c, u.ID)

		c.Next()
	}
}
