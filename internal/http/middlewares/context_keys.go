package middlewares

import "github.com/gin-gonic/gin"

const (
	ctxUserIDKey = "session.userID"
)

// UserIDFromContext lets handlers read the gate-resolved user without
// knowing the magic key.
func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)

	if !ok {
		return "", false
	}

	id, ok := v.(string)

	return id, ok && id != ""
}

func setUserID(c *gin.Context, id string) {
	c.Set(ctxUserIDKey, id)
}
