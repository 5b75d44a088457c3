package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/service"
)

const sessionContextKey = "authSession"

// AuthMiddleware validates bearer access tokens and stores the resulting
// session on the request context.
func AuthMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		session, err := sessions.Validate(c.Request.Context(), strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			if err == core.ErrTokenExpired {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func sessionFromContext(c *gin.Context) *core.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, ok := v.(*core.Session)
	if !ok {
		return nil
	}
	return session
}
