package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/store"
)

const actorKey = "actor"

// AuthMiddleware extracts the bearer token and resolves it to an Actor via
// the gateway. Anything short of a resolvable, live account is a 401.
func AuthMiddleware(gateway *service.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		tok := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if tok == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		actor, err := gateway.Authenticate(c.Request.Context(), tok)
		if err != nil {
			if errors.Is(err, store.ErrUnavailable) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			}
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

func GetActor(c *gin.Context) *service.Actor {
	if value, ok := c.Get(actorKey); ok {
		if actor, ok := value.(*service.Actor); ok {
			return actor
		}
	}
	return nil
}
