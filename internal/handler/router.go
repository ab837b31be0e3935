package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/store"
)

// NewRouter wires the HTTP surface: public auth endpoints, the bearer
// middleware, and the actor-scoped post endpoints.
func NewRouter(st store.Store, authService *service.Auth, gateway *service.Gateway) *gin.Engine {
	authHandler := NewAuthHandler(authService)
	postHandler := NewPostHandler()

	router := gin.Default()

	router.GET("/ping", func(c *gin.Context) {
		if err := st.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "storage unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		authed := api.Group("")
		authed.Use(AuthMiddleware(gateway))
		{
			authed.GET("/auth/me", authHandler.Me)
			authed.POST("/posts", postHandler.Create)
			authed.GET("/posts", postHandler.List)
			authed.GET("/posts/:id", postHandler.Get)
		}
	}

	return router
}
