package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all user-related routes.
// The token route exists only when issuer is non-nil.
func RegisterRoutes(g *gin.RouterGroup, h *UserHandler, issuer gin.HandlerFunc) {
	usersGroup := g.Group("/users")
	{
		usersGroup.POST("", h.Create)
		usersGroup.GET("", h.List)
		usersGroup.GET("/:id", h.Get)
		usersGroup.PATCH("/:id", h.Update)
		usersGroup.DELETE("/:id", h.Delete)
	}

	if issuer != nil {
		g.POST("/auth/token", issuer, h.IssueToken)
	}
}
