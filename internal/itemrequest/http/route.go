package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, identify gin.HandlerFunc) {
	group := g.Group("/requests")

	group.Use(identify)
	{
		group.POST("", h.Create)
		group.GET("", h.ListMine)
		group.GET("/all", h.ListAll)
		group.GET("/:id", h.Get)
	}
}
