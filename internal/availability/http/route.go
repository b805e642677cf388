package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	// Nested under the resource the windows belong to. Reads are public so
	// requesters can browse availability before signing in.
	nested := g.Group("/resources/:id")
	nested.GET("/windows", h.List)
	nested.GET("/free-slots", h.FreeSlots)

	nested.Use(authMiddleware)
	{
		nested.POST("/windows", h.Create)
	}

	windows := g.Group("/windows")
	windows.Use(authMiddleware)
	{
		windows.PATCH("/:id", h.Update)
		windows.DELETE("/:id", h.Delete)
	}
}
