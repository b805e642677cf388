package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	group.Use(authMiddleware)
	{
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Reschedule)
		group.POST("/:id/confirm", h.Confirm)
		group.POST("/:id/reject", h.Reject)
		group.POST("/:id/cancel", h.Cancel)
		group.POST("/:id/complete", h.Complete)
		group.POST("/:id/no-show", h.NoShow)
	}
}
