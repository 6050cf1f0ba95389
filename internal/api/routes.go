package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/listings", handler.ListListings)
		api.GET("/listings/:id/history", handler.GetListingHistory)
		api.GET("/neighborhoods/:name/daily-average", handler.GetNeighborhoodDailyAverage)
		api.POST("/collect", handler.TriggerCollect)
	}
}
