package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires all v1 routes. Prediction triggers sit behind the
// API key; engagement endpoints require the requester's user id.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	predictions := api.Group("/predictions", APIKeyAuthMiddleware(h.cfg, h.logger))
	{
		predictions.POST("", h.enqueuePrediction)
		predictions.POST("/dispatch", h.dispatchPrediction)
	}

	alerts := api.Group("/alerts", RequesterIDMiddleware())
	{
		alerts.GET("/user/:user_id", h.listUserAlerts)
		alerts.GET("/stats/:user_id", h.getAlertStats)
		alerts.GET("/:id", h.getAlert)
		alerts.POST("/:id/read", h.markAlertRead)
		alerts.POST("/:id/click", h.markAlertClicked)
		alerts.DELETE("/:id", h.deleteAlert)
	}

	api.GET("/system/health", h.healthCheck)
}
