package routes

import (
	"patientms/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterPlacementRoutes(router *gin.Engine, placementController *controllers.PlacementController) {
	router.POST("/predict-placement", placementController.PredictPlacement)
	router.GET("/predict-placement/health", placementController.ModelHealth)
}
