package routes

import (
	"patientms/internal/controllers"
	"patientms/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterHealthRoutes(router *gin.Engine, healthController *controllers.HealthController, metrics *middleware.Metrics) {
	router.GET("/health", healthController.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
