package routes

import (
	"patientms/internal/controllers"
	"patientms/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterPatientRoutes mounts the record endpoints. Writes go through the
// bearer-token check when jwtSecret is set.
func RegisterPatientRoutes(router *gin.Engine, patientController *controllers.PatientController, jwtSecret string) {
	router.GET("/", patientController.Home)
	router.GET("/about", patientController.About)
	router.GET("/view", patientController.ViewPatients)
	router.GET("/view/:id", patientController.ViewPatient)
	router.GET("/patient/view", patientController.SortedPatients)

	writeRoutes := router.Group("/")
	writeRoutes.Use(middleware.AuthMiddleware(jwtSecret))
	{
		writeRoutes.POST("/create-patient", patientController.CreatePatient)
		writeRoutes.PUT("/update-patient/:id", patientController.UpdatePatient)
		writeRoutes.PATCH("/update-patient/update-city", patientController.UpdateCity)
		writeRoutes.DELETE("/delete-patient/:id", patientController.DeletePatient)
	}
}
