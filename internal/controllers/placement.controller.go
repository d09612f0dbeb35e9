package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"patientms/internal/models"
	"patientms/internal/schema"
	"patientms/internal/services"
)

type PlacementController struct {
	service *services.PlacementService
	logger  zerolog.Logger
}

func NewPlacementController(service *services.PlacementService, logger zerolog.Logger) *PlacementController {
	return &PlacementController{service: service, logger: logger}
}

// PredictPlacement godoc
// @Summary Predict student placement
// @Description Runs the placement model on cgpa and iq
// @Tags placement
// @Accept json
// @Produce json
// @Param student body models.StudentFeatures true "Student features"
// @Success 200 {object} models.PlacementResult
// @Failure 422 {object} map[string]interface{} "Validation failed"
// @Failure 503 {object} map[string]interface{} "Placement model unavailable"
// @Router /predict-placement [post]
func (pc *PlacementController) PredictPlacement(c *gin.Context) {
	var input models.StudentFeatures
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, schema.FromDecodeError(err))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	result, err := pc.service.Predict(ctx, input)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			respondError(c, err)
			return
		}

		pc.logger.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("placement prediction failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Placement model unavailable",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ModelHealth godoc
// @Summary Check the placement model
// @Tags placement
// @Produce json
// @Success 200 {object} map[string]interface{} "Placement model is healthy"
// @Failure 503 {object} map[string]interface{} "Placement model is not reachable"
// @Router /predict-placement/health [get]
func (pc *PlacementController) ModelHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := pc.service.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "Placement model is not reachable",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   "Placement model is healthy",
		"timestamp": time.Now(),
	})
}
