package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency of the running service.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthController struct {
	checks []HealthCheck
}

func NewHealthController(checks ...HealthCheck) *HealthController {
	return &HealthController{checks: checks}
}

// Health godoc
// @Summary Liveness of the store and the placement model
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{} "healthy"
// @Failure 503 {object} map[string]interface{} "degraded"
// @Router /health [get]
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(gin.H, len(hc.checks))
	for _, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			components[check.Name] = gin.H{"healthy": false, "error": err.Error()}
			continue
		}
		components[check.Name] = gin.H{"healthy": true}
	}

	if status != http.StatusOK {
		c.JSON(status, gin.H{
			"status":     "error",
			"message":    "degraded",
			"components": components,
		})
		return
	}

	c.JSON(status, gin.H{
		"status":     "success",
		"message":    "healthy",
		"components": components,
	})
}
