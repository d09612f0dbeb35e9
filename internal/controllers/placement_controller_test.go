package controllers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"patientms/internal/controllers"
	"patientms/internal/middleware"
	"patientms/internal/mocks"
	"patientms/internal/services"
	"patientms/routes"
)

func setupPlacementRouter(model *mocks.MockPlacementModel) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller := controllers.NewPlacementController(services.NewPlacementService(model), zerolog.Nop())
	routes.RegisterPlacementRoutes(router, controller)
	return router
}

func TestPredictPlacement(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mocks.MockPlacementModel)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "placed",
			body: `{"cgpa":8.5,"iq":120}`,
			setupMock: func(m *mocks.MockPlacementModel) {
				m.On("Predict", mock.Anything, []float64{8.5, 120}).Return(1, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"placed":"Yes"}`,
		},
		{
			name: "not placed",
			body: `{"cgpa":5.1,"iq":90}`,
			setupMock: func(m *mocks.MockPlacementModel) {
				m.On("Predict", mock.Anything, []float64{5.1, 90}).Return(0, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"placed":"No"}`,
		},
		{
			name:           "missing iq",
			body:           `{"cgpa":8.5}`,
			setupMock:      func(m *mocks.MockPlacementModel) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "iq not an integer",
			body:           `{"cgpa":8.5,"iq":"high"}`,
			setupMock:      func(m *mocks.MockPlacementModel) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "model failure",
			body: `{"cgpa":8.5,"iq":120}`,
			setupMock: func(m *mocks.MockPlacementModel) {
				m.On("Predict", mock.Anything, mock.Anything).Return(0, errors.New("connection refused"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := new(mocks.MockPlacementModel)
			tt.setupMock(model)
			router := setupPlacementRouter(model)

			w := doRequest(router, http.MethodPost, "/predict-placement", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			} else {
				assert.Equal(t, "error", decode(t, w)["status"])
			}
			model.AssertExpectations(t)
		})
	}
}

func TestModelHealth(t *testing.T) {
	model := new(mocks.MockPlacementModel)
	model.On("HealthCheck", mock.Anything).Return(nil).Once()
	model.On("HealthCheck", mock.Anything).Return(errors.New("not serving")).Once()
	router := setupPlacementRouter(model)

	w := doRequest(router, http.MethodGet, "/predict-placement/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/predict-placement/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	model.AssertExpectations(t)
}

func TestHealthAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	storeErr := errors.New("store offline")
	healthy := true

	metrics := middleware.NewMetrics()
	router := gin.New()
	router.Use(metrics.Middleware())
	routes.RegisterHealthRoutes(router, controllers.NewHealthController(
		controllers.HealthCheck{Name: "store", Check: func(context.Context) error {
			if healthy {
				return nil
			}
			return storeErr
		}},
		controllers.HealthCheck{Name: "model", Check: func(context.Context) error { return nil }},
	), metrics)

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["message"])

	healthy = false
	w = doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	components := decode(t, w)["components"].(map[string]interface{})
	assert.Equal(t, false, components["store"].(map[string]interface{})["healthy"])
	assert.Equal(t, true, components["model"].(map[string]interface{})["healthy"])

	w = doRequest(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/health"`)
}
