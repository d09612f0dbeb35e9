package services

import (
	"context"
	"fmt"

	"patientms/internal/ml"
	"patientms/internal/models"
	"patientms/internal/schema"
)

// PlacementService shapes student features for the placement model and maps
// its label to the API's Yes/No answer.
type PlacementService struct {
	model ml.PlacementModel
}

func NewPlacementService(model ml.PlacementModel) *PlacementService {
	return &PlacementService{model: model}
}

func (s *PlacementService) Predict(ctx context.Context, in models.StudentFeatures) (models.PlacementResult, error) {
	features, err := schema.ValidateStudent(in)
	if err != nil {
		return models.PlacementResult{}, err
	}

	label, err := s.model.Predict(ctx, []float64{*features.CGPA, float64(*features.IQ)})
	if err != nil {
		return models.PlacementResult{}, fmt.Errorf("predict placement: %w", err)
	}

	if label == 1 {
		return models.PlacementResult{Placed: models.Placed}, nil
	}
	return models.PlacementResult{Placed: models.NotPlaced}, nil
}

func (s *PlacementService) HealthCheck(ctx context.Context) error {
	return s.model.HealthCheck(ctx)
}
