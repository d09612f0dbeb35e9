package services

import (
	"context"
	"sort"

	"patientms/internal/models"
)

var (
	SortFields     = []string{"height", "weight", "bmi"}
	SortDirections = []string{"asc", "desc"}
)

var sortKeys = map[string]func(models.Patient) float64{
	"height": func(p models.Patient) float64 { return p.Height },
	"weight": func(p models.Patient) float64 { return p.Weight },
	// A record without a usable height sorts as bmi 0 instead of failing the listing.
	"bmi": func(p models.Patient) float64 { return p.BMI() },
}

// SortedView returns every record ordered by field. The sort is stable in
// both directions: equal keys keep the store's insertion order.
func (s *PatientService) SortedView(ctx context.Context, field, direction string) ([]models.Patient, error) {
	key, ok := sortKeys[field]
	if !ok {
		return nil, &InvalidFieldError{Field: field, Valid: SortFields}
	}
	if direction != "asc" && direction != "desc" {
		return nil, &InvalidDirectionError{Direction: direction, Valid: SortDirections}
	}

	patients, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	desc := direction == "desc"
	sort.SliceStable(patients, func(i, j int) bool {
		if desc {
			return key(patients[i]) > key(patients[j])
		}
		return key(patients[i]) < key(patients[j])
	})
	return patients, nil
}
