package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	mathrand "math/rand"

	"github.com/rs/zerolog"

	"patientms/internal/models"
	"patientms/internal/repository"
	"patientms/internal/schema"
	"patientms/internal/services"
)

const DefaultNumPatients = 100

var cities = []string{"NYC", "Boston", "Chicago", "Seattle", "Austin", "Denver", "Miami", "Portland"}

// SeedReport counts the outcome of a seeding or import run.
type SeedReport struct {
	Created    int
	Duplicates int
	Rejected   int
}

// SeedPatients creates count synthetic patients with ids P<startIndex>,
// P<startIndex+1>, ... Existing ids are skipped.
func SeedPatients(ctx context.Context, svc *services.PatientService, count, startIndex int, r *mathrand.Rand, logger zerolog.Logger) (SeedReport, error) {
	var report SeedReport
	for i := 0; i < count; i++ {
		in := generatePatient(startIndex+i, r)
		if err := record(ctx, svc, in, &report, logger); err != nil {
			return report, err
		}
	}
	return report, nil
}

// ImportDocument loads a patients.json document and creates every record in
// it through the service, so each one is validated like an API request.
// Persisted bmi and verdict values in the document are ignored.
func ImportDocument(ctx context.Context, svc *services.PatientService, r io.Reader, logger zerolog.Logger) (SeedReport, error) {
	var report SeedReport

	inputs, err := repository.DecodeInputs(r)
	if err != nil {
		return report, err
	}

	for _, in := range inputs {
		if err := record(ctx, svc, in, &report, logger); err != nil {
			return report, err
		}
	}
	return report, nil
}

func record(ctx context.Context, svc *services.PatientService, in models.PatientInput, report *SeedReport, logger zerolog.Logger) error {
	_, err := svc.Create(ctx, in)

	var duplicate *services.DuplicateIDError
	var verr *schema.ValidationError
	switch {
	case err == nil:
		report.Created++
	case errors.As(err, &duplicate):
		report.Duplicates++
		logger.Debug().Str("patient_id", duplicate.ID).Msg("patient already exists, skipped")
	case errors.As(err, &verr):
		report.Rejected++
		logger.Warn().Str("patient_id", *in.ID).Str("reason", verr.Error()).Msg("patient rejected")
	default:
		return fmt.Errorf("seed patient %s: %w", *in.ID, err)
	}
	return nil
}

func generatePatient(index int, r *mathrand.Rand) models.PatientInput {
	id := fmt.Sprintf("P%03d", index)
	name := fmt.Sprintf("Test Patient %d", index)
	city := cities[r.Intn(len(cities))]
	age := r.Intn(80) + 18 // 18-97
	gender := randomGender(r)
	height := round(1.45+r.Float64()*0.5, 2) // 1.45-1.95 m
	weight := round(40+r.Float64()*80, 1)    // 40-120 kg

	return models.PatientInput{
		ID:     &id,
		Name:   &name,
		City:   &city,
		Age:    &age,
		Gender: &gender,
		Weight: &weight,
		Height: &height,
	}
}

func randomGender(r *mathrand.Rand) string {
	switch r.Intn(3) {
	case 0:
		return "male"
	case 1:
		return "female"
	}
	return "others"
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
