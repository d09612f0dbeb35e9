package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"patientms/internal/models"
	"patientms/internal/repository"
	"patientms/internal/schema"
)

// PatientService owns every write to the patient store. A record reaches the
// repository only after it has been validated as a complete patient; partial
// updates are merged into a copy of the stored record first.
//
// Writes are read-validate-write with no locking across requests, so two
// concurrent writers to the same id race and the last one wins.
type PatientService struct {
	repo   repository.PatientRepository
	logger zerolog.Logger
}

func NewPatientService(repo repository.PatientRepository, logger zerolog.Logger) *PatientService {
	return &PatientService{
		repo:   repo,
		logger: logger.With().Str("component", "patients").Logger(),
	}
}

func (s *PatientService) Get(ctx context.Context, id string) (models.Patient, error) {
	patient, err := s.find(ctx, id)
	if err != nil {
		return models.Patient{}, err
	}
	return *patient, nil
}

func (s *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (s *PatientService) Create(ctx context.Context, in models.PatientInput) (models.Patient, error) {
	patient, err := schema.ValidateFull(in)
	if err != nil {
		return models.Patient{}, err
	}

	_, err = s.repo.Get(ctx, patient.ID)
	switch {
	case err == nil:
		return models.Patient{}, &DuplicateIDError{ID: patient.ID}
	case !errors.Is(err, repository.ErrRecordNotFound):
		return models.Patient{}, fmt.Errorf("lookup patient %s: %w", patient.ID, err)
	}

	if err := s.repo.Put(ctx, &patient); err != nil {
		return models.Patient{}, fmt.Errorf("create patient %s: %w", patient.ID, err)
	}

	s.logger.Info().Str("patient_id", patient.ID).Msg("patient created")
	return patient, nil
}

// Update merges the present fields of in over the stored record, forces the
// id back to the path id and re-validates the result as a full record. The
// store is left untouched unless the merged record is valid.
func (s *PatientService) Update(ctx context.Context, id string, in models.PatientUpdate) (models.Patient, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return models.Patient{}, err
	}

	update, err := schema.ValidatePartial(in)
	if err != nil {
		return models.Patient{}, err
	}

	candidate := update.Apply(existing.Input())
	candidate.ID = &id

	merged, err := schema.ValidateFull(candidate)
	if err != nil {
		return models.Patient{}, err
	}
	merged.CreatedAt = existing.CreatedAt

	if err := s.repo.Put(ctx, &merged); err != nil {
		return models.Patient{}, fmt.Errorf("update patient %s: %w", id, err)
	}

	s.logger.Info().Str("patient_id", id).Msg("patient updated")
	return merged, nil
}

// UpdateCity overwrites the city of an existing record and nothing else.
func (s *PatientService) UpdateCity(ctx context.Context, in models.CityUpdate) (models.Patient, error) {
	update, err := schema.ValidateCity(in)
	if err != nil {
		return models.Patient{}, err
	}

	existing, err := s.find(ctx, *update.ID)
	if err != nil {
		return models.Patient{}, err
	}

	patched := *existing
	patched.City = *update.City

	if err := s.repo.Put(ctx, &patched); err != nil {
		return models.Patient{}, fmt.Errorf("update city of patient %s: %w", patched.ID, err)
	}

	s.logger.Info().Str("patient_id", patched.ID).Msg("patient city updated")
	return patched, nil
}

func (s *PatientService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return &NotFoundError{ID: id}
	}
	if err != nil {
		return fmt.Errorf("delete patient %s: %w", id, err)
	}

	s.logger.Info().Str("patient_id", id).Msg("patient deleted")
	return nil
}

func (s *PatientService) find(ctx context.Context, id string) (*models.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get patient %s: %w", id, err)
	}
	return patient, nil
}
