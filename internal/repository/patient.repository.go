package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"patientms/internal/models"
)

// ErrRecordNotFound is returned by every PatientRepository when no record has the given id.
var ErrRecordNotFound = errors.New("record not found")

// PatientRepository is the keyed record store. Put inserts or replaces the
// record with the same ID; List returns records in insertion order.
type PatientRepository interface {
	Get(ctx context.Context, id string) (*models.Patient, error)
	Put(ctx context.Context, patient *models.Patient) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Patient, error)
}

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Get(ctx context.Context, id string) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient %s: %w", id, err)
	}
	return &patient, nil
}

func (r *patientRepository) Put(ctx context.Context, patient *models.Patient) error {
	now := time.Now()
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = now
	}
	patient.UpdatedAt = now

	// created_at is left out of the update set so listing order survives replaces.
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"updated_at", "name", "city", "age", "gender", "weight", "height",
		}),
	}).Create(patient).Error
	if err != nil {
		return fmt.Errorf("failed to save patient %s: %w", patient.ID, err)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Patient{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete patient %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}
