package repository

import (
	"context"
	"sync"

	"patientms/internal/models"
)

type memoryPatientRepository struct {
	mu      sync.RWMutex
	records map[string]models.Patient
	order   []string
}

// NewMemoryPatientRepository returns a process-local store. Records are
// copied on the way in and out, so callers never share state with it.
func NewMemoryPatientRepository() PatientRepository {
	return &memoryPatientRepository{records: make(map[string]models.Patient)}
}

func (r *memoryPatientRepository) Get(_ context.Context, id string) (*models.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patient, ok := r.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &patient, nil
}

func (r *memoryPatientRepository) Put(_ context.Context, patient *models.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[patient.ID]; !exists {
		r.order = append(r.order, patient.ID)
	}
	r.records[patient.ID] = *patient
	return nil
}

func (r *memoryPatientRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return ErrRecordNotFound
	}
	delete(r.records, id)
	for i, key := range r.order {
		if key == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryPatientRepository) List(_ context.Context) ([]models.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patients := make([]models.Patient, 0, len(r.order))
	for _, id := range r.order {
		patients = append(patients, r.records[id])
	}
	return patients, nil
}
