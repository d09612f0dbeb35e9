package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"patientms/internal/ml"
	"patientms/internal/models"
	"patientms/internal/repository"
)

// Shared MockPatientRepository
type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) Get(ctx context.Context, id string) (*models.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Patient), args.Error(1)
}

func (m *MockPatientRepository) Put(ctx context.Context, patient *models.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockPatientRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Patient), args.Error(1)
}

// Shared MockPlacementModel
type MockPlacementModel struct {
	mock.Mock
}

func (m *MockPlacementModel) Predict(ctx context.Context, features []float64) (int, error) {
	args := m.Called(ctx, features)
	return args.Int(0), args.Error(1)
}

func (m *MockPlacementModel) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPlacementModel) Close() error {
	args := m.Called()
	return args.Error(0)
}

var (
	_ repository.PatientRepository = (*MockPatientRepository)(nil)
	_ ml.PlacementModel            = (*MockPlacementModel)(nil)
)
