package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"patientms/internal/mocks"
	"patientms/internal/models"
	"patientms/internal/repository"
	"patientms/internal/schema"
)

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func aliceInput() models.PatientInput {
	return models.PatientInput{
		ID:     strPtr("P001"),
		Name:   strPtr("Alice"),
		City:   strPtr("NYC"),
		Age:    intPtr(30),
		Gender: strPtr("female"),
		Weight: floatPtr(70),
		Height: floatPtr(1.75),
	}
}

func newService(t *testing.T) (*PatientService, repository.PatientRepository) {
	t.Helper()
	repo := repository.NewMemoryPatientRepository()
	return NewPatientService(repo, zerolog.Nop()), repo
}

func seed(t *testing.T, svc *PatientService, in models.PatientInput) models.Patient {
	t.Helper()
	patient, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return patient
}

func listAll(t *testing.T, repo repository.PatientRepository) []models.Patient {
	t.Helper()
	patients, err := repo.List(context.Background())
	require.NoError(t, err)
	return patients
}

func TestCreateDerivesMetrics(t *testing.T) {
	svc, _ := newService(t)

	patient := seed(t, svc, aliceInput())

	view := patient.View()
	assert.Equal(t, 22.86, view.BMI)
	assert.Equal(t, "Normal", view.Verdict)

	stored, err := svc.Get(context.Background(), "P001")
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Name)
}

func TestCreateDuplicateLeavesStoreUnchanged(t *testing.T) {
	svc, repo := newService(t)
	seed(t, svc, aliceInput())
	before := listAll(t, repo)

	dup := aliceInput()
	dup.Name = strPtr("Mallory")
	_, err := svc.Create(context.Background(), dup)

	var dupErr *DuplicateIDError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "P001", dupErr.ID)
	assert.Equal(t, before, listAll(t, repo))
}

func TestCreateValidationError(t *testing.T) {
	svc, repo := newService(t)

	in := aliceInput()
	in.Age = intPtr(0)
	in.Gender = strPtr("unknown")
	_, err := svc.Create(context.Background(), in)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "age")
	assert.Contains(t, verr.Fields, "gender")
	assert.Empty(t, listAll(t, repo))
}

func TestUpdateMergesPresentFields(t *testing.T) {
	svc, _ := newService(t)
	seed(t, svc, aliceInput())

	updated, err := svc.Update(context.Background(), "P001", models.PatientUpdate{Weight: floatPtr(100)})
	require.NoError(t, err)

	assert.Equal(t, 100.0, updated.Weight)
	assert.Equal(t, 1.75, updated.Height)
	assert.Equal(t, "NYC", updated.City)
	assert.Equal(t, "Alice", updated.Name)

	view := updated.View()
	assert.Equal(t, 32.65, view.BMI)
	assert.Equal(t, "Obese", view.Verdict)
}

func TestUpdateRecomputesFromNewWeightOnly(t *testing.T) {
	svc, _ := newService(t)
	seed(t, svc, aliceInput())

	updated, err := svc.Update(context.Background(), "P001", models.PatientUpdate{Weight: floatPtr(80)})
	require.NoError(t, err)

	assert.Equal(t, 1.75, updated.Height)
	assert.Equal(t, 26.12, updated.BMI())
}

func TestUpdateIsIdempotent(t *testing.T) {
	svc, repo := newService(t)
	seed(t, svc, aliceInput())
	update := models.PatientUpdate{Weight: floatPtr(80), City: strPtr("Boston")}

	once, err := svc.Update(context.Background(), "P001", update)
	require.NoError(t, err)
	afterOnce := listAll(t, repo)

	twice, err := svc.Update(context.Background(), "P001", update)
	require.NoError(t, err)

	assert.Equal(t, once.View(), twice.View())
	assert.Equal(t, afterOnce, listAll(t, repo))
}

func TestUpdateIgnoresBodyID(t *testing.T) {
	svc, repo := newService(t)
	seed(t, svc, aliceInput())

	updated, err := svc.Update(context.Background(), "P001", models.PatientUpdate{ID: strPtr("P999"), Age: intPtr(31)})
	require.NoError(t, err)
	assert.Equal(t, "P001", updated.ID)
	assert.Equal(t, 31, updated.Age)

	patients := listAll(t, repo)
	require.Len(t, patients, 1)
	assert.Equal(t, "P001", patients[0].ID)
}

func TestUpdateInvalidMergeLeavesStoreUnchanged(t *testing.T) {
	svc, repo := newService(t)
	seed(t, svc, aliceInput())
	before := listAll(t, repo)

	_, err := svc.Update(context.Background(), "P001", models.PatientUpdate{Age: intPtr(130), Weight: floatPtr(90)})

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "age")
	assert.Equal(t, before, listAll(t, repo))
}

func TestUpdateRejectsDerivedFields(t *testing.T) {
	svc, _ := newService(t)
	seed(t, svc, aliceInput())

	_, err := svc.Update(context.Background(), "P001", models.PatientUpdate{BMI: floatPtr(18)})

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "bmi")
}

func TestUpdateCity(t *testing.T) {
	svc, _ := newService(t)
	seed(t, svc, aliceInput())

	patched, err := svc.UpdateCity(context.Background(), models.CityUpdate{ID: strPtr("P001"), City: strPtr("Boston")})
	require.NoError(t, err)
	assert.Equal(t, "Boston", patched.City)

	stored, err := svc.Get(context.Background(), "P001")
	require.NoError(t, err)
	assert.Equal(t, "Boston", stored.City)
	assert.Equal(t, 70.0, stored.Weight)
	assert.Equal(t, 30, stored.Age)
}

func TestMissingIDLeavesStoreUnchanged(t *testing.T) {
	svc, repo := newService(t)
	seed(t, svc, aliceInput())
	before := listAll(t, repo)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"get", func() error { _, err := svc.Get(ctx, "P404"); return err }},
		{"update", func() error {
			_, err := svc.Update(ctx, "P404", models.PatientUpdate{Weight: floatPtr(80)})
			return err
		}},
		{"update city", func() error {
			_, err := svc.UpdateCity(ctx, models.CityUpdate{ID: strPtr("P404"), City: strPtr("Boston")})
			return err
		}},
		{"delete", func() error { return svc.Delete(ctx, "P404") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var notFound *NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, "P404", notFound.ID)
			assert.Equal(t, before, listAll(t, repo))
		})
	}
}

func TestDelete(t *testing.T) {
	svc, repo := newService(t)
	seed(t, svc, aliceInput())

	require.NoError(t, svc.Delete(context.Background(), "P001"))
	assert.Empty(t, listAll(t, repo))
}

func TestRepositoryFailuresAreWrapped(t *testing.T) {
	repo := new(mocks.MockPatientRepository)
	svc := NewPatientService(repo, zerolog.Nop())
	storeErr := errors.New("disk full")

	repo.On("Get", mock.Anything, "P001").Return(nil, repository.ErrRecordNotFound)
	repo.On("Put", mock.Anything, mock.AnythingOfType("*models.Patient")).Return(storeErr)

	_, err := svc.Create(context.Background(), aliceInput())
	assert.ErrorIs(t, err, storeErr)

	var dupErr *DuplicateIDError
	assert.False(t, errors.As(err, &dupErr))
	repo.AssertExpectations(t)
}

func TestCreateLookupFailureIsNotDuplicate(t *testing.T) {
	repo := new(mocks.MockPatientRepository)
	svc := NewPatientService(repo, zerolog.Nop())
	storeErr := errors.New("connection refused")

	repo.On("Get", mock.Anything, "P001").Return(nil, storeErr)

	_, err := svc.Create(context.Background(), aliceInput())
	assert.ErrorIs(t, err, storeErr)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}
