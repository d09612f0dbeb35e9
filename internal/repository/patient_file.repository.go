package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"patientms/internal/models"
)

// fileRecord is a document entry. The id is the document key, not a field,
// and any derived keys (bmi, verdict) found in older documents are dropped.
type fileRecord struct {
	Name   string  `json:"name"`
	City   string  `json:"city"`
	Age    int     `json:"age"`
	Gender string  `json:"gender"`
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
}

type filePatientRepository struct {
	mu   sync.Mutex
	path string
}

// NewFilePatientRepository stores every record in one JSON document at path,
// keyed by patient id. The document is loaded on each operation and written
// back whole through a temp file and rename. A missing file is an empty store.
func NewFilePatientRepository(path string) PatientRepository {
	if path == "" {
		path = "patients.json"
	}
	return &filePatientRepository{path: path}
}

func (r *filePatientRepository) Get(_ context.Context, id string) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	patients, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range patients {
		if patients[i].ID == id {
			return &patients[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

func (r *filePatientRepository) Put(_ context.Context, patient *models.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	patients, err := r.load()
	if err != nil {
		return err
	}

	replaced := false
	for i := range patients {
		if patients[i].ID == patient.ID {
			patients[i] = *patient
			replaced = true
			break
		}
	}
	if !replaced {
		patients = append(patients, *patient)
	}
	return r.save(patients)
}

func (r *filePatientRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	patients, err := r.load()
	if err != nil {
		return err
	}
	for i := range patients {
		if patients[i].ID == id {
			return r.save(append(patients[:i], patients[i+1:]...))
		}
	}
	return ErrRecordNotFound
}

func (r *filePatientRepository) List(_ context.Context) ([]models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

func (r *filePatientRepository) load() ([]models.Patient, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Patient{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []models.Patient{}, nil
	}

	patients, err := DecodeDocument(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.path, err)
	}
	return patients, nil
}

func (r *filePatientRepository) save(patients []models.Patient) error {
	var buf bytes.Buffer
	if err := EncodeDocument(&buf, patients); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", r.path, err)
	}
	return nil
}

// DecodeDocument reads a patients document ({"P001": {...}, ...}) keeping
// the key order of the document. Absent fields decode as zero values.
func DecodeDocument(rd io.Reader) ([]models.Patient, error) {
	ids, records, err := decodeOrdered[fileRecord](rd)
	if err != nil {
		return nil, err
	}

	patients := make([]models.Patient, 0, len(ids))
	for i, rec := range records {
		patients = append(patients, models.Patient{
			ID:     ids[i],
			Name:   rec.Name,
			City:   rec.City,
			Age:    rec.Age,
			Gender: rec.Gender,
			Weight: rec.Weight,
			Height: rec.Height,
		})
	}
	return patients, nil
}

// DecodeInputs reads a patients document as create candidates in document
// order. Absent fields stay nil so validation reports them; derived keys are
// dropped and the document key is the id.
func DecodeInputs(rd io.Reader) ([]models.PatientInput, error) {
	ids, inputs, err := decodeOrdered[models.PatientInput](rd)
	if err != nil {
		return nil, err
	}

	for i := range inputs {
		id := ids[i]
		inputs[i].ID = &id
		inputs[i].BMI = nil
		inputs[i].Verdict = nil
	}
	return inputs, nil
}

// decodeOrdered walks an id-keyed JSON object. Duplicate keys: the last value
// wins, at the first position.
func decodeOrdered[T any](rd io.Reader) ([]string, []T, error) {
	dec := json.NewDecoder(rd)

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	ids := []string{}
	values := []T{}
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		id, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected a patient id, got %v", tok)
		}

		var value T
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("patient %s: %w", id, err)
		}
		if i, dup := seen[id]; dup {
			values[i] = value
			continue
		}
		seen[id] = len(ids)
		ids = append(ids, id)
		values = append(values, value)
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return ids, values, nil
}

// EncodeDocument writes patients as an id-keyed JSON object in slice order.
func EncodeDocument(w io.Writer, patients []models.Patient) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range patients {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.ID)
		if err != nil {
			return err
		}
		value, err := json.Marshal(fileRecord{
			Name:   p.Name,
			City:   p.City,
			Age:    p.Age,
			Gender: p.Gender,
			Weight: p.Weight,
			Height: p.Height,
		})
		if err != nil {
			return fmt.Errorf("failed to encode patient %s: %w", p.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	_, err := w.Write(buf.Bytes())
	return err
}
