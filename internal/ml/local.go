package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Artifact is the exported form of a trained standard scaler followed by a
// logistic-regression classifier.
type Artifact struct {
	Features     []string  `json:"features"`
	Scaler       Scaler    `json:"scaler"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`

	// Threshold on the positive-class probability. Absent means 0.5, which
	// matches a decision function > 0.
	Threshold *float64 `json:"threshold,omitempty"`
}

type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

const defaultThreshold = 0.5

type localModel struct {
	artifact  Artifact
	threshold float64
}

// LoadLocalModel reads a model artifact from path.
func LoadLocalModel(path string) (PlacementModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", path, err)
	}
	return NewLocalModel(artifact)
}

func NewLocalModel(artifact Artifact) (PlacementModel, error) {
	n := len(artifact.Coefficients)
	if n == 0 {
		return nil, errors.New("model artifact has no coefficients")
	}
	if len(artifact.Scaler.Mean) != n || len(artifact.Scaler.Scale) != n {
		return nil, fmt.Errorf("scaler has %d/%d parameters, model expects %d",
			len(artifact.Scaler.Mean), len(artifact.Scaler.Scale), n)
	}
	for i, s := range artifact.Scaler.Scale {
		if s == 0 {
			return nil, fmt.Errorf("scaler scale for feature %d is zero", i)
		}
	}
	threshold := defaultThreshold
	if artifact.Threshold != nil {
		threshold = *artifact.Threshold
		if threshold < 0 || threshold > 1 || math.IsNaN(threshold) {
			return nil, fmt.Errorf("threshold %v is outside [0, 1]", threshold)
		}
	}
	return &localModel{artifact: artifact, threshold: threshold}, nil
}

func (m *localModel) Predict(_ context.Context, features []float64) (int, error) {
	if err := validateFeatures(features, len(m.artifact.Coefficients)); err != nil {
		return 0, err
	}

	z := m.artifact.Intercept
	for i, x := range features {
		scaled := (x - m.artifact.Scaler.Mean[i]) / m.artifact.Scaler.Scale[i]
		z += m.artifact.Coefficients[i] * scaled
	}

	// strict, a probability equal to the threshold is class 0
	if 1/(1+math.Exp(-z)) > m.threshold {
		return 1, nil
	}
	return 0, nil
}

func (m *localModel) HealthCheck(context.Context) error {
	return nil
}

func (m *localModel) Close() error {
	return nil
}
