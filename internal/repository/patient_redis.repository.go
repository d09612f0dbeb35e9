package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"patientms/internal/models"
)

type redisPatientRepository struct {
	client   redis.Cmdable
	hashKey  string
	orderKey string
	seqKey   string
}

// NewRedisPatientRepository keeps records as JSON values in a hash. Insertion
// order lives in a sorted set scored by a monotonically increasing sequence.
func NewRedisPatientRepository(client redis.Cmdable, prefix string) PatientRepository {
	if prefix == "" {
		prefix = "patients"
	}
	return &redisPatientRepository{
		client:   client,
		hashKey:  prefix,
		orderKey: prefix + ":order",
		seqKey:   prefix + ":seq",
	}
}

func (r *redisPatientRepository) Get(ctx context.Context, id string) (*models.Patient, error) {
	data, err := r.client.HGet(ctx, r.hashKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient %s from Redis: %w", id, err)
	}

	var patient models.Patient
	if err := json.Unmarshal([]byte(data), &patient); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patient %s: %w", id, err)
	}
	return &patient, nil
}

func (r *redisPatientRepository) Put(ctx context.Context, patient *models.Patient) error {
	data, err := json.Marshal(patient)
	if err != nil {
		return fmt.Errorf("failed to marshal patient %s: %w", patient.ID, err)
	}

	seq, err := r.client.Incr(ctx, r.seqKey).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.hashKey, patient.ID, data)
		pipe.ZAddNX(ctx, r.orderKey, redis.Z{Score: float64(seq), Member: patient.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store patient %s in Redis: %w", patient.ID, err)
	}
	return nil
}

func (r *redisPatientRepository) Delete(ctx context.Context, id string) error {
	var removed *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.HDel(ctx, r.hashKey, id)
		pipe.ZRem(ctx, r.orderKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete patient %s from Redis: %w", id, err)
	}
	if removed.Val() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *redisPatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	ids, err := r.client.ZRange(ctx, r.orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list patient ids: %w", err)
	}
	if len(ids) == 0 {
		return []models.Patient{}, nil
	}

	values, err := r.client.HMGet(ctx, r.hashKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}

	patients := make([]models.Patient, 0, len(values))
	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			continue
		}
		var patient models.Patient
		if err := json.Unmarshal([]byte(data), &patient); err != nil {
			return nil, fmt.Errorf("failed to unmarshal patient %s: %w", ids[i], err)
		}
		patients = append(patients, patient)
	}
	return patients, nil
}
