// Package bootstrap turns a Config into the patient store and placement model
// selected by STORE_DRIVER and MODEL_DRIVER.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"patientms/database"
	"patientms/internal/cache"
	"patientms/internal/config"
	"patientms/internal/ml"
	"patientms/internal/repository"
)

// Store is an opened patient repository with its liveness probe and cleanup.
type Store struct {
	Repo  repository.PatientRepository
	Ping  func(ctx context.Context) error
	Close func() error

	// DB is set for the postgres driver only.
	DB *gorm.DB
}

func OpenStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Store, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case "memory":
		return &Store{
			Repo:  repository.NewMemoryPatientRepository(),
			Ping:  func(context.Context) error { return nil },
			Close: noop,
		}, nil

	case "file":
		path := cfg.PatientsFile
		return &Store{
			Repo: repository.NewFilePatientRepository(path),
			Ping: func(context.Context) error {
				_, err := os.Stat(path)
				if os.IsNotExist(err) {
					// created on first write
					return nil
				}
				return err
			},
			Close: noop,
		}, nil

	case "postgres":
		db, err := database.ConnectDatabase(cfg.PostgresDSN(), logger)
		if err != nil {
			return nil, err
		}
		return &Store{
			Repo: repository.NewPatientRepository(db),
			Ping: func(context.Context) error { return database.Ping(db) },
			Close: func() error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
			DB: db,
		}, nil

	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return &Store{
			Repo:  repository.NewRedisPatientRepository(client, cfg.RedisPrefix),
			Ping:  func(ctx context.Context) error { return client.Ping(ctx).Err() },
			Close: client.Close,
		}, nil

	case "mongo":
		db, err := database.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &Store{
			Repo: repository.NewMongoPatientRepository(db),
			Ping: func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
			Close: func() error {
				return db.Client().Disconnect(context.Background())
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func OpenModel(cfg *config.Config) (ml.PlacementModel, error) {
	switch cfg.ModelDriver {
	case "local":
		return ml.LoadLocalModel(cfg.ModelPath)
	case "grpc":
		return ml.NewGRPCModel(cfg.MLServiceAddress)
	}
	return nil, fmt.Errorf("unknown model driver %q", cfg.ModelDriver)
}
