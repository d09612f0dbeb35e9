package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"patientms/internal/models"
)

func MigrateDatabase(db *gorm.DB, zlog zerolog.Logger) error {
	zlog.Info().Msg("running database migrations")

	if err := db.AutoMigrate(&models.Patient{}); err != nil {
		return fmt.Errorf("migrate patients: %w", err)
	}

	zlog.Info().Msg("database migrations completed")
	return nil
}
