package main

import (
	"context"
	"fmt"
	mathrand "math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"patientms/database"
	"patientms/internal/bootstrap"
	"patientms/internal/config"
	"patientms/internal/services"
	"patientms/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load patients into the configured store",
	}

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(randomCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a patients.json document, validating every record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withService(cmd.Context(), func(ctx context.Context, svc *services.PatientService, logger zerolog.Logger) error {
				report, err := utils.ImportDocument(ctx, svc, f, logger)
				printReport(report)
				return err
			})
		},
	}
}

func randomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Create synthetic patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			start, _ := cmd.Flags().GetInt("start-id")
			seed, _ := cmd.Flags().GetInt64("seed")
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			return withService(cmd.Context(), func(ctx context.Context, svc *services.PatientService, logger zerolog.Logger) error {
				r := mathrand.New(mathrand.NewSource(seed))
				report, err := utils.SeedPatients(ctx, svc, count, start, r, logger)
				printReport(report)
				return err
			})
		},
	}
	cmd.Flags().Int("count", utils.DefaultNumPatients, "Number of patients to create")
	cmd.Flags().Int("start-id", 1, "Numeric part of the first patient id")
	cmd.Flags().Int64("seed", 0, "Random seed (0 means time based)")
	return cmd
}

func withService(ctx context.Context, fn func(context.Context, *services.PatientService, zerolog.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if store.DB != nil {
		if err := database.MigrateDatabase(store.DB, logger); err != nil {
			return err
		}
	}

	return fn(ctx, services.NewPatientService(store.Repo, logger), logger)
}

func printReport(report utils.SeedReport) {
	fmt.Printf("created: %d, duplicates skipped: %d, rejected: %d\n",
		report.Created, report.Duplicates, report.Rejected)
}
