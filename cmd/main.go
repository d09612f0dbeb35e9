package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"patientms/database"
	"patientms/internal/bootstrap"
	"patientms/internal/config"
	"patientms/internal/controllers"
	"patientms/internal/middleware"
	"patientms/internal/services"
	"patientms/routes"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "patientms",
		Short: "Patient Management System API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the patients table (postgres store only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			if cfg.StoreDriver != "postgres" {
				logger.Info().Str("store_driver", cfg.StoreDriver).Msg("nothing to migrate")
				return nil
			}

			db, err := database.ConnectDatabase(cfg.PostgresDSN(), logger)
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err == nil {
				defer sqlDB.Close()
			}
			return database.MigrateDatabase(db, logger)
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Authorization", "Content-Type", "Accept", middleware.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)

	ctx := context.Background()

	// Patient store
	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("store_driver", cfg.StoreDriver).Msg("failed to open patient store")
		return err
	}
	defer store.Close()

	if store.DB != nil {
		if err := database.MigrateDatabase(store.DB, logger); err != nil {
			return err
		}
	}
	logger.Info().Str("store_driver", cfg.StoreDriver).Msg("patient store ready")

	// Placement model
	model, err := bootstrap.OpenModel(cfg)
	if err != nil {
		logger.Error().Err(err).Str("model_driver", cfg.ModelDriver).Msg("failed to load placement model")
		return err
	}
	defer model.Close()

	healthCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := model.HealthCheck(healthCtx); err != nil {
		logger.Warn().Err(err).Msg("placement model health check failed, predictions will fail until it is available")
	} else {
		logger.Info().Str("model_driver", cfg.ModelDriver).Msg("placement model ready")
	}
	cancel()

	// Services and controllers
	patientService := services.NewPatientService(store.Repo, logger)
	placementService := services.NewPlacementService(model)

	patientController := controllers.NewPatientController(patientService)
	placementController := controllers.NewPlacementController(placementService, logger)
	healthController := controllers.NewHealthController(
		controllers.HealthCheck{Name: "store", Check: store.Ping},
		controllers.HealthCheck{Name: "model", Check: placementService.HealthCheck},
	)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics := middleware.NewMetrics()

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	routes.RegisterPatientRoutes(router, patientController, cfg.JWTSecretKey)
	routes.RegisterPlacementRoutes(router, placementController)
	routes.RegisterHealthRoutes(router, healthController, metrics)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}
