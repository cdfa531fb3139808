// Package main provides the main entry point for the worldquest admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"worldquest/cmd/adm/commands"
	"worldquest/internal/config"
	"worldquest/internal/database"
	"worldquest/internal/dataset"
	"worldquest/internal/observability"
	"worldquest/internal/services"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	ctx := context.Background()

	// Set default config file if not already set
	if os.Getenv("WORLDQUEST_CONFIG_FILE") == "" {
		// Try to find the config file in common locations
		defaultPaths := []string{
			"../config.yaml",    // From backend/cmd/adm/
			"../../config.yaml", // From backend/cmd/adm/ (alternative)
			"config.yaml",       // Current directory
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := os.Setenv("WORLDQUEST_CONFIG_FILE", path); err != nil {
					fmt.Fprintf(os.Stderr, "Failed to set WORLDQUEST_CONFIG_FILE environment variable: %v\n", err)
					os.Exit(1)
				}
				break
			}
		}
	}

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override log level for admin tool
	cfg.Server.LogLevel = "error"

	// Disable all OpenTelemetry features for admin CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	// Setup observability (tracing/metrics/logging)
	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "worldquest-admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	// Defer cleanup
	defer func() {
		if stp, ok := tp.(*sdktrace.TracerProvider); ok && stp != nil {
			if err := stp.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error(), "provider": "tracer"})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error(), "provider": "meter"})
			}
		}
	}()

	// Initialize database manager
	dbManager := database.NewManager(logger)

	// Initialize database connection with configuration (no migrations for admin tool)
	db, err := dbManager.InitDBWithoutMigrations(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err, map[string]interface{}{"db_url": commands.MaskDatabaseURL(cfg.Database.URL)})
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Warning: failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Load the country statistics dataset
	datasetService := dataset.NewService(&cfg.Dataset, logger)
	if err := datasetService.Load(ctx); err != nil {
		logger.Error(ctx, "Failed to load dataset", err, map[string]interface{}{"path": cfg.Dataset.Path})
		os.Exit(1)
	}

	// Initialize services
	questionService := services.NewQuestionService(db, logger)
	aiService := services.NewAIService(cfg, logger)
	validationService := services.NewValidationService(logger)
	templateService := services.NewTemplateService(logger)
	poolService := services.NewPoolService(cfg, questionService, aiService, validationService, templateService, datasetService, logger)

	// Create the root command
	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "WorldQuest Administration Tool",
		Long: `WorldQuest Administration Tool

A CLI tool for administering the worldquest backend.
Provides commands for loading countries, managing the question pool,
and inspecting the database.`,

		Run: func(cmd *cobra.Command, _ []string) {
			// Show help if no subcommand provided
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	// Add subcommands with initialized services
	rootCmd.AddCommand(commands.CountryCommands(questionService, datasetService, logger))
	rootCmd.AddCommand(commands.QuestionCommands(questionService, poolService, logger))
	rootCmd.AddCommand(commands.DatabaseCommands(questionService, logger, db))

	// Execute the command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
