package commands

import (
	"context"
	"database/sql"
	"os"

	"worldquest/internal/observability"
	"worldquest/internal/services"
	contextutils "worldquest/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(store services.QuestionServiceInterface, logger *observability.Logger, db *sql.DB) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the worldquest backend.

Available commands:
  stats     - Show database statistics`,
	}

	dbCmd.AddCommand(statsCmd(store, logger, db))

	return dbCmd
}

// statsCmd returns the stats command
func statsCmd(store services.QuestionServiceInterface, logger *observability.Logger, db *sql.DB) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long:  `Show database statistics including country, question and fact counts.`,
		RunE:  runStats(store, logger, db),
	}
}

// runStats returns a function that shows database statistics
func runStats(store services.QuestionServiceInterface, logger *observability.Logger, db *sql.DB) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		// Log diagnostic information
		logger.Info(ctx, "Diagnostic info", map[string]interface{}{"config_file": os.Getenv("WORLDQUEST_CONFIG_FILE"), "database": getDatabaseInfo(db)})

		countries, err := store.ListCountries(ctx)
		if err != nil {
			logger.Error(ctx, "Failed to get country statistics", err, map[string]interface{}{})
			return contextutils.WrapError(err, "failed to get country statistics")
		}

		var questions, facts int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions").Scan(&questions); err != nil {
			return contextutils.WrapError(err, "failed to count questions")
		}
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM facts").Scan(&facts); err != nil {
			return contextutils.WrapError(err, "failed to count facts")
		}

		logger.Info(ctx, "Database statistics", map[string]interface{}{
			"total_countries": len(countries),
			"total_questions": questions,
			"total_facts":     facts,
			"database":        "PostgreSQL",
			"status":          "Connected",
		})

		return nil
	}
}
