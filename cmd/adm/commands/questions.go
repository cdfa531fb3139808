package commands

import (
	"context"
	"fmt"
	"strings"

	"worldquest/internal/observability"
	"worldquest/internal/services"
	contextutils "worldquest/internal/utils"

	"github.com/spf13/cobra"
)

// QuestionCommands returns the question pool management commands
func QuestionCommands(store services.QuestionServiceInterface, pool services.PoolServiceInterface, logger *observability.Logger) *cobra.Command {
	questionCmd := &cobra.Command{
		Use:   "questions",
		Short: "Question pool management commands",
		Long: `Question pool management commands for the worldquest backend.

Available commands:
  clear     - Delete cached questions so they regenerate on next request
  generate  - Fill question pools ahead of time`,
	}

	questionCmd.AddCommand(clearQuestionsCmd(store, logger))
	questionCmd.AddCommand(generateQuestionsCmd(store, pool, logger))

	return questionCmd
}

// clearQuestionsCmd returns the clear command
func clearQuestionsCmd(store services.QuestionServiceInterface, logger *observability.Logger) *cobra.Command {
	var countryCode string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached questions",
		Long: `Delete cached questions so they regenerate on the next quiz request.

Without flags all questions are deleted. Use --country to clear a single
country's pool.`,
		RunE: runClearQuestions(store, logger, &countryCode),
	}

	cmd.Flags().StringVar(&countryCode, "country", "", "Only clear questions for a specific country (ISO2 code, e.g. PT)")

	return cmd
}

// generateQuestionsCmd returns the generate command
func generateQuestionsCmd(store services.QuestionServiceInterface, pool services.PoolServiceInterface, logger *observability.Logger) *cobra.Command {
	var countryCode string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill question pools ahead of time",
		Long: `Fill question pools ahead of time instead of on first request.

Without flags every country in the database is topped up. Use --country
to fill a single country's pool.`,
		RunE: runGenerateQuestions(store, pool, logger, &countryCode),
	}

	cmd.Flags().StringVar(&countryCode, "country", "", "Only generate questions for a specific country (ISO2 code, e.g. PT)")

	return cmd
}

// runClearQuestions returns a function that deletes cached questions
func runClearQuestions(store services.QuestionServiceInterface, logger *observability.Logger, countryCode *string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		if *countryCode != "" {
			iso2 := strings.ToUpper(strings.TrimSpace(*countryCode))
			country, err := store.CountryByISO2(ctx, iso2)
			if err != nil {
				logger.Error(ctx, "Failed to look up country", err, map[string]interface{}{"iso2": iso2})
				return contextutils.WrapErrorf(err, "failed to look up country %s", iso2)
			}

			deleted, err := store.DeleteQuestionsByCountry(ctx, country.ID)
			if err != nil {
				return contextutils.WrapErrorf(err, "failed to delete questions for %s", iso2)
			}
			fmt.Printf("Deleted %d questions for %s\n", deleted, iso2)
		} else {
			deleted, err := store.DeleteAllQuestions(ctx)
			if err != nil {
				return contextutils.WrapError(err, "failed to delete questions")
			}
			fmt.Printf("Deleted all %d cached questions\n", deleted)
		}

		fmt.Println("Questions will regenerate on the next quiz request")
		return nil
	}
}

// runGenerateQuestions returns a function that fills question pools
func runGenerateQuestions(store services.QuestionServiceInterface, pool services.PoolServiceInterface, logger *observability.Logger, countryCode *string) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		if *countryCode != "" {
			iso2 := strings.ToUpper(strings.TrimSpace(*countryCode))
			country, err := store.CountryByISO2(ctx, iso2)
			if err != nil {
				logger.Error(ctx, "Failed to look up country", err, map[string]interface{}{"iso2": iso2})
				return contextutils.WrapErrorf(err, "failed to look up country %s", iso2)
			}

			added, err := pool.EnsurePool(ctx, country)
			if err != nil {
				return contextutils.WrapErrorf(err, "failed to fill pool for %s", iso2)
			}
			fmt.Printf("%s: added %d questions\n", iso2, added)
			return nil
		}

		countries, err := store.ListCountries(ctx)
		if err != nil {
			return contextutils.WrapError(err, "failed to list countries")
		}
		if len(countries) == 0 {
			fmt.Println("No countries loaded. Run 'adm countries load' first.")
			return nil
		}

		total := 0
		for i := range countries {
			added, err := pool.EnsurePool(ctx, &countries[i])
			if err != nil {
				logger.Error(ctx, "Failed to fill pool", err, map[string]interface{}{"country": countries[i].Name, "iso2": countries[i].ISO2})
				continue
			}
			if added > 0 {
				fmt.Printf("%s: added %d questions\n", countries[i].ISO2, added)
			}
			total += added
		}
		fmt.Printf("Done! Added %d questions across %d countries.\n", total, len(countries))

		return nil
	}
}
