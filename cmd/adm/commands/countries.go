// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"fmt"

	"worldquest/internal/dataset"
	"worldquest/internal/models"
	"worldquest/internal/observability"
	"worldquest/internal/services"
	contextutils "worldquest/internal/utils"

	"github.com/spf13/cobra"
)

// CountryCommands returns the country management commands
func CountryCommands(store services.QuestionServiceInterface, data *dataset.Service, logger *observability.Logger) *cobra.Command {
	countryCmd := &cobra.Command{
		Use:   "countries",
		Short: "Country management commands",
		Long: `Country management commands for the worldquest backend.

Available commands:
  load      - Load countries from the dataset into the database
  list      - List countries currently in the database`,
	}

	countryCmd.AddCommand(loadCountriesCmd(store, data, logger))
	countryCmd.AddCommand(listCountriesCmd(store, logger))

	return countryCmd
}

// loadCountriesCmd returns the load command
func loadCountriesCmd(store services.QuestionServiceInterface, data *dataset.Service, logger *observability.Logger) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load countries from the dataset",
		Long: `Load countries from the dataset JSON file into the database.

Dataset entries are resolved to ISO2 codes; continents, aggregates and
territories without a code are skipped. Existing countries are updated
in place. Use --clear to delete all countries (and their cascaded
questions) before loading.`,
		RunE: runLoadCountries(store, data, logger, &clear),
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Clear existing countries before loading")

	return cmd
}

// listCountriesCmd returns the list command
func listCountriesCmd(store services.QuestionServiceInterface, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List countries in the database",
		RunE:  runListCountries(store, logger),
	}
}

// runLoadCountries returns a function that loads countries from the dataset
func runLoadCountries(store services.QuestionServiceInterface, data *dataset.Service, logger *observability.Logger, clear *bool) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		if *clear {
			deleted, err := store.DeleteAllCountries(ctx)
			if err != nil {
				logger.Error(ctx, "Failed to clear countries", err, nil)
				return contextutils.WrapError(err, "failed to clear countries")
			}
			fmt.Printf("Cleared %d existing countries\n", deleted)
		}

		created := 0
		var skipped []string
		orderIndex := 0

		for _, name := range data.CountryNames() {
			if len(name) < 2 || dataset.SkipEntry(name) {
				continue
			}

			iso2, ok := dataset.ISOCode(name)
			if !ok {
				skipped = append(skipped, name)
				continue
			}

			country := &models.Country{
				ISO2:       iso2,
				Name:       name,
				OrderIndex: orderIndex,
			}
			if err := store.UpsertCountry(ctx, country); err != nil {
				logger.Error(ctx, "Failed to upsert country", err, map[string]interface{}{"country": name, "iso2": iso2})
				return contextutils.WrapErrorf(err, "failed to upsert country %q", name)
			}

			created++
			orderIndex++
		}

		fmt.Printf("Done! Loaded %d countries.\n", created)
		if len(skipped) > 0 {
			fmt.Printf("Skipped %d entries (no ISO code found): %v\n", len(skipped), skipped)
		}

		return nil
	}
}

// runListCountries returns a function that lists countries in the database
func runListCountries(store services.QuestionServiceInterface, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		countries, err := store.ListCountries(ctx)
		if err != nil {
			logger.Error(ctx, "Failed to list countries", err, nil)
			return contextutils.WrapError(err, "failed to list countries")
		}

		if len(countries) == 0 {
			fmt.Println("No countries loaded. Run 'adm countries load' first.")
			return nil
		}

		for _, c := range countries {
			count, err := store.CountQuestionsByCountry(ctx, c.ID)
			if err != nil {
				return contextutils.WrapErrorf(err, "failed to count questions for %s", c.ISO2)
			}
			fmt.Printf("%-2s  %-40s  %d questions\n", c.ISO2, c.Name, count)
		}
		fmt.Printf("\nTotal: %d countries\n", len(countries))

		return nil
	}
}
