package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldquest/internal/config"
	"worldquest/internal/models"
	"worldquest/internal/observability"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func newTestService(t *testing.T, content string) *Service {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "country_stats.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	svc := NewService(&config.DatasetConfig{Path: path}, logger)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

const sampleDataset = `{
	"Cote d'Ivoire": {
		"Economy": {
			"gdppercapita_us_inflation_adjusted": {"value": 2300, "year": 2021}
		}
	},
	"Portugal": {
		"Health": {
			"life_expectancy_female": {"value": 84.6, "year": 2022}
		},
		"Economy": {
			"gdppercapita_us_inflation_adjusted": {"value": 24500, "year": 2022}
		}
	}
}`

func TestService_Load_MissingFile(t *testing.T) {
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	svc := NewService(&config.DatasetConfig{Path: "/nonexistent/stats.json"}, logger)
	err := svc.Load(context.Background())
	require.Error(t, err)
	assert.False(t, svc.Loaded())
}

func TestService_CountryData_CanonicalName(t *testing.T) {
	svc := newTestService(t, sampleDataset)

	data, key, ok := svc.CountryData("Portugal")
	require.True(t, ok)
	assert.Equal(t, "Portugal", key)
	assert.Contains(t, data, "Health")
}

func TestService_CountryData_AliasResolution(t *testing.T) {
	svc := newTestService(t, sampleDataset)

	// Dataset keyed under "Cote d'Ivoire", requested as "Ivory Coast"
	data, key, ok := svc.CountryData("Ivory Coast")
	require.True(t, ok)
	assert.Equal(t, "Cote d'Ivoire", key)

	metrics := ExtractTemplateMetrics(data)
	require.NotEmpty(t, metrics)
	assert.Equal(t, "GDP per capita", metrics[0].Label)
}

func TestService_CountryData_CaseVariants(t *testing.T) {
	svc := newTestService(t, sampleDataset)

	_, key, ok := svc.CountryData("portugal")
	require.True(t, ok)
	assert.Equal(t, "Portugal", key)

	_, _, ok = svc.CountryData("Atlantis")
	assert.False(t, ok)
}

func TestService_CountryNames_Sorted(t *testing.T) {
	svc := newTestService(t, sampleDataset)
	names := svc.CountryNames()
	assert.Equal(t, []string{"Cote d'Ivoire", "Portugal"}, names)
}

func TestExtractPromptMetrics_RecencyPolicy(t *testing.T) {
	now := time.Now().Year()
	data := models.CountryData{
		"Economy": models.CategoryBlock{
			"gdppercapita_us_inflation_adjusted": {Value: floatPtr(2300), Year: intPtr(now - 2)},
			"inflation_annual_percent":           {Value: floatPtr(5.2), Year: intPtr(now + 1)},  // future projection
			"exports_percent_of_gdp":             {Value: floatPtr(31.0), Year: intPtr(now - 20)}, // stale
			"tax_revenue_percent_of_gdp":         {Value: nil, Year: intPtr(now - 1)},             // no usable value
			"inequality_index_gini":              {Value: floatPtr(41.5)},                         // undated, kept
		},
	}

	metrics := ExtractPromptMetrics(data)
	assert.Contains(t, metrics, "Gdppercapita Us Inflation Adjusted")
	assert.Contains(t, metrics, "Inequality Index Gini")
	assert.NotContains(t, metrics, "Inflation Annual Percent")
	assert.NotContains(t, metrics, "Exports Percent Of Gdp")
	assert.NotContains(t, metrics, "Tax Revenue Percent Of Gdp")
}

func TestExtractTemplateMetrics_EmptyWhenNothingUsable(t *testing.T) {
	data := models.CountryData{
		"Economy": models.CategoryBlock{
			"some_unknown_metric": {Value: floatPtr(12)},
		},
	}
	metrics := ExtractTemplateMetrics(data)
	assert.Empty(t, metrics)
}

func TestExtractTemplateMetrics_CarriesCatalogInfo(t *testing.T) {
	now := time.Now().Year()
	data := models.CountryData{
		"Health": models.CategoryBlock{
			"life_expectancy_female": {Value: floatPtr(84.6), Year: intPtr(now - 1)},
		},
	}
	metrics := ExtractTemplateMetrics(data)
	require.Len(t, metrics, 1)
	m := metrics[0]
	assert.Equal(t, "female life expectancy", m.Label)
	assert.Equal(t, "years", m.Unit)
	assert.Equal(t, 84.6, m.Value)
	require.NotNil(t, m.Year)
	assert.Equal(t, now-1, *m.Year)
}

func TestISOCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		ok   bool
	}{
		{"Portugal", "PT", true},
		{"Ivory Coast", "CI", true},
		{"Cote d'Ivoire", "CI", true},
		{"USA", "US", true},
		{"Atlantis", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, ok := ISOCode(tc.name)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestSkipEntry(t *testing.T) {
	assert.True(t, SkipEntry("World"))
	assert.True(t, SkipEntry("Europe"))
	assert.False(t, SkipEntry("Portugal"))
}

func TestModelCategory(t *testing.T) {
	for in, want := range map[string]string{
		CategoryEconomy:       "economic",
		CategoryHealth:        "physical",
		CategoryGeography:     "physical",
		CategoryEnvironment:   "environmental",
		CategoryPeopleSociety: "mental",
		"Something Else":      "mental",
	} {
		assert.Equal(t, want, ModelCategory(in), fmt.Sprintf("category %s", in))
	}
}
