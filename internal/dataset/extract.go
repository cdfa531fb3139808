package dataset

import (
	"strings"
	"time"

	"worldquest/internal/config"
	"worldquest/internal/models"
)

// usableYear applies the recency policy: reject future projections and
// statistics older than the configured maximum age. Undated metrics pass.
func usableYear(year *int, now int) bool {
	if year == nil {
		return true
	}
	if *year > now {
		return false
	}
	return now-*year <= config.MetricMaxAgeYears
}

// findMetricValue looks up a metric key across all categories of a country
// entry. Returns false when the key is absent everywhere.
func findMetricValue(data models.CountryData, key string) (models.MetricValue, bool) {
	for _, block := range data {
		if mv, ok := block[key]; ok {
			return mv, true
		}
	}
	return models.MetricValue{}, false
}

// ExtractPromptMetrics pulls the allow-listed metrics out of a country entry
// as a displayName keyed map, ready for serialization into a generation
// prompt. Extraction never fails; missing or stale metrics are omitted.
func ExtractPromptMetrics(data models.CountryData) map[string]models.MetricValue {
	now := time.Now().Year()
	metrics := make(map[string]models.MetricValue)

	for _, key := range InterestingMetrics {
		mv, ok := findMetricValue(data, key)
		if !ok || mv.Value == nil || !usableYear(mv.Year, now) {
			continue
		}
		metrics[displayName(key)] = mv
	}

	return metrics
}

// ExtractTemplateMetrics pulls the catalog metrics out of a country entry for
// the deterministic generator and the numeric consistency checks.
func ExtractTemplateMetrics(data models.CountryData) []models.Metric {
	now := time.Now().Year()
	var metrics []models.Metric

	for _, tm := range TemplateMetrics {
		mv, ok := findMetricValue(data, tm.Key)
		if !ok || mv.Value == nil || !usableYear(mv.Year, now) {
			continue
		}
		metrics = append(metrics, tm.AsMetric(*mv.Value, mv.Year))
	}

	return metrics
}

// CatalogEntry pairs a catalog metric with its observed value for one
// country, keeping the formatting info the deterministic generator needs.
type CatalogEntry struct {
	Info  TemplateMetric
	Value float64
	Year  *int
}

// ExtractCatalogEntries pulls the catalog metrics out of a country entry
// with their rendering rules attached.
func ExtractCatalogEntries(data models.CountryData) []CatalogEntry {
	now := time.Now().Year()
	var entries []CatalogEntry

	for _, tm := range TemplateMetrics {
		mv, ok := findMetricValue(data, tm.Key)
		if !ok || mv.Value == nil || !usableYear(mv.Year, now) {
			continue
		}
		entries = append(entries, CatalogEntry{Info: tm, Value: *mv.Value, Year: mv.Year})
	}

	return entries
}

// displayName turns a snake_case metric key into a readable label.
func displayName(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
