package models

// MetricValue is a single statistic for a country, optionally dated. Value
// is a pointer so a dataset entry without a usable number is detectable
// rather than silently zero.
type MetricValue struct {
	Value *float64 `json:"value"`
	Year  *int     `json:"year,omitempty"`
}

// CategoryBlock maps metric keys to their values within one category.
type CategoryBlock map[string]MetricValue

// CountryData maps category names to their metric blocks for one country.
type CountryData map[string]CategoryBlock

// Dataset maps country names to their statistics.
type Dataset map[string]CountryData

// Metric is a flattened, human-readable statistic extracted from the
// dataset for prompt assembly and answer checking.
type Metric struct {
	Key      string
	Label    string
	Category string
	Value    float64
	Year     *int
	Unit     string
}
