package dataset

import (
	"strconv"
	"strings"

	"worldquest/internal/models"
)

// TemplateMetric describes an allow-listed metric usable by the deterministic
// question generator: how to label it, format it, and which category it
// belongs to.
type TemplateMetric struct {
	Key      string
	Label    string
	Unit     string
	Prefix   string
	Decimals int
	Category string
}

// Category names used by the dataset JSON.
const (
	CategoryPeopleSociety = "People & Society"
	CategoryEconomy       = "Economy"
	CategoryHealth        = "Health"
	CategoryEnvironment   = "Environment"
	CategoryGeography     = "Geography & Physical"
)

// ModelCategory maps a dataset category to the application category name.
func ModelCategory(datasetCategory string) string {
	switch datasetCategory {
	case CategoryEconomy:
		return "economic"
	case CategoryHealth, CategoryGeography:
		return "physical"
	case CategoryEnvironment:
		return "environmental"
	default:
		return "mental"
	}
}

// TemplateMetrics is the static catalog of metrics with high coverage and a
// stable numeric rendering. Never mutated after init.
var TemplateMetrics = []TemplateMetric{
	{Key: "life_expectancy_female", Label: "female life expectancy", Unit: "years", Decimals: 1, Category: CategoryHealth},
	{Key: "life_expectancy_male", Label: "male life expectancy", Unit: "years", Decimals: 1, Category: CategoryHealth},
	{Key: "median_age_years", Label: "median age", Unit: "years", Decimals: 1, Category: CategoryPeopleSociety},
	{Key: "population_density_per_square_km", Label: "population density", Unit: "people per km²", Decimals: 0, Category: CategoryGeography},
	{Key: "urban_population_percent_of_total", Label: "urban population", Unit: "%", Decimals: 1, Category: CategoryPeopleSociety},
	{Key: "alcohol_consumption_per_adult_15plus_litres", Label: "alcohol consumption per adult", Unit: "litres/year", Decimals: 1, Category: CategoryHealth},
	{Key: "literacy_rate_adult", Label: "adult literacy rate", Unit: "%", Decimals: 1, Category: CategoryPeopleSociety},
	{Key: "mean_years_in_school_men_25_years_and_older", Label: "average years of schooling (men)", Unit: "years", Decimals: 1, Category: CategoryPeopleSociety},
	{Key: "internet_users", Label: "internet usage rate", Unit: "%", Decimals: 1, Category: CategoryPeopleSociety},
	{Key: "cell_phones_per_100_people", Label: "cell phones per 100 people", Unit: "", Decimals: 0, Category: CategoryPeopleSociety},
	{Key: "cars_trucks_and_buses_per_1000_persons", Label: "vehicles per 1000 people", Unit: "", Decimals: 0, Category: CategoryEconomy},
	{Key: "forest_coverage_percent", Label: "forest coverage", Unit: "%", Decimals: 1, Category: CategoryEnvironment},
	{Key: "co2_emissions_tonnes_per_person", Label: "CO2 emissions per capita", Unit: "tonnes", Decimals: 1, Category: CategoryEnvironment},
	{Key: "agricultural_land_percent_of_land_area", Label: "agricultural land", Unit: "%", Decimals: 1, Category: CategoryEnvironment},
	{Key: "gdppercapita_us_inflation_adjusted", Label: "GDP per capita", Unit: "USD", Prefix: "$", Decimals: 0, Category: CategoryEconomy},
	{Key: "inequality_index_gini", Label: "inequality index (Gini)", Unit: "", Decimals: 1, Category: CategoryEconomy},
	{Key: "aged_15plus_unemployment_rate_percent", Label: "unemployment rate", Unit: "%", Decimals: 1, Category: CategoryEconomy},
	{Key: "murder_per_100000_people", Label: "murder rate", Unit: "per 100,000", Decimals: 1, Category: CategoryPeopleSociety},
	{Key: "traffic_deaths_per_100000_people", Label: "traffic deaths", Unit: "per 100,000", Decimals: 1, Category: CategoryHealth},
	{Key: "military_expenditure_percent_of_gdp", Label: "military spending", Unit: "% of GDP", Decimals: 1, Category: CategoryEconomy},
	{Key: "pump_price_for_gasoline_us_per_liter", Label: "gasoline price", Unit: "USD/liter", Prefix: "$", Decimals: 2, Category: CategoryEconomy},
	{Key: "working_hours_per_week", Label: "average working hours", Unit: "hours/week", Decimals: 1, Category: CategoryEconomy},
}

// InterestingMetrics is the broader allow-list serialized into generation
// backend prompts. Keys not present for a country are simply omitted.
var InterestingMetrics = []string{
	// Demographics & population
	"life_expectancy_female",
	"life_expectancy_male",
	"median_age_years",
	"population_density_per_square_km",
	"urban_population_percent_of_total",
	"population_growth_annual_percent",
	"age_at_1st_marriage_women",
	"total_population_with_projections",

	// Health & lifestyle
	"infant_mortality_rate_per_1000_births",
	"medical_doctors_per_1000_people",
	"alcohol_consumption_per_adult_15plus_litres",
	"smoking_adults_percent_of_population_over_age_15",
	"body_mass_index_bmi_men_kgperm2",
	"body_mass_index_bmi_women_kgperm2",
	"food_supply_kilocalories_per_person_and_day",
	"sugar_per_person_g_per_day",
	"births_attended_by_skilled_health_staff_percent_of_total",

	// Economy & wealth
	"gdppercapita_us_inflation_adjusted",
	"inequality_index_gini",
	"inflation_annual_percent",
	"exports_percent_of_gdp",
	"imports_percent_of_gdp",
	"tax_revenue_percent_of_gdp",
	"total_number_of_dollar_billionaires",
	"extreme_poverty_percent_people_below_300_a_day",

	// Employment
	"aged_15plus_unemployment_rate_percent",
	"agriculture_workers_percent_of_employment",
	"industry_workers_percent_of_employment",
	"service_workers_percent_of_employment",
	"working_hours_per_week",

	// Education
	"literacy_rate_adult",
	"mean_years_in_school_men_25_years_and_older",
	"mean_years_in_school_women_25_years_and_older",
	"children_out_of_school_primary",

	// Technology & infrastructure
	"internet_users",
	"cell_phones_per_100_people",
	"broadband_subscribers_per_100_people",
	"cars_trucks_and_buses_per_1000_persons",
	"electricity_use_per_person",
	"roads_paved_percent_of_total_roads",

	// Environment & energy
	"forest_coverage_percent",
	"co2_emissions_tonnes_per_person",
	"renewable_water_cu_meters_per_person",
	"agricultural_land_percent_of_land_area",

	// Safety & security
	"murder_per_100000_people",
	"traffic_deaths_per_100000_people",
	"suicide_per_100000_people",

	// Military
	"military_expenditure_percent_of_gdp",
	"armed_forces_personnel_percent_of_labor_force",

	// Quirky
	"pump_price_for_gasoline_us_per_liter",
	"bad_teeth_per_child_12_yr",
	"teen_fertility_rate_births_per_1000_women_ages_15_19",
	"contraceptive_use_percent_of_women_ages_15_49",
}

// FormatValue renders a metric value in the catalog's style for this metric:
// fixed decimal places with the currency prefix, and thousands grouping for
// whole-number currency amounts.
func (tm TemplateMetric) FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', tm.Decimals, 64)
	if tm.Prefix == "$" && tm.Decimals == 0 {
		s = groupThousands(s)
	}
	return tm.Prefix + s
}

// FormatChoice renders a formatted value as an answer choice, appending the
// unit unless the formatted value already carries it.
func (tm TemplateMetric) FormatChoice(v float64) string {
	formatted := tm.FormatValue(v)
	if tm.Unit != "" && !strings.Contains(formatted, tm.Unit) {
		formatted += " " + tm.Unit
	}
	return formatted
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}

// AsMetric converts a catalog entry plus an observed value into a flattened
// metric.
func (tm TemplateMetric) AsMetric(value float64, year *int) models.Metric {
	return models.Metric{
		Key:      tm.Key,
		Label:    tm.Label,
		Category: tm.Category,
		Value:    value,
		Year:     year,
		Unit:     tm.Unit,
	}
}
