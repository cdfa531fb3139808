package services

import (
	"context"
	"testing"

	"worldquest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gdpMetric(value float64) []models.Metric {
	return []models.Metric{
		{Key: "gdppercapita_us_inflation_adjusted", Label: "GDP per capita", Category: "Economy", Value: value, Unit: "USD"},
	}
}

func TestValidateAndRepair_RepairsCorrectIndex(t *testing.T) {
	svc := NewValidationService(testLogger())

	draft := models.QuestionDraft{
		Prompt:       "What is the GDP per capita in Madagascar?",
		Choices:      []string{"1900", "2100", "2300", "2600"},
		CorrectIndex: 0,
		Explanation:  "Madagascar remains one of the poorer economies in the region.",
		Difficulty:   2,
	}

	repaired, err := svc.ValidateAndRepair(context.Background(), draft, gdpMetric(2300))
	require.NoError(t, err)
	assert.Equal(t, 2, repaired.CorrectIndex)
	assert.Equal(t, draft.Prompt, repaired.Prompt)
	assert.Equal(t, draft.Choices, repaired.Choices)
	assert.Equal(t, draft.Explanation, repaired.Explanation)
	assert.Equal(t, draft.Difficulty, repaired.Difficulty)
}

func TestValidateAndRepair_KeepsCorrectIndexWhenRight(t *testing.T) {
	svc := NewValidationService(testLogger())

	draft := models.QuestionDraft{
		Prompt:       "What is the GDP per capita in Madagascar?",
		Choices:      []string{"1900", "2100", "2300", "2600"},
		CorrectIndex: 2,
	}

	repaired, err := svc.ValidateAndRepair(context.Background(), draft, gdpMetric(2300))
	require.NoError(t, err)
	assert.Equal(t, 2, repaired.CorrectIndex)
}

func TestValidateAndRepair_RejectsWhenNoChoiceWithinTolerance(t *testing.T) {
	svc := NewValidationService(testLogger())

	draft := models.QuestionDraft{
		Prompt:       "What is the GDP per capita in Madagascar?",
		Choices:      []string{"100", "200", "300", "400"},
		CorrectIndex: 0,
	}

	_, err := svc.ValidateAndRepair(context.Background(), draft, gdpMetric(2300))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tolerance")
}

func TestValidateAndRepair_StructuralFailures(t *testing.T) {
	svc := NewValidationService(testLogger())

	tests := []struct {
		name  string
		draft models.QuestionDraft
	}{
		{
			name: "three choices",
			draft: models.QuestionDraft{
				Prompt:  "What is the GDP per capita in Madagascar?",
				Choices: []string{"1900", "2100", "2300"},
			},
		},
		{
			name: "duplicate choices",
			draft: models.QuestionDraft{
				Prompt:  "What is the GDP per capita in Madagascar?",
				Choices: []string{"2300", "2300", "2100", "2600"},
			},
		},
		{
			name: "index out of range",
			draft: models.QuestionDraft{
				Prompt:       "What is the GDP per capita in Madagascar?",
				Choices:      []string{"1900", "2100", "2300", "2600"},
				CorrectIndex: 4,
			},
		},
		{
			name: "empty prompt",
			draft: models.QuestionDraft{
				Choices: []string{"1900", "2100", "2300", "2600"},
			},
		},
		{
			name: "blank choice",
			draft: models.QuestionDraft{
				Prompt:  "What is the GDP per capita in Madagascar?",
				Choices: []string{"1900", "  ", "2300", "2600"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAndRepair(context.Background(), tt.draft, gdpMetric(2300))
			assert.Error(t, err)
		})
	}
}

func TestValidateAndRepair_UnverifiablePromptAccepted(t *testing.T) {
	svc := NewValidationService(testLogger())

	draft := models.QuestionDraft{
		Prompt:       "Which dance style originated in this country?",
		Choices:      []string{"Samba", "Tango", "Flamenco", "Salsa"},
		CorrectIndex: 1,
	}

	repaired, err := svc.ValidateAndRepair(context.Background(), draft, gdpMetric(2300))
	require.NoError(t, err)
	assert.Equal(t, draft.Choices, repaired.Choices)
	assert.Equal(t, 1, repaired.CorrectIndex)
}

func TestValidateAndRepair_TextualChoicesWithMatchedMetric(t *testing.T) {
	svc := NewValidationService(testLogger())

	draft := models.QuestionDraft{
		Prompt:       "How would you describe the GDP per capita trend here?",
		Choices:      []string{"Rising fast", "Flat", "Falling", "Volatile"},
		CorrectIndex: 0,
	}

	repaired, err := svc.ValidateAndRepair(context.Background(), draft, gdpMetric(2300))
	require.NoError(t, err)
	assert.Equal(t, 0, repaired.CorrectIndex)
}

func TestValidateAndRepair_RepairsPercentInExplanation(t *testing.T) {
	svc := NewValidationService(testLogger())

	metrics := []models.Metric{
		{Key: "urban_population_percent_of_total", Label: "urban population", Category: "People & Society", Value: 46.0, Unit: "%"},
	}
	draft := models.QuestionDraft{
		Prompt:       "What share of the urban population lives in cities?",
		Choices:      []string{"30%", "40%", "46%", "60%"},
		CorrectIndex: 2,
		Explanation:  "Roughly 44% of residents live in urban areas, a figure that keeps climbing.",
	}

	repaired, err := svc.ValidateAndRepair(context.Background(), draft, metrics)
	require.NoError(t, err)
	assert.Equal(t, "Roughly 46% of residents live in urban areas, a figure that keeps climbing.", repaired.Explanation)
}

func TestValidateAndRepair_RejectsChoicesThatCollideAfterNormalization(t *testing.T) {
	svc := NewValidationService(testLogger())

	metrics := []models.Metric{
		{Key: "urban_population_percent_of_total", Label: "urban population", Category: "People & Society", Value: 46.1, Unit: "%"},
	}
	draft := models.QuestionDraft{
		Prompt:       "What is the urban population share?",
		Choices:      []string{"45.9 %", "46.1 %", "52.3 %", "38.2 %"},
		CorrectIndex: 1,
	}

	// 45.9 and 46.1 both round to "46 %"; the draft must not survive
	_, err := svc.ValidateAndRepair(context.Background(), draft, metrics)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate choice")
}

func TestValidateAndRepair_CollisionRejectedEvenWhenUnverifiable(t *testing.T) {
	svc := NewValidationService(testLogger())

	draft := models.QuestionDraft{
		Prompt:       "How many something-or-others are there?",
		Choices:      []string{"12.4", "12.2", "19.8", "25.1"},
		CorrectIndex: 0,
	}

	_, err := svc.ValidateAndRepair(context.Background(), draft, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate choice")
}

func TestNormalizeChoices(t *testing.T) {
	tests := []struct {
		name    string
		choices []string
		want    []string
	}{
		{
			name:    "decimals rounded to whole",
			choices: []string{"69.5 years", "72.1 years", "75.8 years", "80.2 years"},
			want:    []string{"70 years", "72 years", "76 years", "80 years"},
		},
		{
			name:    "all whole numbers untouched",
			choices: []string{"1900", "2100", "2300", "2600"},
			want:    []string{"1900", "2100", "2300", "2600"},
		},
		{
			name:    "mixed textual choices untouched",
			choices: []string{"46.2", "About half", "60.1", "75.0"},
			want:    []string{"46.2", "About half", "60.1", "75.0"},
		},
		{
			name:    "currency prefix preserved",
			choices: []string{"$1,200.50", "$1,500.25", "$1,800.00", "$2,100.75"},
			want:    []string{"$1200", "$1500", "$1800", "$2101"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeChoices(tt.choices))
		})
	}
}

func TestTolerance(t *testing.T) {
	assert.InDelta(t, 345.0, Tolerance(2300), 0.001)
	assert.InDelta(t, 2.0, Tolerance(5), 0.001)
	assert.InDelta(t, 2.0, Tolerance(0.5), 0.001)
}

func TestRepairPercentNumbers(t *testing.T) {
	// actual 45.96, corrected choice value 46, tolerance ~6.9
	tol := Tolerance(45.96)

	got := repairPercentNumbers("Around 44.5% of the land is covered.", 45.96, 46, tol)
	assert.Equal(t, "Around 46.0% of the land is covered.", got)

	// integer style preserved
	got = repairPercentNumbers("Around 44% of the land is covered.", 45.96, 46, tol)
	assert.Equal(t, "Around 46% of the land is covered.", got)

	// numbers outside tolerance stay put
	got = repairPercentNumbers("It grew by 12% over a decade.", 45.96, 46, tol)
	assert.Equal(t, "It grew by 12% over a decade.", got)

	// numbers without a percent sign stay put
	got = repairPercentNumbers("About 44.5 million people live here.", 45.96, 46, tol)
	assert.Equal(t, "About 44.5 million people live here.", got)
}
