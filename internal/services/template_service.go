package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"worldquest/internal/dataset"
	"worldquest/internal/models"
	"worldquest/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// TemplateService generates questions straight from the dataset catalog when
// the AI backend is unavailable or returned nothing usable. No external
// calls, no cost.
type TemplateService struct {
	logger *observability.Logger
}

// NewTemplateService creates a template question generator.
func NewTemplateService(logger *observability.Logger) *TemplateService {
	return &TemplateService{logger: logger}
}

// GenerateQuestions builds up to count drafts for a country, each from a
// different catalog metric. Returns fewer drafts when the country has too
// few usable metrics.
func (s *TemplateService) GenerateQuestions(ctx context.Context, country string, data models.CountryData, count int) []models.QuestionDraft {
	ctx, span := observability.TraceQuestionFunction(ctx, "generate_template_questions",
		observability.AttributeCountry(country),
		observability.AttributeLimit(count),
	)
	defer span.End()

	entries := dataset.ExtractCatalogEntries(data)
	if len(entries) == 0 {
		s.logger.Warn(ctx, "No catalog metrics available for template generation", map[string]interface{}{
			"country": country,
		})
		return nil
	}

	drafts := make([]models.QuestionDraft, 0, count)
	used := make(map[string]struct{})

	for len(drafts) < count {
		entry, ok := pickUnusedEntry(entries, used)
		if !ok {
			break
		}
		used[entry.Info.Key] = struct{}{}
		drafts = append(drafts, buildValueDraft(country, entry))
	}

	span.SetAttributes(attribute.Int("questions.generated", len(drafts)))
	s.logger.Info(ctx, "Generated template questions", map[string]interface{}{
		"country": country,
		"count":   len(drafts),
	})
	return drafts
}

// pickUnusedEntry selects a random catalog entry whose metric has not been
// used this round.
func pickUnusedEntry(entries []dataset.CatalogEntry, used map[string]struct{}) (dataset.CatalogEntry, bool) {
	available := make([]dataset.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if _, done := used[e.Info.Key]; !done {
			available = append(available, e)
		}
	}
	if len(available) == 0 {
		return dataset.CatalogEntry{}, false
	}
	return available[rand.Intn(len(available))], true
}

// buildValueDraft synthesizes a "What is the X in Country?" draft from one
// catalog entry.
func buildValueDraft(country string, entry dataset.CatalogEntry) models.QuestionDraft {
	prompt := fmt.Sprintf("What is the %s in %s?", entry.Info.Label, country)
	if entry.Year != nil {
		prompt = fmt.Sprintf("What is the %s in %s (as of %d)?", entry.Info.Label, country, *entry.Year)
	}

	choices, correctIndex := synthesizeChoices(entry)

	explanation := fmt.Sprintf("The %s in %s is %s", entry.Info.Label, country, entry.Info.FormatValue(entry.Value))
	if entry.Info.Unit != "" {
		explanation += " " + entry.Info.Unit
	}
	explanation += "."
	if entry.Year != nil {
		explanation += fmt.Sprintf(" (Data from %d)", *entry.Year)
	}

	return models.QuestionDraft{
		Prompt:       prompt,
		Choices:      choices,
		CorrectIndex: correctIndex,
		Explanation:  explanation,
		Difficulty:   1,
		Category:     dataset.ModelCategory(entry.Info.Category),
	}
}

// synthesizeChoices builds 3 plausible distractors around the true value and
// shuffles them in with it. Distractors are deduplicated by their rendered
// string rather than their raw value: two distinct values can format to the
// same text once precision is applied, and a choice set must never show the
// same option twice.
func synthesizeChoices(entry dataset.CatalogEntry) ([]string, int) {
	value := entry.Value
	trueFormatted := entry.Info.FormatChoice(value)

	candidates := make([]float64, 0, 8)
	for _, pct := range []float64{-0.30, -0.15, 0.15, 0.30} {
		if v := value * (1 + pct); v > 0 {
			candidates = append(candidates, v)
		}
	}
	if math.Abs(value) < 10 {
		for _, off := range []float64{-2, -1, 1, 2} {
			if v := value + off; v > 0 {
				candidates = append(candidates, v)
			}
		}
	}

	seen := map[string]struct{}{trueFormatted: {}}
	distractors := make([]string, 0, len(candidates))
	for _, v := range candidates {
		f := entry.Info.FormatChoice(v)
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		distractors = append(distractors, f)
	}

	// When perturbation collapses under formatting, step the true value by
	// whole precision units until enough distinct renderings exist
	step := math.Pow(10, -float64(entry.Info.Decimals))
	for k := 1; len(distractors) < 3; k++ {
		f := entry.Info.FormatChoice(value + float64(k)*step)
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		distractors = append(distractors, f)
	}

	rand.Shuffle(len(distractors), func(i, j int) {
		distractors[i], distractors[j] = distractors[j], distractors[i]
	})

	choices := append(distractors[:3:3], trueFormatted)
	rand.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	correctIndex := 0
	for i, c := range choices {
		if strings.EqualFold(c, trueFormatted) {
			correctIndex = i
			break
		}
	}
	return choices, correctIndex
}
