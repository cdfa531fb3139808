package services

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"worldquest/internal/config"
	"worldquest/internal/models"
	"worldquest/internal/observability"
	contextutils "worldquest/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// metricKeywords maps domain keywords found in prompt text to a substring of
// the metric label they refer to. Matching is two-stage: keyword against the
// prompt, then the label hint against the extracted metric labels.
var metricKeywords = []struct {
	keyword string
	label   string
}{
	{"life expectancy", "life expectancy"},
	{"gdp", "GDP per capita"},
	{"median age", "median age"},
	{"population density", "population density"},
	{"urban", "urban population"},
	{"alcohol", "alcohol"},
	{"literacy", "literacy"},
	{"schooling", "schooling"},
	{"school", "schooling"},
	{"internet", "internet"},
	{"cell phone", "cell phones"},
	{"mobile phone", "cell phones"},
	{"vehicle", "vehicles"},
	{"car", "vehicles"},
	{"forest", "forest"},
	{"co2", "CO2"},
	{"carbon", "CO2"},
	{"agricultural", "agricultural land"},
	{"gini", "Gini"},
	{"inequality", "Gini"},
	{"unemployment", "unemployment"},
	{"murder", "murder"},
	{"homicide", "murder"},
	{"traffic", "traffic deaths"},
	{"military", "military spending"},
	{"gasoline", "gasoline"},
	{"petrol", "gasoline"},
	{"working hours", "working hours"},
}

// percentNumberRe finds numeric substrings immediately adjacent to a percent
// sign in free text.
var percentNumberRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

// ValidationService is the numeric consistency and repair stage for raw
// drafts. It fails closed on structural violations and on answers no choice
// can plausibly back, and silently repairs a wrong correct_index.
type ValidationService struct {
	logger *observability.Logger
}

// NewValidationService creates a validation service.
func NewValidationService(logger *observability.Logger) *ValidationService {
	return &ValidationService{logger: logger}
}

// ValidateAndRepair runs the two-stage validation over one draft against the
// extracted metrics. A nil error means the (possibly repaired) returned draft
// is safe to publish.
func (s *ValidationService) ValidateAndRepair(ctx context.Context, draft models.QuestionDraft, metrics []models.Metric) (result0 models.QuestionDraft, err error) {
	ctx, span := observability.TraceValidationFunction(ctx, "validate_and_repair",
		attribute.Int("draft.choices", len(draft.Choices)),
	)
	defer observability.FinishSpan(span, &err)

	// Stage 1: structural, fails closed
	if err := validateStructure(draft); err != nil {
		span.SetAttributes(attribute.String("validation.result", "structural_violation"))
		return models.QuestionDraft{}, err
	}

	// Precision normalization runs before any text repair so the repaired
	// fields agree with the rendered choices. Rounding can collapse two
	// near-identical choices into one rendering; such drafts are unusable.
	draft.Choices = NormalizeChoices(draft.Choices)
	if derr := distinctChoices(draft.Choices); derr != nil {
		s.logger.Warn(ctx, "Precision normalization collapsed two choices", map[string]interface{}{
			"prompt": draft.Prompt,
			"error":  derr.Error(),
		})
		span.SetAttributes(attribute.String("validation.result", "normalization_collision"))
		return models.QuestionDraft{}, derr
	}

	// Stage 2: numeric consistency, only when the prompt is traceable to a
	// metric
	metric := matchMetric(draft.Prompt, metrics)
	if metric == nil {
		span.SetAttributes(attribute.String("validation.result", "unverifiable"))
		return draft, nil
	}
	span.SetAttributes(observability.AttributeMetric(metric.Key))

	parsed := make([]float64, len(draft.Choices))
	for i, c := range draft.Choices {
		v, ok := contextutils.ParseNumericToken(c)
		if !ok {
			// Mixed textual choices cannot be checked against the metric
			span.SetAttributes(attribute.String("validation.result", "unverifiable_choices"))
			return draft, nil
		}
		parsed[i] = v
	}

	tolerance := Tolerance(metric.Value)
	best := 0
	bestDiff := math.Abs(parsed[0] - metric.Value)
	for i := 1; i < len(parsed); i++ {
		if diff := math.Abs(parsed[i] - metric.Value); diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}

	if bestDiff > tolerance {
		s.logger.Error(ctx, "No choice within tolerance of dataset value", nil, map[string]interface{}{
			"metric":    metric.Key,
			"actual":    metric.Value,
			"tolerance": tolerance,
			"best_diff": bestDiff,
		})
		span.SetAttributes(attribute.String("validation.result", "data_mismatch"))
		return models.QuestionDraft{}, contextutils.WrapErrorf(contextutils.ErrDataMismatch,
			"no choice within tolerance %.2f of value %.2f for metric %s", tolerance, metric.Value, metric.Key)
	}

	if best != draft.CorrectIndex {
		s.logger.Warn(ctx, "Repaired correct answer index", map[string]interface{}{
			"metric":   metric.Key,
			"supplied": draft.CorrectIndex,
			"repaired": best,
		})
		span.SetAttributes(attribute.Bool("validation.index_repaired", true))
		draft.CorrectIndex = best
	}

	// Fix percent-adjacent numbers in auxiliary text that drifted from the
	// corrected answer
	corrected := parsed[best]
	draft.Explanation = repairPercentNumbers(draft.Explanation, metric.Value, corrected, tolerance)
	draft.SurprisingFact = repairPercentNumbers(draft.SurprisingFact, metric.Value, corrected, tolerance)
	draft.DidYouKnow = repairPercentNumbers(draft.DidYouKnow, metric.Value, corrected, tolerance)

	span.SetAttributes(attribute.String("validation.result", "accepted"))
	return draft, nil
}

// Tolerance is the maximum allowed deviation between a labeled correct
// answer and the true dataset value.
func Tolerance(value float64) float64 {
	return math.Max(config.ToleranceRatio*math.Abs(value), config.ToleranceFloor)
}

// validateStructure applies the fail-closed structural checks.
func validateStructure(draft models.QuestionDraft) error {
	if strings.TrimSpace(draft.Prompt) == "" {
		return contextutils.WrapError(contextutils.ErrValidationFailed, "draft has no prompt")
	}
	if len(draft.Choices) != models.ChoiceCount {
		return contextutils.WrapErrorf(contextutils.ErrValidationFailed, "draft has %d choices, want %d", len(draft.Choices), models.ChoiceCount)
	}
	if draft.CorrectIndex < 0 || draft.CorrectIndex >= models.ChoiceCount {
		return contextutils.WrapErrorf(contextutils.ErrValidationFailed, "correct index %d out of range", draft.CorrectIndex)
	}

	return distinctChoices(draft.Choices)
}

// distinctChoices rejects blank and pairwise-equal rendered choices.
func distinctChoices(choices []string) error {
	seen := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		key := strings.TrimSpace(c)
		if key == "" {
			return contextutils.WrapError(contextutils.ErrValidationFailed, "draft has an empty choice")
		}
		if _, dup := seen[key]; dup {
			return contextutils.WrapErrorf(contextutils.ErrValidationFailed, "duplicate choice %q", c)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// NormalizeChoices equalizes numeric precision across a choice set so the
// decimal format never reveals the answer. When all 4 choices are numeric
// and any carries decimals, every choice is re-rendered as a whole number
// with its original prefix and suffix. Mixed textual/numeric sets are left
// untouched.
func NormalizeChoices(choices []string) []string {
	parts := make([]contextutils.ChoiceParts, len(choices))
	hasDecimals := false
	for i, c := range choices {
		p, ok := contextutils.ParseChoice(c)
		if !ok {
			return choices
		}
		parts[i] = p
		if p.Decimals > 0 {
			hasDecimals = true
		}
	}

	if !hasDecimals {
		return choices
	}

	out := make([]string, len(choices))
	for i, p := range parts {
		out[i] = p.Render(0)
	}
	return out
}

// matchMetric identifies which extracted metric the prompt is about, or nil
// when the draft is unverifiable.
func matchMetric(prompt string, metrics []models.Metric) *models.Metric {
	promptLower := strings.ToLower(prompt)

	// Direct label match first
	for i := range metrics {
		if strings.Contains(promptLower, strings.ToLower(metrics[i].Label)) {
			return &metrics[i]
		}
	}

	for _, kw := range metricKeywords {
		if !strings.Contains(promptLower, kw.keyword) {
			continue
		}
		labelHint := strings.ToLower(kw.label)
		for i := range metrics {
			if strings.Contains(strings.ToLower(metrics[i].Label), labelHint) {
				return &metrics[i]
			}
		}
	}

	return nil
}

// repairPercentNumbers rewrites percent-adjacent numbers in free text that
// are close to the dataset value but disagree with the corrected choice
// value, preserving each token's decimal-vs-integer style.
func repairPercentNumbers(text string, actual, corrected, tolerance float64) string {
	if text == "" {
		return text
	}
	return percentNumberRe.ReplaceAllStringFunc(text, func(match string) string {
		sub := percentNumberRe.FindStringSubmatch(match)
		token := sub[1]
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return match
		}
		if math.Abs(v-actual) > tolerance || v == corrected {
			return match
		}
		return strings.Replace(match, token, contextutils.FormatLikeToken(token, corrected), 1)
	})
}
