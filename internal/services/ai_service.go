// Package services contains the question generation, validation, and pooling
// engine together with its persistence collaborators.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"worldquest/internal/config"
	"worldquest/internal/models"
	"worldquest/internal/observability"
	contextutils "worldquest/internal/utils"

	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// GenerationStatus classifies the outcome of one generation round.
type GenerationStatus string

const (
	// GenerationOK means the backend produced at least one structurally sound draft
	GenerationOK GenerationStatus = "ok"
	// GenerationUnavailable means the backend is not configured or unreachable
	GenerationUnavailable GenerationStatus = "unavailable"
	// GenerationMalformed means the backend responded but the payload did not parse
	GenerationMalformed GenerationStatus = "malformed"
)

// GenerationResult is what one deficit-fill round gets back from the backend.
// Callers branch on Status instead of catching errors: Unavailable and
// Malformed both mean "try the fallback generator".
type GenerationResult struct {
	Status  GenerationStatus
	Drafts  []models.QuestionDraft
	FunFact string
}

// Empty reports whether the round produced no usable drafts.
func (r GenerationResult) Empty() bool {
	return len(r.Drafts) == 0
}

// AIServiceInterface lets the pool manager be tested against a fake backend.
type AIServiceInterface interface {
	GenerateQuestions(ctx context.Context, country string, metrics map[string]models.MetricValue, count int) GenerationResult
}

// AIService generates question drafts through an OpenAI-compatible chat
// completion endpoint.
type AIService struct {
	httpClient *http.Client
	cfg        *config.Config
	logger     *observability.Logger
}

// NewAIService creates a new AI service instance
func NewAIService(cfg *config.Config, logger *observability.Logger) *AIService {
	// Instrumented HTTP client with a timeout slightly below the request
	// budget so context cancellation is observed first
	httpClient := &http.Client{
		Timeout: config.AIRequestTimeout - 5*time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
		),
	}

	return &AIService{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

const aiPromptTemplate = `You are a trivia question generator for WorldQuest, a geography learning app.

Country: %s
Data:
%s

Generate %d trivia questions following this EXACT structure:

1. "did_you_know" - A hook fact to introduce the question (1 sentence)
2. "prompt" - Simple, direct question (NOT analytical like "What can be inferred...")
3. "choices" - Exactly 4 options
4. "correct_index" - Index of correct answer (0-3)
5. "surprising_fact" - Starts with "Surprising, right?" - explains WHY the answer is interesting
6. "insight" - A 5-8 word takeaway lesson
7. "difficulty" - 1 (easy) to 3 (hard)

Also include a top-level "fun_fact": one memorable sentence about the country.

EXAMPLE:
{
  "questions": [
    {
      "did_you_know": "Bhutan rejected GDP as a measure of progress.",
      "prompt": "What does Bhutan measure instead of GDP?",
      "choices": ["Military strength", "Gross National Happiness", "Population growth", "Land ownership"],
      "correct_index": 1,
      "surprising_fact": "Surprising, right? Since the 1970s, Bhutan has prioritized Gross National Happiness over economic growth.",
      "insight": "Countries can choose different definitions of success",
      "difficulty": 1
    }
  ],
  "fun_fact": "Bhutan is the world's only carbon-negative country."
}

RULES:
- Questions should be simple and direct
- Use real data from the metrics provided; the correct choice must match the data
- All 4 choices must use the same numeric precision and the correct unit
- Comparison questions must not leak the answer in the prompt text
- Frame unfavorable statistics honestly, without spin
- Cover different topics: health, economy, environment, population, etc.
- Make surprising_fact genuinely interesting and educational

Respond with ONLY valid JSON, no markdown.`

// draftSchema is the structural screen every raw draft must pass before the
// numeric validation stage sees it.
const draftSchema = `{
	"type": "object",
	"required": ["prompt", "choices", "correct_index"],
	"properties": {
		"did_you_know": {"type": "string"},
		"prompt": {"type": "string", "minLength": 1},
		"choices": {
			"type": "array",
			"minItems": 4,
			"maxItems": 4,
			"items": {"type": "string"}
		},
		"correct_index": {"type": "integer", "minimum": 0, "maximum": 3},
		"explanation": {"type": "string"},
		"surprising_fact": {"type": "string"},
		"insight": {"type": "string"},
		"difficulty": {"type": "integer"}
	}
}`

// OpenAIRequest is the chat completion request payload
type OpenAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Message is a single chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponse is the chat completion response payload
type OpenAIResponse struct {
	Choices []Choice  `json:"choices"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice is a single completion choice
type Choice struct {
	Message Message `json:"message"`
}

// APIError is an error payload returned by the API
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// aiResponseBody is the JSON document the prompt asks the model to produce.
type aiResponseBody struct {
	Questions []json.RawMessage `json:"questions"`
	FunFact   string            `json:"fun_fact"`
}

// GenerateQuestions issues one backend call for a whole deficit-fill round
// and screens each returned draft structurally. It never returns an error:
// the caller branches on the result status.
func (s *AIService) GenerateQuestions(ctx context.Context, country string, metrics map[string]models.MetricValue, count int) GenerationResult {
	ctx, span := observability.TraceAIFunction(ctx, "generate_questions",
		observability.AttributeCountry(country),
		attribute.Int("ai.requested_count", count),
		attribute.Int("ai.metrics", len(metrics)),
	)
	defer span.End()

	if !s.cfg.AIAvailable() {
		s.logger.Warn(ctx, "Generation backend not configured, skipping AI round", map[string]interface{}{
			"country": country,
		})
		span.SetAttributes(attribute.String("ai.result", "unavailable"))
		return GenerationResult{Status: GenerationUnavailable}
	}

	if len(metrics) == 0 {
		s.logger.Warn(ctx, "No metrics available for AI prompt", map[string]interface{}{
			"country": country,
		})
		span.SetAttributes(attribute.String("ai.result", "no_metrics"))
		return GenerationResult{Status: GenerationUnavailable}
	}

	prompt, err := s.buildPrompt(country, metrics, count)
	if err != nil {
		s.logger.Error(ctx, "Failed to build AI prompt", err, map[string]interface{}{
			"country": country,
		})
		span.SetAttributes(attribute.String("ai.result", "prompt_failed"))
		return GenerationResult{Status: GenerationUnavailable}
	}

	raw, err := s.callOpenAI(ctx, prompt)
	if err != nil {
		s.logger.Error(ctx, "Generation backend call failed", err, map[string]interface{}{
			"country": country,
		})
		span.SetAttributes(attribute.String("ai.result", "call_failed"))
		return GenerationResult{Status: GenerationUnavailable}
	}

	cleaned := cleanJSONResponse(raw)

	var body aiResponseBody
	if err := json.Unmarshal([]byte(cleaned), &body); err != nil {
		s.logger.Error(ctx, "Failed to parse AI response as JSON", err, map[string]interface{}{
			"country":         country,
			"response_length": len(cleaned),
		})
		span.SetAttributes(attribute.String("ai.result", "malformed"))
		return GenerationResult{Status: GenerationMalformed}
	}

	drafts := make([]models.QuestionDraft, 0, len(body.Questions))
	for _, rawDraft := range body.Questions {
		draft, err := s.screenDraft(rawDraft)
		if err != nil {
			// Malformed drafts are dropped individually; the round continues
			s.logger.Warn(ctx, "Dropping structurally invalid draft", map[string]interface{}{
				"country": country,
				"reason":  err.Error(),
			})
			continue
		}
		drafts = append(drafts, draft)
	}

	s.logger.Info(ctx, "Generation round completed", map[string]interface{}{
		"country":  country,
		"returned": len(body.Questions),
		"accepted": len(drafts),
	})
	span.SetAttributes(
		attribute.String("ai.result", "ok"),
		attribute.Int("ai.drafts_accepted", len(drafts)),
	)

	return GenerationResult{Status: GenerationOK, Drafts: drafts, FunFact: body.FunFact}
}

// buildPrompt serializes the metrics map into the generation prompt.
func (s *AIService) buildPrompt(country string, metrics map[string]models.MetricValue, count int) (string, error) {
	metricsJSON, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return "", contextutils.WrapError(err, "failed to serialize metrics")
	}
	return fmt.Sprintf(aiPromptTemplate, country, string(metricsJSON), count), nil
}

// screenDraft applies the structural screen to one raw draft.
func (s *AIService) screenDraft(raw json.RawMessage) (models.QuestionDraft, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(draftSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return models.QuestionDraft{}, contextutils.WrapError(contextutils.ErrValidationFailed, "schema validation errored")
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return models.QuestionDraft{}, contextutils.WrapErrorf(contextutils.ErrValidationFailed, "draft failed schema validation: %s", strings.Join(msgs, "; "))
	}

	var draft models.QuestionDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return models.QuestionDraft{}, contextutils.WrapError(contextutils.ErrValidationFailed, "draft failed to decode")
	}

	if draft.Difficulty < models.MinDifficulty || draft.Difficulty > models.MaxDifficulty {
		draft.Difficulty = 2
	}

	// Duplicate-looking choices fail closed here, before normalization
	seen := make(map[string]struct{}, len(draft.Choices))
	for _, c := range draft.Choices {
		key := strings.TrimSpace(c)
		if _, dup := seen[key]; dup {
			return models.QuestionDraft{}, contextutils.WrapErrorf(contextutils.ErrValidationFailed, "duplicate choice %q", c)
		}
		seen[key] = struct{}{}
	}

	return draft, nil
}

// callOpenAI makes a single chat completion request.
func (s *AIService) callOpenAI(ctx context.Context, prompt string) (result0 string, err error) {
	_, span := observability.TraceAIFunction(ctx, "call_openai",
		attribute.String("ai.provider", s.cfg.AI.Provider),
		attribute.String("ai.model", s.cfg.AI.Model),
		attribute.Int("prompt.length", len(prompt)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if s.cfg.AI.Model == "" {
		span.SetAttributes(attribute.String("call.result", "empty_model"))
		return "", contextutils.WrapError(contextutils.ErrAIConfigInvalid, "model is required")
	}
	if prompt == "" {
		span.SetAttributes(attribute.String("call.result", "empty_prompt"))
		return "", contextutils.WrapError(contextutils.ErrAIConfigInvalid, "prompt cannot be empty")
	}

	apiURL := strings.TrimSuffix(s.cfg.AI.URL, "/") + "/chat/completions"

	temperature := s.cfg.AI.Temperature
	if temperature == 0 {
		temperature = 0.8
	}
	maxTokens := s.cfg.AI.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	reqBody := OpenAIRequest{
		Model: s.cfg.AI.Model,
		Messages: []Message{
			{Role: "system", Content: "You are a trivia question generator. Generate engaging quiz questions based on real data. Always respond with valid JSON only, no markdown."},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "marshal_failed"))
		return "", contextutils.WrapError(err, "failed to marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "request_creation_failed"))
		return "", contextutils.WrapError(err, "failed to create HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "worldquest/1.0")
	req.Header.Set("Authorization", "Bearer "+s.cfg.AI.APIKey)

	startTime := time.Now()
	resp, err := s.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "http_request_failed"), attribute.String("duration", duration.String()))
		return "", contextutils.WrapErrorf(contextutils.ErrAIProviderUnavailable, "HTTP request failed after %v: %w", duration, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Warn(ctx, "Failed to close response body", map[string]interface{}{
				"error": cerr.Error(),
			})
		}
	}()

	s.logger.Info(ctx, "AI request completed", map[string]interface{}{
		"duration":    duration.String(),
		"status_code": resp.StatusCode,
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetAttributes(attribute.String("call.result", "body_read_failed"))
		return "", contextutils.WrapError(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		span.SetAttributes(attribute.String("call.result", "http_error"), attribute.Int("status_code", resp.StatusCode))
		return "", contextutils.WrapErrorf(contextutils.ErrAIRequestFailed, "API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var openAIResp OpenAIResponse
	if err := json.Unmarshal(body, &openAIResp); err != nil {
		span.SetAttributes(attribute.String("call.result", "json_unmarshal_failed"))
		return "", contextutils.WrapErrorf(contextutils.ErrAIResponseInvalid, "failed to parse AI response as JSON: %w", err)
	}

	if openAIResp.Error != nil {
		span.SetAttributes(attribute.String("call.result", "api_error"), attribute.String("error_type", openAIResp.Error.Type))
		return "", contextutils.WrapErrorf(contextutils.ErrAIRequestFailed, "API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		span.SetAttributes(attribute.String("call.result", "no_choices"))
		return "", contextutils.WrapError(contextutils.ErrAIResponseInvalid, "no response choices from backend")
	}

	content := openAIResp.Choices[0].Message.Content
	if content == "" {
		span.SetAttributes(attribute.String("call.result", "empty_content"))
		return "", contextutils.WrapError(contextutils.ErrAIResponseInvalid, "backend returned empty content")
	}

	span.SetAttributes(attribute.String("call.result", "success"), attribute.Int("content_length", len(content)))
	return content, nil
}

// cleanJSONResponse strips markdown code-fence markers some models wrap
// around JSON payloads despite being told not to.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
	}

	return strings.TrimSpace(response)
}
