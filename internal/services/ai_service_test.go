package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"worldquest/internal/config"
	"worldquest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aiTestConfig(url string) *config.Config {
	cfg := testConfig()
	cfg.AI = config.AIConfig{
		Enabled: true,
		Model:   "llama-3.3-70b-versatile",
		URL:     url,
		APIKey:  "test-key",
	}
	return cfg
}

func testMetrics() map[string]models.MetricValue {
	return map[string]models.MetricValue{
		"Gdppercapita Us Inflation Adjusted": {Value: floatPtr(2300), Year: intPtr(2021)},
		"Life Expectancy Female":             {Value: floatPtr(72.1), Year: intPtr(2022)},
	}
}

// openAIFixture wraps a response body the way a chat completions endpoint
// would deliver it.
func openAIFixture(content string) string {
	resp := OpenAIResponse{
		Choices: []Choice{{Message: Message{Role: "assistant", Content: content}}},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

const validDraftJSON = `{
	"did_you_know": "Bhutan measures Gross National Happiness.",
	"prompt": "What is the GDP per capita in Bhutan?",
	"choices": ["1900", "2100", "2300", "2600"],
	"correct_index": 2,
	"explanation": "Bhutan's economy has grown steadily on hydropower exports.",
	"surprising_fact": "Hydropower dominates exports.",
	"insight": "Small economies can punch above their weight.",
	"difficulty": 2
}`

func TestGenerateQuestions_UnavailableWhenNotConfigured(t *testing.T) {
	cfg := testConfig()
	svc := NewAIService(cfg, testLogger())

	result := svc.GenerateQuestions(context.Background(), "Bhutan", testMetrics(), 5)
	assert.Equal(t, GenerationUnavailable, result.Status)
	assert.True(t, result.Empty())
}

func TestGenerateQuestions_UnavailableWithoutMetrics(t *testing.T) {
	svc := NewAIService(aiTestConfig("http://localhost:1"), testLogger())

	result := svc.GenerateQuestions(context.Background(), "Bhutan", nil, 5)
	assert.Equal(t, GenerationUnavailable, result.Status)
}

func TestGenerateQuestions_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req OpenAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.3-70b-versatile", req.Model)
		assert.Len(t, req.Messages, 2)

		body := `{"questions": [` + validDraftJSON + `], "fun_fact": "Bhutan is carbon negative."}`
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openAIFixture(body)))
	}))
	defer server.Close()

	svc := NewAIService(aiTestConfig(server.URL), testLogger())
	result := svc.GenerateQuestions(context.Background(), "Bhutan", testMetrics(), 5)

	assert.Equal(t, GenerationOK, result.Status)
	require.Len(t, result.Drafts, 1)
	assert.Equal(t, "What is the GDP per capita in Bhutan?", result.Drafts[0].Prompt)
	assert.Equal(t, 2, result.Drafts[0].CorrectIndex)
	assert.Equal(t, "Bhutan is carbon negative.", result.FunFact)
}

func TestGenerateQuestions_StripsCodeFences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		body := "```json\n{\"questions\": [" + validDraftJSON + "], \"fun_fact\": \"\"}\n```"
		_, _ = w.Write([]byte(openAIFixture(body)))
	}))
	defer server.Close()

	svc := NewAIService(aiTestConfig(server.URL), testLogger())
	result := svc.GenerateQuestions(context.Background(), "Bhutan", testMetrics(), 5)

	assert.Equal(t, GenerationOK, result.Status)
	assert.Len(t, result.Drafts, 1)
}

func TestGenerateQuestions_MalformedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(openAIFixture("here are your questions: 1900, 2100")))
	}))
	defer server.Close()

	svc := NewAIService(aiTestConfig(server.URL), testLogger())
	result := svc.GenerateQuestions(context.Background(), "Bhutan", testMetrics(), 5)

	assert.Equal(t, GenerationMalformed, result.Status)
	assert.True(t, result.Empty())
}

func TestGenerateQuestions_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewAIService(aiTestConfig(server.URL), testLogger())
	result := svc.GenerateQuestions(context.Background(), "Bhutan", testMetrics(), 5)

	assert.Equal(t, GenerationUnavailable, result.Status)
}

func TestGenerateQuestions_InvalidDraftsDroppedIndividually(t *testing.T) {
	badDraft := `{"prompt": "Broken", "choices": ["a", "b"], "correct_index": 0}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		body := `{"questions": [` + badDraft + `, ` + validDraftJSON + `], "fun_fact": ""}`
		_, _ = w.Write([]byte(openAIFixture(body)))
	}))
	defer server.Close()

	svc := NewAIService(aiTestConfig(server.URL), testLogger())
	result := svc.GenerateQuestions(context.Background(), "Bhutan", testMetrics(), 5)

	assert.Equal(t, GenerationOK, result.Status)
	require.Len(t, result.Drafts, 1)
	assert.Equal(t, "What is the GDP per capita in Bhutan?", result.Drafts[0].Prompt)
}

func TestScreenDraft(t *testing.T) {
	svc := NewAIService(testConfig(), testLogger())

	t.Run("valid draft passes", func(t *testing.T) {
		draft, err := svc.screenDraft(json.RawMessage(validDraftJSON))
		require.NoError(t, err)
		assert.Equal(t, 2, draft.CorrectIndex)
		assert.Equal(t, 2, draft.Difficulty)
	})

	t.Run("out of range difficulty clamps", func(t *testing.T) {
		raw := `{"prompt": "P", "choices": ["1", "2", "3", "4"], "correct_index": 0, "difficulty": 0}`
		draft, err := svc.screenDraft(json.RawMessage(raw))
		require.NoError(t, err)
		assert.Equal(t, 2, draft.Difficulty)
	})

	tests := []struct {
		name string
		raw  string
	}{
		{"missing prompt", `{"choices": ["1", "2", "3", "4"], "correct_index": 0}`},
		{"too few choices", `{"prompt": "P", "choices": ["1", "2", "3"], "correct_index": 0}`},
		{"too many choices", `{"prompt": "P", "choices": ["1", "2", "3", "4", "5"], "correct_index": 0}`},
		{"index out of range", `{"prompt": "P", "choices": ["1", "2", "3", "4"], "correct_index": 4}`},
		{"missing index", `{"prompt": "P", "choices": ["1", "2", "3", "4"]}`},
		{"duplicate choices", `{"prompt": "P", "choices": ["1", "1", "3", "4"], "correct_index": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.screenDraft(json.RawMessage(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"plain json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSONResponse(tt.response))
		})
	}
}
