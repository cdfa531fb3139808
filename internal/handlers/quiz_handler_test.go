package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"worldquest/internal/config"
	"worldquest/internal/models"
	"worldquest/internal/observability"
	"worldquest/internal/services"
	contextutils "worldquest/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPool is a canned PoolServiceInterface.
type stubPool struct {
	quiz *models.QuizResponse
	err  error
}

func (s *stubPool) GetQuizForCountry(_ context.Context, _ string) (*models.QuizResponse, error) {
	return s.quiz, s.err
}

func (s *stubPool) EnsurePool(_ context.Context, _ *models.Country) (int, error) {
	return 0, nil
}

// stubStore overrides only the store methods the handlers reach.
type stubStore struct {
	services.QuestionServiceInterface
	countries []models.Country
	err       error
}

func (s *stubStore) ListCountries(_ context.Context) ([]models.Country, error) {
	return s.countries, s.err
}

func testRouter(pool services.PoolServiceInterface, store services.QuestionServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	return NewRouter(cfg, pool, store, logger)
}

func TestGetQuiz_Success(t *testing.T) {
	pool := &stubPool{quiz: &models.QuizResponse{
		Country: "Bhutan",
		Questions: []models.Question{
			{ID: 1, Prompt: "What is the GDP per capita in Bhutan?", Choices: []string{"1900", "2100", "2300", "2600"}, CorrectIndex: 2},
		},
		FunFact: "Bhutan is carbon negative.",
	}}
	router := testRouter(pool, &stubStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/quiz/bt", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.QuizResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bhutan", resp.Country)
	assert.Len(t, resp.Questions, 1)
	assert.Equal(t, "Bhutan is carbon negative.", resp.FunFact)
}

func TestGetQuiz_InvalidCountryCode(t *testing.T) {
	router := testRouter(&stubPool{}, &stubStore{})

	for _, code := range []string{"b", "bhu", "1x"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/quiz/"+code, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "code %q", code)
	}
}

func TestGetQuiz_CountryNotFound(t *testing.T) {
	pool := &stubPool{err: contextutils.WrapErrorf(contextutils.ErrCountryNotFound, "no country with code %q", "XX")}
	router := testRouter(pool, &stubStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/quiz/XX", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetQuiz_EmptyPoolReturnsAccepted(t *testing.T) {
	pool := &stubPool{quiz: &models.QuizResponse{Country: "Bhutan"}}
	router := testRouter(pool, &stubStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/quiz/BT", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "generating", body["status"])
}

func TestGetCountries(t *testing.T) {
	store := &stubStore{countries: []models.Country{
		{ID: 1, ISO2: "BT", Name: "Bhutan"},
		{ID: 2, ISO2: "CI", Name: "Cote d'Ivoire"},
	}}
	router := testRouter(&stubPool{}, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/countries", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Countries []models.Country `json:"countries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Countries, 2)
}

func TestGetCountries_StoreError(t *testing.T) {
	store := &stubStore{err: contextutils.ErrDatabaseQuery}
	router := testRouter(&stubPool{}, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/countries", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(&stubPool{}, &stubStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
