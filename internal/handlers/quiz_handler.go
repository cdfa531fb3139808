package handlers

import (
	"net/http"
	"strings"
	"unicode"

	"worldquest/internal/config"
	"worldquest/internal/observability"
	"worldquest/internal/services"
	contextutils "worldquest/internal/utils"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// QuizHandler serves quiz and country HTTP requests
type QuizHandler struct {
	poolService     services.PoolServiceInterface
	questionService services.QuestionServiceInterface
	cfg             *config.Config
	logger          *observability.Logger
}

// NewQuizHandler creates a new QuizHandler
func NewQuizHandler(
	poolService services.PoolServiceInterface,
	questionService services.QuestionServiceInterface,
	cfg *config.Config,
	logger *observability.Logger,
) *QuizHandler {
	return &QuizHandler{
		poolService:     poolService,
		questionService: questionService,
		cfg:             cfg,
		logger:          logger,
	}
}

// GetQuiz returns a randomized quiz for a country identified by its
// two-letter code.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_quiz")
	defer observability.FinishSpan(span, nil)

	iso2 := strings.ToUpper(strings.TrimSpace(c.Param("country")))
	span.SetAttributes(observability.AttributeCountry(iso2))

	if !validISO2(iso2) {
		HandleAppError(c, contextutils.NewAppError(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid country code",
			"country must be a two-letter ISO code",
		))
		return
	}

	quiz, err := h.poolService.GetQuizForCountry(c.Request.Context(), iso2)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "Quiz request failed", map[string]interface{}{
			"country": iso2,
			"error":   err.Error(),
		})
		HandleAppError(c, err)
		return
	}

	if len(quiz.Questions) == 0 {
		HandleAppError(c, contextutils.ErrNoQuestionsAvailable)
		return
	}

	span.SetAttributes(attribute.Int("quiz.questions", len(quiz.Questions)))
	c.JSON(http.StatusOK, quiz)
}

// GetCountries lists all countries the quiz knows about.
func (h *QuizHandler) GetCountries(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_countries")
	defer observability.FinishSpan(span, nil)

	countries, err := h.questionService.ListCountries(c.Request.Context())
	if err != nil {
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("countries.count", len(countries)))
	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

func validISO2(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
