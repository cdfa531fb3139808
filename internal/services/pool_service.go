package services

import (
	"context"
	"math/rand"

	"worldquest/internal/config"
	"worldquest/internal/dataset"
	"worldquest/internal/models"
	"worldquest/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// PoolServiceInterface defines quiz pool orchestration.
type PoolServiceInterface interface {
	GetQuizForCountry(ctx context.Context, iso2 string) (*models.QuizResponse, error)
	EnsurePool(ctx context.Context, country *models.Country) (int, error)
}

// PoolService maintains the per-country question pools: it fills deficits
// through the AI backend with the template generator as fallback, and serves
// randomized quiz samples from whatever is cached. Pools only grow; nothing
// here ever evicts a question.
type PoolService struct {
	cfg       *config.Config
	store     QuestionServiceInterface
	ai        AIServiceInterface
	validator *ValidationService
	templates *TemplateService
	data      *dataset.Service
	logger    *observability.Logger
}

// NewPoolService creates a pool service.
func NewPoolService(
	cfg *config.Config,
	store QuestionServiceInterface,
	ai AIServiceInterface,
	validator *ValidationService,
	templates *TemplateService,
	data *dataset.Service,
	logger *observability.Logger,
) *PoolService {
	return &PoolService{
		cfg:       cfg,
		store:     store,
		ai:        ai,
		validator: validator,
		templates: templates,
		data:      data,
		logger:    logger,
	}
}

// GetQuizForCountry returns a random quiz-sized sample of a country's pool,
// filling the pool first when it holds fewer than a quiz worth of questions.
// Only an unknown country code is surfaced as an error; generation and
// persistence problems degrade to serving whatever is cached.
func (s *PoolService) GetQuizForCountry(ctx context.Context, iso2 string) (result0 *models.QuizResponse, err error) {
	ctx, span := observability.TracePoolFunction(ctx, "get_quiz_for_country", observability.AttributeCountry(iso2))
	defer observability.FinishSpan(span, &err)

	country, err := s.store.CountryByISO2(ctx, iso2)
	if err != nil {
		return nil, err
	}

	count, err := s.store.CountQuestionsByCountry(ctx, country.ID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("pool.size", count))

	// Full-enough pool serves straight from cache, no generation call
	if count < s.cfg.QuizSize() {
		deficit := s.cfg.PoolSize() - count
		span.SetAttributes(observability.AttributeDeficit(deficit))
		s.fillDeficit(ctx, country, deficit)
	}

	questions, err := s.store.GetQuestionsByCountry(ctx, country.ID)
	if err != nil {
		return nil, err
	}

	funFact, err := s.store.LatestFact(ctx, country.ID)
	if err != nil {
		s.logger.Warn(ctx, "Failed to load fun fact, serving quiz without one", map[string]interface{}{
			"country": country.Name,
			"error":   err.Error(),
		})
		funFact = ""
	}

	return &models.QuizResponse{
		Country:   country.Name,
		Questions: sampleQuestions(questions, s.cfg.QuizSize()),
		FunFact:   funFact,
	}, nil
}

// EnsurePool tops a country's pool up to the configured size. Returns how
// many questions were added. Used by the generation admin command.
func (s *PoolService) EnsurePool(ctx context.Context, country *models.Country) (result0 int, err error) {
	ctx, span := observability.TracePoolFunction(ctx, "ensure_pool", observability.AttributeCountry(country.Name))
	defer observability.FinishSpan(span, &err)

	count, err := s.store.CountQuestionsByCountry(ctx, country.ID)
	if err != nil {
		return 0, err
	}
	if count >= s.cfg.PoolSize() {
		return 0, nil
	}

	added := s.fillDeficit(ctx, country, s.cfg.PoolSize()-count)
	return added, nil
}

// fillDeficit runs one generation round: extract metrics, ask the AI backend,
// validate and repair its drafts, and fall back to template generation when
// nothing usable comes back. Returns the number of questions persisted.
// Failures are logged, never propagated; callers serve from cache regardless.
func (s *PoolService) fillDeficit(ctx context.Context, country *models.Country, deficit int) int {
	ctx, span := observability.TracePoolFunction(ctx, "fill_deficit",
		observability.AttributeCountry(country.Name),
		observability.AttributeDeficit(deficit),
	)
	defer span.End()

	data, resolvedName, ok := s.data.CountryData(country.Name)
	if !ok {
		s.logger.Warn(ctx, "Country missing from dataset, serving cached questions only", map[string]interface{}{
			"country": country.Name,
		})
		span.SetAttributes(attribute.String("fill.result", "no_dataset_entry"))
		return 0
	}

	metrics := dataset.ExtractPromptMetrics(data)
	catalogMetrics := dataset.ExtractTemplateMetrics(data)

	result := s.ai.GenerateQuestions(ctx, resolvedName, metrics, deficit)

	accepted := make([]models.QuestionDraft, 0, len(result.Drafts))
	for _, draft := range result.Drafts {
		repaired, verr := s.validator.ValidateAndRepair(ctx, draft, catalogMetrics)
		if verr != nil {
			s.logger.Warn(ctx, "Rejected draft", map[string]interface{}{
				"country": country.Name,
				"prompt":  draft.Prompt,
				"error":   verr.Error(),
			})
			continue
		}
		accepted = append(accepted, repaired)
	}

	source := models.SourceAI
	if len(accepted) == 0 {
		s.logger.Info(ctx, "AI round produced no usable drafts, using template generator", map[string]interface{}{
			"country": country.Name,
			"status":  string(result.Status),
		})
		accepted = s.templates.GenerateQuestions(ctx, resolvedName, data, deficit)
		source = models.SourceDataset
	}
	span.SetAttributes(observability.AttributeSource(string(source)))

	// An over-delivering backend must not push the pool past its target
	if len(accepted) > deficit {
		accepted = accepted[:deficit]
	}

	if result.FunFact != "" {
		if ferr := s.store.SaveFact(ctx, country.ID, result.FunFact, models.SourceAI); ferr != nil {
			s.logger.Warn(ctx, "Failed to save fun fact", map[string]interface{}{
				"country": country.Name,
				"error":   ferr.Error(),
			})
		}
	}

	saved, serr := s.store.SaveQuestionBatch(ctx, country, source, accepted)
	if serr != nil {
		s.logger.Error(ctx, "Failed to persist generation round", serr, map[string]interface{}{
			"country": country.Name,
			"drafts":  len(accepted),
		})
		return 0
	}

	span.SetAttributes(attribute.Int("fill.saved", len(saved)))
	return len(saved)
}

// sampleQuestions draws a uniform random sample of up to n questions.
func sampleQuestions(questions []models.Question, n int) []models.Question {
	if len(questions) <= n {
		shuffled := make([]models.Question, len(questions))
		copy(shuffled, questions)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled
	}

	idx := rand.Perm(len(questions))[:n]
	sample := make([]models.Question, 0, n)
	for _, i := range idx {
		sample = append(sample, questions[i])
	}
	return sample
}
