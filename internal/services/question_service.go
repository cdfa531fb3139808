package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"worldquest/internal/models"
	"worldquest/internal/observability"
	contextutils "worldquest/internal/utils"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// QuestionServiceInterface defines the question and country persistence
// operations. Allows for easier mocking in tests.
type QuestionServiceInterface interface {
	SaveQuestion(ctx context.Context, countryID int, question *models.Question) error
	SaveQuestionBatch(ctx context.Context, country *models.Country, source models.QuestionSource, drafts []models.QuestionDraft) ([]models.Question, error)
	GetQuestionsByCountry(ctx context.Context, countryID int) ([]models.Question, error)
	CountQuestionsByCountry(ctx context.Context, countryID int) (int, error)
	CountryByISO2(ctx context.Context, iso2 string) (*models.Country, error)
	UpsertCountry(ctx context.Context, country *models.Country) error
	ListCountries(ctx context.Context) ([]models.Country, error)
	SaveFact(ctx context.Context, countryID int, text string, source models.QuestionSource) error
	LatestFact(ctx context.Context, countryID int) (string, error)
	DeleteQuestionsByCountry(ctx context.Context, countryID int) (int64, error)
	DeleteAllQuestions(ctx context.Context) (int64, error)
	DeleteAllCountries(ctx context.Context) (int64, error)
	DB() *sql.DB
}

const questionSelectFields = `q.id, c.name, q.category, q.metric_key, q.prompt, q.choices, q.correct_index, q.explanation, q.did_you_know, q.surprising_fact, q.insight, q.difficulty, q.source, q.created_at`

// QuestionService provides question and country persistence backed by
// PostgreSQL.
type QuestionService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewQuestionService creates a question service. Panics if db or logger is
// nil, callers must provide both.
func NewQuestionService(db *sql.DB, logger *observability.Logger) *QuestionService {
	if db == nil {
		panic("QuestionService requires a non-nil db")
	}
	if logger == nil {
		panic("QuestionService requires a non-nil logger")
	}
	return &QuestionService{db: db, logger: logger}
}

// DB returns the underlying connection for components that share it.
func (s *QuestionService) DB() *sql.DB {
	return s.db
}

// SaveQuestion persists a single question for a country.
func (s *QuestionService) SaveQuestion(ctx context.Context, countryID int, question *models.Question) (err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "save_question", observability.AttributeCountry(question.Country))
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	choicesJSON, err := json.Marshal(question.Choices)
	if err != nil {
		return contextutils.WrapError(err, "failed to marshal question choices")
	}

	query := `
		INSERT INTO questions (country_id, category, metric_key, prompt, choices, correct_index, explanation, did_you_know, surprising_fact, insight, difficulty, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id
	`

	var id int
	err = s.db.QueryRowContext(ctx, query,
		countryID,
		question.Category,
		question.MetricKey,
		question.Prompt,
		string(choicesJSON),
		question.CorrectIndex,
		question.Explanation,
		question.DidYouKnow,
		question.SurprisingFact,
		question.Insight,
		question.Difficulty,
		question.Source,
	).Scan(&id)
	if err != nil {
		return contextutils.WrapError(err, "failed to save question to database")
	}

	question.ID = id
	return nil
}

// SaveQuestionBatch persists a round of accepted drafts in one transaction.
// Each draft gets its own savepoint: a failed insert is logged and rolled
// back without losing the rest of the batch.
func (s *QuestionService) SaveQuestionBatch(ctx context.Context, country *models.Country, source models.QuestionSource, drafts []models.QuestionDraft) (result0 []models.Question, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "save_question_batch",
		observability.AttributeCountry(country.Name),
		observability.AttributeSource(string(source)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if len(drafts) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, contextutils.WrapError(contextutils.ErrDatabaseTransaction, "failed to begin batch transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO questions (country_id, category, metric_key, prompt, choices, correct_index, explanation, did_you_know, surprising_fact, insight, difficulty, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id
	`

	saved := make([]models.Question, 0, len(drafts))
	for i, draft := range drafts {
		choicesJSON, merr := json.Marshal(draft.Choices)
		if merr != nil {
			s.logger.Warn(ctx, "Skipping draft with unmarshalable choices", map[string]interface{}{
				"country": country.Name,
				"index":   i,
				"error":   merr.Error(),
			})
			continue
		}

		savepoint := fmt.Sprintf("draft_%d", i)
		if _, serr := tx.ExecContext(ctx, "SAVEPOINT "+savepoint); serr != nil {
			return nil, contextutils.WrapError(serr, "failed to create savepoint")
		}

		var id int
		ierr := tx.QueryRowContext(ctx, query,
			country.ID,
			draft.Category,
			"",
			draft.Prompt,
			string(choicesJSON),
			draft.CorrectIndex,
			draft.Explanation,
			draft.DidYouKnow,
			draft.SurprisingFact,
			draft.Insight,
			draft.Difficulty,
			source,
		).Scan(&id)
		if ierr != nil {
			s.logger.Warn(ctx, "Failed to save draft, keeping rest of batch", map[string]interface{}{
				"country": country.Name,
				"index":   i,
				"error":   ierr.Error(),
			})
			if _, rerr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rerr != nil {
				return nil, contextutils.WrapError(rerr, "failed to roll back to savepoint")
			}
			continue
		}

		saved = append(saved, models.Question{
			ID:             id,
			Country:        country.Name,
			Category:       draft.Category,
			Prompt:         draft.Prompt,
			Choices:        draft.Choices,
			CorrectIndex:   draft.CorrectIndex,
			Explanation:    draft.Explanation,
			DidYouKnow:     draft.DidYouKnow,
			SurprisingFact: draft.SurprisingFact,
			Insight:        draft.Insight,
			Difficulty:     draft.Difficulty,
			Source:         source,
		})
	}

	if err = tx.Commit(); err != nil {
		return nil, contextutils.WrapError(contextutils.ErrDatabaseTransaction, "failed to commit question batch")
	}

	s.logger.Info(ctx, "Saved question batch", map[string]interface{}{
		"country": country.Name,
		"saved":   len(saved),
		"skipped": len(drafts) - len(saved),
		"source":  string(source),
	})
	return saved, nil
}

// GetQuestionsByCountry returns all cached questions for a country.
func (s *QuestionService) GetQuestionsByCountry(ctx context.Context, countryID int) (result0 []models.Question, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "get_questions_by_country")
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	query := fmt.Sprintf(`
		SELECT %s FROM questions q
		JOIN countries c ON c.id = q.country_id
		WHERE q.country_id = $1
		ORDER BY q.created_at, q.id
	`, questionSelectFields)

	rows, err := s.db.QueryContext(ctx, query, countryID)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query questions by country")
	}
	defer func() { _ = rows.Close() }()

	var questions []models.Question
	for rows.Next() {
		q, serr := scanQuestionFromRows(rows)
		if serr != nil {
			return nil, serr
		}
		questions = append(questions, *q)
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "failed to iterate question rows")
	}
	return questions, nil
}

// CountQuestionsByCountry returns the pool size for a country.
func (s *QuestionService) CountQuestionsByCountry(ctx context.Context, countryID int) (result0 int, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "count_questions_by_country")
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var count int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions WHERE country_id = $1", countryID).Scan(&count)
	if err != nil {
		return 0, contextutils.WrapError(err, "failed to count questions")
	}
	return count, nil
}

// CountryByISO2 resolves a country by its two-letter code.
func (s *QuestionService) CountryByISO2(ctx context.Context, iso2 string) (result0 *models.Country, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "country_by_iso2", observability.AttributeCountry(iso2))
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var c models.Country
	err = s.db.QueryRowContext(ctx,
		"SELECT id, iso2, name, region, order_index, created_at FROM countries WHERE iso2 = $1", iso2,
	).Scan(&c.ID, &c.ISO2, &c.Name, &c.Region, &c.OrderIndex, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contextutils.WrapErrorf(contextutils.ErrCountryNotFound, "no country with code %q", iso2)
	}
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query country")
	}
	return &c, nil
}

// UpsertCountry inserts a country or refreshes its name, region and
// ordering when the code already exists.
func (s *QuestionService) UpsertCountry(ctx context.Context, country *models.Country) (err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "upsert_country", observability.AttributeCountry(country.Name))
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	query := `
		INSERT INTO countries (iso2, name, region, order_index)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (iso2) DO UPDATE SET name = EXCLUDED.name, region = EXCLUDED.region, order_index = EXCLUDED.order_index
		RETURNING id
	`

	var id int
	err = s.db.QueryRowContext(ctx, query, country.ISO2, country.Name, country.Region, country.OrderIndex).Scan(&id)
	if err != nil {
		return contextutils.WrapError(err, "failed to upsert country")
	}
	country.ID = id
	return nil
}

// ListCountries returns all known countries in display order.
func (s *QuestionService) ListCountries(ctx context.Context) (result0 []models.Country, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "list_countries")
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, iso2, name, region, order_index, created_at FROM countries ORDER BY order_index, name")
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query countries")
	}
	defer func() { _ = rows.Close() }()

	var countries []models.Country
	for rows.Next() {
		var c models.Country
		if err = rows.Scan(&c.ID, &c.ISO2, &c.Name, &c.Region, &c.OrderIndex, &c.CreatedAt); err != nil {
			return nil, contextutils.WrapError(err, "failed to scan country row")
		}
		countries = append(countries, c)
	}
	if err = rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "failed to iterate country rows")
	}
	return countries, nil
}

// SaveFact stores a standalone fun fact for a country.
func (s *QuestionService) SaveFact(ctx context.Context, countryID int, text string, source models.QuestionSource) (err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "save_fact", observability.AttributeSource(string(source)))
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var id int
	err = s.db.QueryRowContext(ctx,
		"INSERT INTO facts (country_id, content, source) VALUES ($1, $2, $3) RETURNING id",
		countryID, text, source,
	).Scan(&id)
	if err != nil {
		return contextutils.WrapError(err, "failed to save fact")
	}
	return nil
}

// LatestFact returns the most recently stored fun fact for a country, or ""
// when the country has none.
func (s *QuestionService) LatestFact(ctx context.Context, countryID int) (result0 string, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "latest_fact")
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var text string
	err = s.db.QueryRowContext(ctx,
		"SELECT content FROM facts WHERE country_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1",
		countryID,
	).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", contextutils.WrapError(err, "failed to query latest fact")
	}
	return text, nil
}

// DeleteQuestionsByCountry removes all cached questions for one country.
// Administrative operation, never invoked by quiz serving.
func (s *QuestionService) DeleteQuestionsByCountry(ctx context.Context, countryID int) (result0 int64, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "delete_questions_by_country")
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	res, err := s.db.ExecContext(ctx, "DELETE FROM questions WHERE country_id = $1", countryID)
	if err != nil {
		return 0, contextutils.WrapError(err, "failed to delete questions for country")
	}
	return res.RowsAffected()
}

// DeleteAllQuestions removes every cached question.
func (s *QuestionService) DeleteAllQuestions(ctx context.Context) (result0 int64, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "delete_all_questions")
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	res, err := s.db.ExecContext(ctx, "DELETE FROM questions")
	if err != nil {
		return 0, contextutils.WrapError(err, "failed to delete questions")
	}
	return res.RowsAffected()
}

// DeleteAllCountries removes every country and, via cascade, its questions
// and facts. Used when reloading the country table from scratch.
func (s *QuestionService) DeleteAllCountries(ctx context.Context) (result0 int64, err error) {
	ctx, span := observability.TraceQuestionFunction(ctx, "delete_all_countries")
	defer func() {
		if err != nil {
			span.RecordError(err, trace.WithStackTrace(true))
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	res, err := s.db.ExecContext(ctx, "DELETE FROM countries")
	if err != nil {
		return 0, contextutils.WrapError(err, "failed to delete countries")
	}
	return res.RowsAffected()
}

func scanQuestionFromRows(rows *sql.Rows) (*models.Question, error) {
	var q models.Question
	var choicesJSON string
	err := rows.Scan(
		&q.ID,
		&q.Country,
		&q.Category,
		&q.MetricKey,
		&q.Prompt,
		&choicesJSON,
		&q.CorrectIndex,
		&q.Explanation,
		&q.DidYouKnow,
		&q.SurprisingFact,
		&q.Insight,
		&q.Difficulty,
		&q.Source,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to scan question row")
	}
	if err := json.Unmarshal([]byte(choicesJSON), &q.Choices); err != nil {
		return nil, contextutils.WrapError(err, "failed to unmarshal question choices")
	}
	return &q, nil
}
