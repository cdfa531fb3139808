// Package di provides a dependency injection container for managing service
// lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"sync"

	"worldquest/internal/config"
	"worldquest/internal/database"
	"worldquest/internal/dataset"
	"worldquest/internal/observability"
	"worldquest/internal/services"
	contextutils "worldquest/internal/utils"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetQuestionService() (services.QuestionServiceInterface, error)
	GetAIService() (services.AIServiceInterface, error)
	GetPoolService() (services.PoolServiceInterface, error)
	GetDatasetService() (*dataset.Service, error)
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	dbManager     *database.Manager
	db            *sql.DB
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize sets up all services and their dependencies
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDBWithConfig(sc.cfg.Database)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize database")
	}
	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})

	datasetService := dataset.NewService(&sc.cfg.Dataset, sc.logger)
	if err := datasetService.Load(ctx); err != nil {
		_ = sc.cleanup(ctx)
		return contextutils.WrapErrorf(err, "failed to load country dataset")
	}

	questionService := services.NewQuestionService(db, sc.logger)
	aiService := services.NewAIService(sc.cfg, sc.logger)
	validationService := services.NewValidationService(sc.logger)
	templateService := services.NewTemplateService(sc.logger)
	poolService := services.NewPoolService(
		sc.cfg,
		questionService,
		aiService,
		validationService,
		templateService,
		datasetService,
		sc.logger,
	)

	sc.services["dataset"] = datasetService
	sc.services["question"] = questionService
	sc.services["ai"] = aiService
	sc.services["validation"] = validationService
	sc.services["template"] = templateService
	sc.services["pool"] = poolService

	return nil
}

// GetService retrieves a service by name
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetQuestionService returns the question persistence service
func (sc *ServiceContainer) GetQuestionService() (services.QuestionServiceInterface, error) {
	return GetServiceAs[services.QuestionServiceInterface](sc, "question")
}

// GetAIService returns the generation backend service
func (sc *ServiceContainer) GetAIService() (services.AIServiceInterface, error) {
	return GetServiceAs[services.AIServiceInterface](sc, "ai")
}

// GetPoolService returns the quiz pool service
func (sc *ServiceContainer) GetPoolService() (services.PoolServiceInterface, error) {
	return GetServiceAs[services.PoolServiceInterface](sc, "pool")
}

// GetDatasetService returns the loaded country dataset
func (sc *ServiceContainer) GetDatasetService() (*dataset.Service, error) {
	return GetServiceAs[*dataset.Service](sc, "dataset")
}

// GetDatabase returns the database connection
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown releases all resources in reverse initialization order
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.cleanup(ctx)
}

func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var firstErr error
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	sc.shutdownFuncs = nil
	return firstErr
}
