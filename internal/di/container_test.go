package di

import (
	"context"
	"testing"

	"worldquest/internal/config"
	"worldquest/internal/observability"
	"worldquest/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer() *ServiceContainer {
	cfg := &config.Config{}
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	return NewServiceContainer(cfg, logger)
}

func TestGetService_UnknownName(t *testing.T) {
	sc := newTestContainer()

	_, err := sc.GetService("nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestGetServiceAs_WrongType(t *testing.T) {
	sc := newTestContainer()
	sc.services["validation"] = services.NewValidationService(sc.logger)

	_, err := GetServiceAs[*services.TemplateService](sc, "validation")
	require.Error(t, err)
}

func TestGetServiceAs_ReturnsTypedService(t *testing.T) {
	sc := newTestContainer()
	validator := services.NewValidationService(sc.logger)
	sc.services["validation"] = validator

	got, err := GetServiceAs[*services.ValidationService](sc, "validation")
	require.NoError(t, err)
	assert.Same(t, validator, got)
}

func TestContainerAccessors(t *testing.T) {
	sc := newTestContainer()

	assert.NotNil(t, sc.GetConfig())
	assert.NotNil(t, sc.GetLogger())
	assert.Nil(t, sc.GetDatabase())
}

func TestShutdown_RunsFuncsInReverseOrder(t *testing.T) {
	sc := newTestContainer()

	var order []int
	sc.shutdownFuncs = append(sc.shutdownFuncs,
		func(context.Context) error { order = append(order, 1); return nil },
		func(context.Context) error { order = append(order, 2); return nil },
	)

	require.NoError(t, sc.Shutdown(context.Background()))
	assert.Equal(t, []int{2, 1}, order)
}
