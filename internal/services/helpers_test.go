package services

import (
	"worldquest/internal/config"
	"worldquest/internal/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}

func testConfig() *config.Config {
	return &config.Config{
		Quiz: config.QuizConfig{PoolSize: 10, QuizSize: 5},
	}
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
