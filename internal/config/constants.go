package config

import "time"

// Pool sizing defaults. The pool is topped up to DefaultPoolSize whenever a
// country's cached questions drop below it, and quizzes serve
// DefaultQuizSize questions.
const (
	DefaultPoolSize = 10
	DefaultQuizSize = 5
)

// MetricMaxAgeYears is how far back a dated statistic may reach before the
// extractor skips it. Dates in the future are always skipped.
const MetricMaxAgeYears = 15

// Tolerance for numeric consistency checks between a question's stated
// answer and the dataset value: max(ToleranceRatio * value, ToleranceFloor).
const (
	ToleranceRatio = 0.15
	ToleranceFloor = 2.0
)

// Timeouts
const (
	DefaultHTTPTimeout      = 30 * time.Second
	AIRequestTimeout        = 90 * time.Second
	DatabaseConnectTimeout  = 10 * time.Second
	ServerShutdownTimeout   = 15 * time.Second
	DatabaseConnMaxLifetime = 5 * time.Minute
)

// Database connection pool defaults
const (
	DefaultMaxOpenConns = 25
	DefaultMaxIdleConns = 5
)

// Question difficulty bounds
const (
	MinDifficulty = 1
	MaxDifficulty = 3
)
