package gocollect

import (
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// Config holds the settings shared by every walk of a Collector.
type Config struct {
	// Logger receives walk lifecycle events at debug level.
	Logger *slog.Logger

	// StepRate limits how many producer steps per second a walk may take (0 = unlimited).
	StepRate float64

	// AutoClear makes Walk.Collect clear the walk after returning its results.
	AutoClear bool
}

// Option configures a Collector.
type Option func(*Config)

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		Logger:    slog.New(slog.DiscardHandler),
		AutoClear: true,
	}
}

// WithLogger sets the logger walks report to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithStepRate limits producer steps to stepsPerSecond, per walk.
// Use 0 for no limit.
func WithStepRate(stepsPerSecond float64) Option {
	return func(c *Config) {
		c.StepRate = stepsPerSecond
	}
}

// WithAutoClear sets whether Walk.Collect clears the walk after returning its results.
// Callers that keep querying a walk after collecting it must disable it.
func WithAutoClear(autoClear bool) Option {
	return func(c *Config) {
		c.AutoClear = autoClear
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Logger == nil {
		return fmt.Errorf("%w: logger must not be nil", ErrInvalidConfig)
	}

	if c.StepRate < 0 {
		return fmt.Errorf("%w: step rate must not be negative: %v", ErrInvalidConfig, c.StepRate)
	}

	return nil
}

// limiter returns a new per-walk step limiter, or nil if steps are not limited.
func (c *Config) limiter() *rate.Limiter {
	if c.StepRate == 0 {
		return nil
	}

	return rate.NewLimiter(rate.Limit(c.StepRate), 1)
}
