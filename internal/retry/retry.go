// Package retry runs an operation again after a short exponential backoff when it
// fails with a retryable error.
package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// Config configures retry behavior with exponential backoff.
type Config struct {
	MaxRetries int           // Retries after the first attempt
	BaseDelay  time.Duration // Delay before the first retry
	MaxDelay   time.Duration // Upper bound for any delay
	Multiplier float64
	Jitter     bool // Randomize each delay by up to a quarter
}

// Once retries a single time after a short pause, which is all reads need.
func Once(baseDelay time.Duration) Config {
	return Config{
		MaxRetries: 1,
		BaseDelay:  baseDelay,
		MaxDelay:   baseDelay * 4,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Do executes operation until it succeeds, returns a non retryable error, retries are
// exhausted or ctx is done. The last error is returned.
func Do(ctx context.Context, config Config, log *slog.Logger, retryable func(error) bool, operation func() error) error {
	var err error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		if !retryable(err) || attempt == config.MaxRetries {
			return err
		}

		delay := Delay(config, attempt)
		log.Debug("Retrying operation", "attempt", attempt+2, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
	}
	return err
}

// Delay computes the pause before retry number attempt+1.
func Delay(config Config, attempt int) time.Duration {
	delay := float64(config.BaseDelay) * math.Pow(config.Multiplier, float64(attempt))
	if config.MaxDelay > 0 && delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.Jitter && delay > 0 {
		jitter := delay * 0.25
		delay += (rand.Float64()*2 - 1) * jitter
	}
	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}
