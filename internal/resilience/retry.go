package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sony/gobreaker"
	"github.com/vzahanych/weather-notify/internal/apperr"
	"github.com/vzahanych/weather-notify/internal/config"
	"go.uber.org/zap"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func BackoffFromConfig(cfg config.RetryConfig) BackoffConfig {
	return BackoffConfig{
		MaxAttempts:     cfg.MaxAttempts,
		InitialInterval: time.Duration(cfg.InitialBackoffMs) * time.Millisecond,
		MaxInterval:     time.Duration(cfg.MaxBackoffMs) * time.Millisecond,
	}
}

// Delay is the wait before retry number attempt (0 based): InitialInterval * 2^attempt,
// capped at MaxInterval.
func (b BackoffConfig) Delay(attempt int) time.Duration {
	delay := b.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
	if b.MaxInterval > 0 && delay > b.MaxInterval {
		delay = b.MaxInterval
	}
	return delay
}

// Breaker is a transient failure budget shared by every remote call of one run. Once
// threshold transient failures have been seen, in any combination of targets, it opens
// and the remaining calls fail without reaching the network.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

func NewBreaker(threshold int, logger *zap.Logger) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	logger = logger.Named("breaker")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "remote",
		MaxRequests: 1,
		// Counts are kept for the whole run; a success does not refill the budget.
		Interval: 0,
		Timeout:  time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.TotalFailures >= uint32(threshold)
		},
		// Client and format errors do not count against the provider.
		IsSuccessful: func(err error) bool {
			return err == nil || !apperr.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Breaker{cb: cb}
}

func (b *Breaker) IsOpen() bool {
	return b.cb.State() == gobreaker.StateOpen
}

// Retrier repeats transient failures of one target with exponential backoff. Every
// attempt goes through the shared breaker; non-transient failures return immediately.
type Retrier struct {
	name    string
	backoff BackoffConfig
	breaker *Breaker
	logger  *zap.Logger
}

func NewRetrier(name string, backoff BackoffConfig, breaker *Breaker, logger *zap.Logger) *Retrier {
	if backoff.MaxAttempts < 1 {
		backoff.MaxAttempts = 1
	}

	return &Retrier{
		name:    name,
		backoff: backoff,
		breaker: breaker,
		logger:  logger.Named("retry").With(zap.String("target", name)),
	}
}

func (r *Retrier) open(cause error) error {
	return apperr.Transient(r.name, 0, fmt.Errorf("circuit breaker open: %w", cause))
}

// Do runs fn until it succeeds, fails permanently, the attempts are used up or ctx ends.
func Do[T any](ctx context.Context, r *Retrier, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < r.backoff.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := r.backoff.Delay(attempt - 1)
			r.logger.Info("Retrying after transient failure",
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", r.backoff.MaxAttempts),
				zap.Duration("backoff", delay),
				zap.Error(lastErr))

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, fmt.Errorf("%s: %w (last failure: %v)", r.name, ctx.Err(), lastErr)
			case <-timer.C:
			}
		}

		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("%s: %w", r.name, err)
		}

		result, err := r.breaker.cb.Execute(func() (interface{}, error) {
			return fn(ctx)
		})
		if err == nil {
			if attempt > 0 {
				r.logger.Info("Succeeded after retries", zap.Int("attempts_needed", attempt+1))
			}
			v, _ := result.(T)
			return v, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			if lastErr != nil {
				return zero, r.open(lastErr)
			}
			return zero, r.open(err)
		}

		if !apperr.IsRetryable(err) {
			return zero, err
		}
		lastErr = err

		if r.breaker.IsOpen() {
			r.logger.Warn("Failure budget spent, not retrying",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			return zero, r.open(err)
		}
	}

	r.logger.Warn("All attempts failed",
		zap.Int("max_attempts", r.backoff.MaxAttempts),
		zap.Error(lastErr))
	return zero, fmt.Errorf("%s: giving up after %d attempts: %w", r.name, r.backoff.MaxAttempts, lastErr)
}
