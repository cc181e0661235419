package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-notify/internal/apperr"
	"github.com/vzahanych/weather-notify/internal/config"
	"go.uber.org/zap/zaptest"
)

var fast = BackoffConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 4 * time.Millisecond}

func TestBackoffDelay(t *testing.T) {
	b := BackoffFromConfig(config.RetryConfig{MaxAttempts: 3, InitialBackoffMs: 500, MaxBackoffMs: 1500})

	assert.Equal(t, 500*time.Millisecond, b.Delay(0))
	assert.Equal(t, time.Second, b.Delay(1))
	assert.Equal(t, 1500*time.Millisecond, b.Delay(2))
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	r := NewRetrier("weather", fast, NewBreaker(10, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	calls := 0
	got, err := Do(context.Background(), r, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", apperr.Transient("weather.Fetch", 503, errors.New("unavailable"))
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	r := NewRetrier("weather", fast, NewBreaker(10, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	calls := 0
	_, err := Do(context.Background(), r, func(ctx context.Context) (int, error) {
		calls++
		return 0, apperr.Client("weather.Fetch", 404, "Atlantis")
	})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindClient))
	assert.Equal(t, 1, calls)
}

func TestDoGivesUpAfterMaxAttempts(t *testing.T) {
	r := NewRetrier("weather", fast, NewBreaker(10, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	calls := 0
	_, err := Do(context.Background(), r, func(ctx context.Context) (int, error) {
		calls++
		return 0, apperr.Transient("weather.Fetch", 500, errors.New("boom"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, apperr.Is(err, apperr.KindTransient))
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
}

func TestDoStopsOnCancel(t *testing.T) {
	r := NewRetrier("weather", BackoffConfig{MaxAttempts: 5, InitialInterval: time.Hour}, NewBreaker(10, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, r, func(ctx context.Context) (int, error) {
			calls++
			return 0, apperr.Transient("weather.Fetch", 0, errors.New("refused"))
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after cancel")
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	logger := zaptest.NewLogger(t)
	r := NewRetrier("geolocation", BackoffConfig{MaxAttempts: 1, InitialInterval: time.Millisecond}, NewBreaker(2, logger), logger)

	calls := 0
	failing := func(ctx context.Context) (int, error) {
		calls++
		return 0, apperr.Transient("geolocation.Locate", 502, errors.New("bad gateway"))
	}

	for i := 0; i < 2; i++ {
		_, err := Do(context.Background(), r, failing)
		require.Error(t, err)
	}

	_, err := Do(context.Background(), r, failing)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, apperr.Is(err, apperr.KindTransient))
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	r := NewRetrier("weather", BackoffConfig{MaxAttempts: 1, InitialInterval: time.Millisecond}, NewBreaker(1, logger), logger)

	calls := 0
	for i := 0; i < 3; i++ {
		_, err := Do(context.Background(), r, func(ctx context.Context) (int, error) {
			calls++
			return 0, apperr.Client("weather.Fetch", 400, "x")
		})
		assert.True(t, apperr.Is(err, apperr.KindClient))
	}
	assert.Equal(t, 3, calls)
}

// With the default settings a flaky geolocation lookup spends most of the run's budget,
// so the weather call is not retried after its first transient failure.
func TestSharedBreakerShortCircuitsWithDefaults(t *testing.T) {
	cfg := config.NewDefaultConfig()
	logger := zaptest.NewLogger(t)

	backoff := BackoffFromConfig(cfg.Retry)
	backoff.InitialInterval = time.Millisecond
	backoff.MaxInterval = time.Millisecond

	breaker := NewBreaker(cfg.Retry.BreakerThreshold, logger)
	geo := NewRetrier("geolocation", backoff, breaker, logger)
	wx := NewRetrier("weather", backoff, breaker, logger)

	geoCalls := 0
	city, err := Do(context.Background(), geo, func(ctx context.Context) (string, error) {
		geoCalls++
		if geoCalls < cfg.Retry.MaxAttempts {
			return "", apperr.Transient("geolocation.Locate", 503, errors.New("unavailable"))
		}
		return "Lyon", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Lyon", city)
	assert.False(t, breaker.IsOpen())

	wxCalls := 0
	_, err = Do(context.Background(), wx, func(ctx context.Context) (string, error) {
		wxCalls++
		if wxCalls == 1 {
			return "", apperr.Transient("weather.Fetch", 503, errors.New("unavailable"))
		}
		return "clear sky", nil
	})

	require.Error(t, err)
	assert.Equal(t, 1, wxCalls)
	assert.True(t, breaker.IsOpen())
	assert.True(t, apperr.Is(err, apperr.KindTransient))
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Contains(t, err.Error(), "unavailable")
}

func TestOpenBreakerSkipsNetwork(t *testing.T) {
	logger := zaptest.NewLogger(t)
	breaker := NewBreaker(1, logger)

	first := NewRetrier("geolocation", fast, breaker, logger)
	_, err := Do(context.Background(), first, func(ctx context.Context) (int, error) {
		return 0, apperr.Transient("geolocation.Locate", 0, errors.New("refused"))
	})
	require.Error(t, err)
	require.True(t, breaker.IsOpen())

	calls := 0
	second := NewRetrier("weather", fast, breaker, logger)
	_, err = Do(context.Background(), second, func(ctx context.Context) (int, error) {
		calls++
		return 1, nil
	})
	require.Error(t, err)
	assert.Zero(t, calls)
	assert.True(t, apperr.Is(err, apperr.KindTransient))
}
