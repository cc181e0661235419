package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-notify/internal/apperr"
	"github.com/vzahanych/weather-notify/internal/config"
	"github.com/vzahanych/weather-notify/internal/location"
	"github.com/vzahanych/weather-notify/internal/notify"
	"github.com/vzahanych/weather-notify/internal/pipeline"
	"github.com/vzahanych/weather-notify/internal/resilience"
	"github.com/vzahanych/weather-notify/internal/temperature"
	"github.com/vzahanych/weather-notify/internal/weather"
	"go.uber.org/zap"
)

func (a *app) runNotify(cmd *cobra.Command, args []string) error {
	cfg := a.cfg

	var explicit *string
	if len(args) == 1 {
		explicit = &args[0]
	}

	unit, err := temperature.ParseUnit(cfg.Display.Unit)
	if err != nil {
		return apperr.Config("cmd.run", err)
	}

	a.log.Debug("Starting run",
		zap.String("config_path", a.configPath),
		zap.Bool("explicit_place", explicit != nil),
		zap.String("unit", string(unit)),
		zap.Int("precision", cfg.Display.Precision),
		zap.Bool("telemetry_enabled", a.tele.IsEnabled()))

	p := a.buildPipeline(cfg, unit)

	result, err := p.Run(cmd.Context(), explicit)
	if err != nil {
		a.log.Debug("Run failed", zap.String("kind", apperr.KindOf(err).String()), zap.Error(err))
		return err
	}

	out, err := json.MarshalIndent(result.Snapshot, "", "  ")
	if err != nil {
		return apperr.DataFormat("cmd.run", nil, err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func (a *app) buildPipeline(cfg *config.Config, unit temperature.Unit) *pipeline.Pipeline {
	backoff := resilience.BackoffFromConfig(cfg.Retry)
	breaker := resilience.NewBreaker(cfg.Retry.BreakerThreshold, a.log)

	cachePath := cfg.Cache.Path
	if cachePath == "" {
		cachePath = config.DefaultCachePath()
	}

	geo := pipeline.NewRetryingGeolocator(
		location.NewIPAPIClient(cfg.Geolocation.URL, cfg.Geolocation.RequestTimeout(), a.log),
		resilience.NewRetrier("geolocation", backoff, breaker, a.log))

	resolver := location.NewResolver(
		location.NewCache(cachePath, cfg.Cache.TTLDuration(), a.log),
		geo,
		a.log)

	var notifier notify.Notifier = notify.NewDesktopNotifier(cfg.Notify, a.log)
	if a.noNotify || !cfg.Notify.Enabled {
		notifier = notify.NewLogNotifier(a.log)
	}

	return pipeline.New(
		resolver,
		weather.NewClient(cfg.Provider, a.log, a.tele),
		resilience.NewRetrier("weather", backoff, breaker, a.log),
		notifier,
		pipeline.Options{
			APIKey:    cfg.Provider.APIKey,
			Unit:      unit,
			Precision: cfg.Display.Precision,
		},
		a.log,
		a.tele)
}
