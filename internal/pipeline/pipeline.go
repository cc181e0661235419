package pipeline

import (
	"context"
	"fmt"

	"github.com/vzahanych/weather-notify/internal/apperr"
	"github.com/vzahanych/weather-notify/internal/location"
	"github.com/vzahanych/weather-notify/internal/notify"
	"github.com/vzahanych/weather-notify/internal/resilience"
	"github.com/vzahanych/weather-notify/internal/temperature"
	"github.com/vzahanych/weather-notify/internal/weather"
	"github.com/vzahanych/weather-notify/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Fetcher returns the current conditions for a place.
type Fetcher interface {
	Fetch(ctx context.Context, place location.Location, apiKey string) (*weather.Snapshot, error)
}

// Result is everything one run produced.
type Result struct {
	Location location.Location
	Snapshot *weather.Snapshot
	Display  temperature.Display
	Payload  notify.Payload
}

// Options are the per run settings taken from configuration and flags.
type Options struct {
	APIKey    string
	Unit      temperature.Unit
	Precision int
}

// Pipeline runs resolve, fetch, convert, compose and notify in that order.
// Any stage failing stops the run and no notification is sent.
type Pipeline struct {
	resolver *location.Resolver
	fetcher  Fetcher
	retrier  *resilience.Retrier
	notifier notify.Notifier
	opts     Options
	logger   *zap.Logger
	tele     *telemetry.Telemetry
}

func New(resolver *location.Resolver, fetcher Fetcher, retrier *resilience.Retrier, notifier notify.Notifier, opts Options, logger *zap.Logger, tele *telemetry.Telemetry) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		fetcher:  fetcher,
		retrier:  retrier,
		notifier: notifier,
		opts:     opts,
		logger:   logger.Named("pipeline"),
		tele:     tele,
	}
}

// Run performs one notification. explicit is nil when no place was given.
func (p *Pipeline) Run(ctx context.Context, explicit *string) (*Result, error) {
	ctx, span := p.tele.GetTracer().Start(ctx, "pipeline.Run")
	defer span.End()

	if p.opts.APIKey == "" {
		return nil, apperr.Config("pipeline.Run", fmt.Errorf("api key is empty"))
	}

	loc, err := p.resolve(ctx, explicit)
	if err != nil {
		p.tele.RecordError(ctx, err, attribute.String("stage", "resolve"))
		return nil, err
	}
	span.SetAttributes(attribute.String("place", loc.Describe()))

	snapshot, err := resilience.Do(ctx, p.retrier, func(ctx context.Context) (*weather.Snapshot, error) {
		return p.fetcher.Fetch(ctx, loc, p.opts.APIKey)
	})
	if err != nil {
		p.tele.RecordError(ctx, err, attribute.String("stage", "fetch"))
		return nil, err
	}

	display, err := temperature.NewDisplay(snapshot.Temp(), snapshot.TempMin(), snapshot.TempMax(), p.opts.Unit, p.opts.Precision)
	if err != nil {
		p.tele.RecordError(ctx, err, attribute.String("stage", "convert"))
		return nil, err
	}

	payload, err := notify.Compose(loc.Name(), snapshot, display)
	if err != nil {
		p.tele.RecordError(ctx, err, attribute.String("stage", "compose"))
		return nil, err
	}

	if err := p.send(ctx, payload); err != nil {
		return nil, err
	}

	p.logger.Info("Notification delivered",
		zap.String("place", loc.Name()),
		zap.String("summary", payload.Summary()))

	return &Result{
		Location: loc,
		Snapshot: snapshot,
		Display:  display,
		Payload:  payload,
	}, nil
}

func (p *Pipeline) resolve(ctx context.Context, explicit *string) (location.Location, error) {
	ctx, span := p.tele.GetTracer().Start(ctx, "location.Resolve")
	defer span.End()

	span.SetAttributes(attribute.Bool("explicit", explicit != nil))
	return p.resolver.Resolve(ctx, explicit)
}

func (p *Pipeline) send(ctx context.Context, payload notify.Payload) error {
	ctx, span := p.tele.GetTracer().Start(ctx, "notify.Send")
	defer span.End()

	span.SetAttributes(attribute.String("icon", payload.IconKey()))
	if err := p.notifier.Send(ctx, payload); err != nil {
		p.tele.RecordError(ctx, err, attribute.String("stage", "notify"))
		return err
	}
	return nil
}

// RetryingGeolocator repeats transient geolocation failures.
type RetryingGeolocator struct {
	geo     location.Geolocator
	retrier *resilience.Retrier
}

func NewRetryingGeolocator(geo location.Geolocator, retrier *resilience.Retrier) *RetryingGeolocator {
	return &RetryingGeolocator{geo: geo, retrier: retrier}
}

func (g *RetryingGeolocator) Locate(ctx context.Context) (location.Location, error) {
	return resilience.Do(ctx, g.retrier, g.geo.Locate)
}
