package location

import (
	"context"
	"strings"

	"github.com/vzahanych/weather-notify/internal/apperr"
	"go.uber.org/zap"
)

// Store is the persistence the resolver consults before asking the geolocator.
type Store interface {
	Load() (Cached, bool)
	Save(loc Location) error
	IsFresh(cached Cached) bool
}

// Resolver decides which place to query: an explicit place, else a fresh cache entry,
// else the geolocator.
type Resolver struct {
	store  Store
	geo    Geolocator
	logger *zap.Logger
}

func NewResolver(store Store, geo Geolocator, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		geo:    geo,
		logger: logger.Named("resolver"),
	}
}

// Resolve returns the place to query. explicit is nil when the user gave no place.
// A blank explicit place fails without touching the cache or the network.
func (r *Resolver) Resolve(ctx context.Context, explicit *string) (Location, error) {
	if explicit != nil {
		place := strings.TrimSpace(*explicit)
		if place == "" {
			return Location{}, apperr.EmptyInput("location.Resolve")
		}
		r.logger.Debug("Using explicit place", zap.String("place", place))
		return Explicit(place), nil
	}

	if cached, ok := r.store.Load(); ok {
		if r.store.IsFresh(cached) {
			r.logger.Debug("Cache hit",
				zap.String("city", cached.Location.City),
				zap.Time("fetched_at", cached.FetchedAt))
			return cached.Location, nil
		}
		r.logger.Info("Cached location is stale, resolving again",
			zap.Time("fetched_at", cached.FetchedAt))
	}

	loc, err := r.geo.Locate(ctx)
	if err != nil {
		return Location{}, err
	}

	if err := r.store.Save(loc); err != nil {
		// The location is still usable; the next run will resolve again.
		r.logger.Warn("Failed to cache resolved location", zap.Error(err))
	}

	return loc, nil
}
