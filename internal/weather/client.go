package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vzahanych/weather-notify/internal/apperr"
	"github.com/vzahanych/weather-notify/internal/config"
	"github.com/vzahanych/weather-notify/internal/location"
	"github.com/vzahanych/weather-notify/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const maxResponseBody = 1 << 20

// Client fetches current conditions from an OpenWeatherMap compatible API.
// It issues exactly one request per Fetch; retrying is left to the caller.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	tele    *telemetry.Telemetry
}

func NewClient(cfg config.ProviderConfig, logger *zap.Logger, tele *telemetry.Telemetry) *Client {
	return NewClientWithHTTP(cfg.BaseURL, &http.Client{Timeout: cfg.RequestTimeout()}, logger, tele)
}

func NewClientWithHTTP(baseURL string, client *http.Client, logger *zap.Logger, tele *telemetry.Telemetry) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger.Named("weather-client"),
		tele:    tele,
	}
}

// Fetch returns the current weather for place.
//
// A 4xx response is a client error, a 5xx response or transport failure is transient,
// and a body that does not decode or lacks conditions is a data format error.
func (c *Client) Fetch(ctx context.Context, place location.Location, apiKey string) (*Snapshot, error) {
	const op = "weather.Fetch"

	ctx, span := c.tele.GetTracer().Start(ctx, op)
	defer span.End()

	query := place.Describe()
	span.SetAttributes(attribute.String("place", query))

	if apiKey == "" {
		return nil, apperr.Config(op, errors.New("api key is empty"))
	}

	u, err := url.Parse(c.baseURL + "/weather")
	if err != nil {
		return nil, apperr.Config(op, fmt.Errorf("invalid base url: %w", err))
	}

	q := place.QueryParams()
	c.logger.Debug("Fetching current weather", zap.String("url", u.String()), zap.String("query", q.Encode()))

	q.Set("appid", apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// The url in a transport error carries the key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		c.tele.RecordError(ctx, err)
		return nil, apperr.Transient(op, 0, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("status", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, apperr.Transient(op, resp.StatusCode, fmt.Errorf("reading body: %w", err))
	}

	if err := apperr.FromStatus(op, resp.StatusCode, query); err != nil {
		c.logger.Warn("Weather provider returned non-success status",
			zap.String("query", query),
			zap.Int("status", resp.StatusCode),
			zap.String("body", apperr.Snippet(body)))
		c.tele.RecordError(ctx, err)
		return nil, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		c.tele.RecordError(ctx, err)
		return nil, apperr.DataFormat(op, body, err)
	}

	if err := snapshot.Validate(); err != nil {
		c.tele.RecordError(ctx, err)
		return nil, apperr.DataFormat(op, body, err)
	}

	c.logger.Debug("Weather fetched",
		zap.String("place", snapshot.PlaceName),
		zap.String("country", snapshot.CountryCode()),
		zap.Float64("temp_k", snapshot.Main.Temp),
		zap.String("condition", snapshot.Conditions[0].Main))

	return &snapshot, nil
}
