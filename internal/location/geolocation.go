package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vzahanych/weather-notify/internal/apperr"
	"go.uber.org/zap"
)

const maxGeolocationBody = 64 << 10

// Geolocator finds the approximate place of the caller.
type Geolocator interface {
	Locate(ctx context.Context) (Location, error)
}

// IPAPIResponse is the body returned by ip-api.com/json.
type IPAPIResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message,omitempty"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"region"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
}

// IPAPIClient resolves the caller's location from its public address.
type IPAPIClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewIPAPIClient(url string, timeout time.Duration, logger *zap.Logger) *IPAPIClient {
	return &IPAPIClient{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("geolocation"),
	}
}

// NewIPAPIClientWithHTTP uses a caller supplied HTTP client.
func NewIPAPIClientWithHTTP(url string, client *http.Client, logger *zap.Logger) *IPAPIClient {
	return &IPAPIClient{url: url, client: client, logger: logger.Named("geolocation")}
}

func (c *IPAPIClient) Locate(ctx context.Context) (Location, error) {
	const op = "geolocation.Locate"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Location{}, fmt.Errorf("%s: building request: %w", op, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Location{}, apperr.Transient(op, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGeolocationBody))
	if err != nil {
		return Location{}, apperr.Transient(op, resp.StatusCode, fmt.Errorf("reading body: %w", err))
	}

	if err := apperr.FromStatus(op, resp.StatusCode, c.url); err != nil {
		c.logger.Warn("Geolocation request failed", zap.Int("status", resp.StatusCode))
		return Location{}, err
	}

	var payload IPAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return Location{}, apperr.DataFormat(op, body, err)
	}

	if payload.Status != "success" {
		msg := payload.Message
		if msg == "" {
			msg = "status " + payload.Status
		}
		return Location{}, apperr.Transient(op, resp.StatusCode, errors.New(msg))
	}

	loc := Resolved(payload.Lat, payload.Lon, payload.City, payload.Country, payload.CountryCode)

	c.logger.Debug("Location resolved from address",
		zap.String("city", loc.City),
		zap.String("country", loc.Country),
		zap.Float64("lat", loc.Latitude),
		zap.Float64("lon", loc.Longitude))

	return loc, nil
}
