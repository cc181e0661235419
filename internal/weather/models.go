package weather

import (
	"errors"
	"time"

	"github.com/vzahanych/weather-notify/internal/temperature"
)

var ErrNoConditions = errors.New("response has no weather conditions")

// Snapshot is the current weather for one place as reported by the provider.
// Temperatures are in Kelvin.
type Snapshot struct {
	Coord          Coord       `json:"coord"`
	Conditions     []Condition `json:"weather"`
	Base           string      `json:"base"`
	Main           MainMetrics `json:"main"`
	Visibility     int         `json:"visibility"`
	Wind           Wind        `json:"wind"`
	Clouds         Clouds      `json:"clouds"`
	Dt             int64       `json:"dt"`
	Sys            Sys         `json:"sys"`
	TimezoneOffset int         `json:"timezone"`
	ID             int         `json:"id"`
	PlaceName      string      `json:"name"`
	StatusCode     int         `json:"cod"`
}

type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type MainMetrics struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
	Gust  float64 `json:"gust,omitempty"`
}

type Clouds struct {
	All int `json:"all"`
}

type Sys struct {
	Type    int    `json:"type"`
	ID      int    `json:"id"`
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// Validate checks the invariants of a successful response.
func (s *Snapshot) Validate() error {
	if len(s.Conditions) == 0 {
		return ErrNoConditions
	}
	return nil
}

// Primary is the first reported condition.
func (s *Snapshot) Primary() (Condition, error) {
	if len(s.Conditions) == 0 {
		return Condition{}, ErrNoConditions
	}
	return s.Conditions[0], nil
}

func (s *Snapshot) CountryCode() string {
	return s.Sys.Country
}

func (s *Snapshot) Temp() temperature.Value {
	return temperature.New(s.Main.Temp, temperature.Kelvin)
}

func (s *Snapshot) FeelsLike() temperature.Value {
	return temperature.New(s.Main.FeelsLike, temperature.Kelvin)
}

func (s *Snapshot) TempMin() temperature.Value {
	return temperature.New(s.Main.TempMin, temperature.Kelvin)
}

func (s *Snapshot) TempMax() temperature.Value {
	return temperature.New(s.Main.TempMax, temperature.Kelvin)
}

func (s *Snapshot) Sunrise() time.Time {
	return time.Unix(s.Sys.Sunrise, 0).UTC()
}

func (s *Snapshot) Sunset() time.Time {
	return time.Unix(s.Sys.Sunset, 0).UTC()
}

// ObservedAt is the provider's measurement time.
func (s *Snapshot) ObservedAt() time.Time {
	return time.Unix(s.Dt, 0).UTC()
}

// Timezone is the place's fixed offset from UTC at observation time.
func (s *Snapshot) Timezone() *time.Location {
	return time.FixedZone("", s.TimezoneOffset)
}
