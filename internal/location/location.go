package location

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Location is the place weather is requested for. It is either explicit (a free-form
// query typed by the user) or resolved (coordinates and names from geolocation).
// Values are passed by copy and never mutated after construction.
type Location struct {
	Query       string  `json:"query,omitempty" toml:"query,omitempty"`
	Latitude    float64 `json:"latitude" toml:"latitude"`
	Longitude   float64 `json:"longitude" toml:"longitude"`
	City        string  `json:"city" toml:"city"`
	Country     string  `json:"country" toml:"country"`
	CountryCode string  `json:"country_code,omitempty" toml:"country_code,omitempty"`
}

func Explicit(query string) Location {
	return Location{Query: query}
}

func Resolved(lat, lon float64, city, country, countryCode string) Location {
	return Location{
		Latitude:    lat,
		Longitude:   lon,
		City:        city,
		Country:     country,
		CountryCode: countryCode,
	}
}

func (l Location) IsExplicit() bool {
	return l.Query != ""
}

// IsZero reports whether l carries neither a query nor any resolved data.
func (l Location) IsZero() bool {
	return l == Location{}
}

// Name is the human readable place shown in notifications.
func (l Location) Name() string {
	switch {
	case l.IsExplicit():
		return l.Query
	case l.City != "":
		return l.City
	default:
		return l.coords()
	}
}

// QueryParams returns the provider query for l: q for an explicit place or a known city
// ("City,CC"), otherwise lat/lon.
func (l Location) QueryParams() url.Values {
	q := url.Values{}
	switch {
	case l.IsExplicit():
		q.Set("q", l.Query)
	case l.City != "":
		city := l.City
		if l.CountryCode != "" {
			city = fmt.Sprintf("%s,%s", l.City, l.CountryCode)
		}
		q.Set("q", city)
	default:
		q.Set("lat", strconv.FormatFloat(l.Latitude, 'f', 4, 64))
		q.Set("lon", strconv.FormatFloat(l.Longitude, 'f', 4, 64))
	}
	return q
}

// Describe is the query as a single string, used in error reports.
func (l Location) Describe() string {
	q := l.QueryParams()
	if v := q.Get("q"); v != "" {
		return v
	}
	return l.coords()
}

func (l Location) coords() string {
	return strings.Join([]string{
		strconv.FormatFloat(l.Latitude, 'f', 4, 64),
		strconv.FormatFloat(l.Longitude, 'f', 4, 64),
	}, ",")
}
