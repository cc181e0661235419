package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-notify/internal/apperr"
	"go.uber.org/zap/zaptest"
)

const ipAPIBody = `{"status":"success","country":"United States","countryCode":"US","region":"CA","regionName":"California","city":"San Francisco","zip":"94107","lat":37.7749,"lon":-122.4194,"timezone":"America/Los_Angeles","isp":"Google","org":"Google LLC","as":""}`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIPAPILocate(t *testing.T) {
	srv := serve(t, http.StatusOK, ipAPIBody)
	client := NewIPAPIClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))

	loc, err := client.Locate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Resolved(37.7749, -122.4194, "San Francisco", "United States", "US"), loc)
}

func TestIPAPIFailStatus(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"status":"fail","message":"reserved range"}`)
	client := NewIPAPIClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))

	_, err := client.Locate(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindTransient))
	assert.Contains(t, err.Error(), "reserved range")
}

func TestIPAPIServerError(t *testing.T) {
	srv := serve(t, http.StatusBadGateway, "")
	client := NewIPAPIClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))

	_, err := client.Locate(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindTransient))
}

func TestIPAPIMalformedBody(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html>nope</html>`)
	client := NewIPAPIClient(srv.URL, 5*time.Second, zaptest.NewLogger(t))

	_, err := client.Locate(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindDataFormat))
}

func TestIPAPIConnectionRefused(t *testing.T) {
	srv := serve(t, http.StatusOK, ipAPIBody)
	url := srv.URL
	srv.Close()

	client := NewIPAPIClient(url, time.Second, zaptest.NewLogger(t))

	_, err := client.Locate(context.Background())
	assert.True(t, apperr.Is(err, apperr.KindTransient))
}
