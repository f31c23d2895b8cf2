package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGeocode_Success(t *testing.T) {
	var gotQuery, gotFormat, gotLimit, gotEmail string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		gotFormat = r.URL.Query().Get("format")
		gotLimit = r.URL.Query().Get("limit")
		gotEmail = r.URL.Query().Get("email")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"43.6487","lon":"-79.3817","display_name":"100 King St W, Toronto"}]`))
	}))
	defer server.Close()

	client := NewGeocodeClient(server.URL, "", "ops@summitly.dev", zap.NewNop())

	lat, lng, err := client.Geocode(context.Background(), "100 King St W, Toronto, ON")
	require.NoError(t, err)

	assert.InDelta(t, 43.6487, lat, 1e-9)
	assert.InDelta(t, -79.3817, lng, 1e-9)
	assert.Equal(t, "100 King St W, Toronto, ON", gotQuery)
	assert.Equal(t, "json", gotFormat)
	assert.Equal(t, "1", gotLimit)
	assert.Equal(t, "ops@summitly.dev", gotEmail)
}

func TestGeocode_APIKeyForwarded(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"45.4215","lon":"-75.6972","display_name":"Ottawa"}]`))
	}))
	defer server.Close()

	client := NewGeocodeClient(server.URL, "test-api-key", "", zap.NewNop())

	_, _, err := client.Geocode(context.Background(), "Ottawa")
	require.NoError(t, err)
	assert.Equal(t, "test-api-key", gotKey)
}

func TestGeocode_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewGeocodeClient(server.URL, "", "", zap.NewNop())

	_, _, err := client.Geocode(context.Background(), "nowhere that exists")
	assert.ErrorIs(t, err, ErrNoGeocodeMatch)
}

func TestGeocode_BadCoordinatePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"not-a-number","lon":"-79.38","display_name":"broken"}]`))
	}))
	defer server.Close()

	client := NewGeocodeClient(server.URL, "", "", zap.NewNop())

	_, _, err := client.Geocode(context.Background(), "100 King St W")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoGeocodeMatch)
}

func TestGeocode_RequiresQuery(t *testing.T) {
	client := NewGeocodeClient("http://localhost:0", "", "", zap.NewNop())

	_, _, err := client.Geocode(context.Background(), "")
	assert.Error(t, err)
}
