package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "info": {"statuscode": 0, "messages": []},
  "results": [{
    "providedLocation": {"location": "233 S Wacker Dr, Chicago, IL"},
    "locations": [{
      "street": "233 S Wacker Dr",
      "adminArea5": "Chicago",
      "adminArea3": "IL",
      "adminArea1": "US",
      "postalCode": "60606",
      "latLng": {"lat": 41.878876, "lng": -87.635915}
    }]
  }]
}`

func TestMapQuest_Geocode(t *testing.T) {
	var gotKey, gotLocation string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotLocation = r.URL.Query().Get("location")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	g, err := NewMapQuest(MapQuestConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	results, err := g.Geocode(context.Background(), "233 S Wacker Dr, Chicago, IL")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "233 S Wacker Dr, Chicago, IL", gotLocation)

	r := results[0]
	assert.InDelta(t, -87.635915, r.Longitude, 1e-9)
	assert.InDelta(t, 41.878876, r.Latitude, 1e-9)
	assert.Equal(t, "233 S Wacker Dr", r.StreetName)
	assert.Equal(t, "Chicago", r.City)
	assert.Equal(t, "IL", r.StateCode)
	assert.Equal(t, "60606", r.Zipcode)
	assert.Equal(t, "US", r.CountryCode)
	assert.Equal(t, "233 S Wacker Dr, Chicago, IL 60606, US", r.FormattedAddress)
}

func TestMapQuest_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"info":{"statuscode":0},"results":[{"locations":[]}]}`))
	}))
	defer srv.Close()

	g, err := NewMapQuest(MapQuestConfig{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	results, err := g.Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMapQuest_RejectedLocationIsNoMatch(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"info":{"statuscode":400,"messages":["Illegal argument from request: Insufficient info for location"]},"results":[]}`))
	}))
	defer srv.Close()

	g, err := NewMapQuest(MapQuestConfig{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		results, err := g.Geocode(context.Background(), "!!!")
		require.NoError(t, err)
		assert.Empty(t, results)
	}

	assert.Equal(t, 10, calls, "every lookup reaches the provider")
	assert.Equal(t, "closed", g.Stats()["state"])
	assert.Equal(t, 0, g.Stats()["failure_count"])
}

func TestMapQuest_ProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusForbidden, "The AppKey submitted with this request is invalid."},
		{"api status", http.StatusOK, `{"info":{"statuscode":403,"messages":["This key is not authorized for this service."]}}`},
		{"bad json", http.StatusOK, `{"info":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g, err := NewMapQuest(MapQuestConfig{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = g.Geocode(context.Background(), "somewhere")
			assert.Error(t, err)
		})
	}
}

func TestNewMapQuest_RequiresKey(t *testing.T) {
	_, err := NewMapQuest(MapQuestConfig{})
	assert.Error(t, err)
}

func TestStatic_Geocode(t *testing.T) {
	g := Static{Result: Result{Longitude: 1, Latitude: 2, City: "Boston"}}

	results, err := g.Geocode(context.Background(), "1 Main St")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Boston", results[0].City)
	assert.Equal(t, "1 Main St", results[0].FormattedAddress)
}
