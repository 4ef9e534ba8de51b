package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskerhub/backend/internal/breaker"
)

const DefaultMapQuestURL = "https://www.mapquestapi.com/geocoding/v1/address"

type MapQuestConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// MapQuest calls the MapQuest geocoding API. Calls go through a circuit
// breaker so an unreachable provider fails fast.
type MapQuest struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *breaker.Breaker
}

func NewMapQuest(cfg MapQuestConfig) (*MapQuest, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mapquest API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMapQuestURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	bcfg := breaker.DefaultConfig("geocoder")
	bcfg.IsFailure = func(err error) bool {
		return !errors.Is(err, context.Canceled)
	}

	return &MapQuest{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker.New(bcfg),
	}, nil
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mapQuestLocation `json:"locations"`
	} `json:"results"`
}

type mapQuestLocation struct {
	Street     string `json:"street"`
	AdminArea5 string `json:"adminArea5"`
	AdminArea3 string `json:"adminArea3"`
	AdminArea1 string `json:"adminArea1"`
	PostalCode string `json:"postalCode"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

func (l mapQuestLocation) toResult() Result {
	parts := []string{}
	for _, p := range []string{l.Street, l.AdminArea5, strings.TrimSpace(l.AdminArea3 + " " + l.PostalCode), l.AdminArea1} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return Result{
		Longitude:        l.LatLng.Lng,
		Latitude:         l.LatLng.Lat,
		FormattedAddress: strings.Join(parts, ", "),
		StreetName:       l.Street,
		City:             l.AdminArea5,
		StateCode:        l.AdminArea3,
		Zipcode:          l.PostalCode,
		CountryCode:      l.AdminArea1,
	}
}

func (m *MapQuest) Geocode(ctx context.Context, address string) ([]Result, error) {
	var results []Result
	err := m.breaker.Execute(func() error {
		var err error
		results, err = m.lookup(ctx, address)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (m *MapQuest) lookup(ctx context.Context, address string) ([]Result, error) {
	q := url.Values{}
	q.Set("key", m.apiKey)
	q.Set("location", address)
	q.Set("maxResults", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	// 400 means the location was rejected. That is no match, not an outage.
	if payload.Info.StatusCode == http.StatusBadRequest {
		return []Result{}, nil
	}
	if payload.Info.StatusCode != 0 {
		return nil, fmt.Errorf("geocoder status %d: %s", payload.Info.StatusCode, strings.Join(payload.Info.Messages, "; "))
	}

	results := []Result{}
	for _, r := range payload.Results {
		for _, loc := range r.Locations {
			results = append(results, loc.toResult())
		}
	}
	return results, nil
}

func (m *MapQuest) Stats() map[string]interface{} {
	return m.breaker.Stats()
}
