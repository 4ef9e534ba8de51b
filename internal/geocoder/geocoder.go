// Package geocoder turns free-form addresses into coordinates and address
// parts for the profile lifecycle.
package geocoder

import (
	"context"
	"errors"
)

var ErrNoResults = errors.New("address could not be geocoded")

type Result struct {
	Longitude        float64 `json:"longitude"`
	Latitude         float64 `json:"latitude"`
	FormattedAddress string  `json:"formatted_address"`
	StreetName       string  `json:"street_name"`
	City             string  `json:"city"`
	StateCode        string  `json:"state_code"`
	Zipcode          string  `json:"zipcode"`
	CountryCode      string  `json:"country_code"`
}

// Geocoder returns candidate matches for an address, best first. An empty
// slice with a nil error means the provider found nothing.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]Result, error)
}

// Static answers every lookup with a fixed result. It backs local runs
// without a MapQuest key.
type Static struct {
	Result Result
}

func (s Static) Geocode(ctx context.Context, address string) ([]Result, error) {
	r := s.Result
	if r.FormattedAddress == "" {
		r.FormattedAddress = address
	}
	return []Result{r}, nil
}
