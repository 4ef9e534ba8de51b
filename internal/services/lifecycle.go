package services

import (
	"context"
	"fmt"
	"strings"

	"taskerhub/backend/internal/geocoder"
	"taskerhub/backend/internal/models"

	"github.com/gosimple/slug"
)

// ProfileStage transforms a profile before it is written. A stage error
// aborts the write and leaves the profile's stored state untouched.
type ProfileStage interface {
	Name() string
	Apply(ctx context.Context, profile *models.Profile) error
}

type ProfilePipeline struct {
	stages []ProfileStage
}

// NewProfilePipeline runs the slug stage, then the geocode stage.
func NewProfilePipeline(g geocoder.Geocoder) *ProfilePipeline {
	return &ProfilePipeline{stages: []ProfileStage{SlugStage{}, &GeocodeStage{geocoder: g}}}
}

func (p *ProfilePipeline) Run(ctx context.Context, profile *models.Profile) error {
	for _, stage := range p.stages {
		if err := stage.Apply(ctx, profile); err != nil {
			return err
		}
	}
	return nil
}

type SlugStage struct{}

func (SlugStage) Name() string { return "slug" }

func (SlugStage) Apply(_ context.Context, profile *models.Profile) error {
	profile.Slug = slug.Make(profile.Name)
	return nil
}

// GeocodeStage resolves Address into Location and clears Address. Profiles
// without an address keep their current location.
type GeocodeStage struct {
	geocoder geocoder.Geocoder
}

func (*GeocodeStage) Name() string { return "geocode" }

func (s *GeocodeStage) Apply(ctx context.Context, profile *models.Profile) error {
	address := strings.TrimSpace(profile.Address)
	if address == "" {
		profile.Address = ""
		return nil
	}

	results, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return Internal(fmt.Errorf("geocode %q: %w", address, err))
	}
	if len(results) == 0 {
		return ValidationFailed(geocoder.ErrNoResults.Error(), geocoder.ErrNoResults)
	}

	best := results[0]
	profile.Location = models.Location{
		Type:             "Point",
		Coordinates:      models.NewPoint(best.Longitude, best.Latitude),
		FormattedAddress: best.FormattedAddress,
		Street:           best.StreetName,
		City:             best.City,
		State:            best.StateCode,
		Zipcode:          best.Zipcode,
		Country:          best.CountryCode,
	}
	profile.Address = ""
	return nil
}
