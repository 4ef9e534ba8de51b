package services

import (
	"context"
	"errors"
	"testing"

	"taskerhub/backend/internal/geocoder"
	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugStage(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Acme Movers!!", "acme-movers"},
		{"Devcentral Bootcamp", "devcentral-bootcamp"},
		{"  Café  Déjà Vu ", "cafe-deja-vu"},
	}

	for _, tt := range tests {
		p := &models.Profile{Name: tt.name}
		require.NoError(t, SlugStage{}.Apply(context.Background(), p))
		assert.Equal(t, tt.want, p.Slug, "slug for %q", tt.name)
	}
}

func TestGeocodeStage_PopulatesLocation(t *testing.T) {
	g := &testutil.StubGeocoder{Results: []geocoder.Result{testutil.BostonResult}}
	p := &models.Profile{Name: "Acme", Address: "233 Bay State Road Boston MA 02215"}

	err := NewProfilePipeline(g).Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1, g.CallCount())
	assert.Equal(t, "", p.Address)
	assert.Equal(t, "Point", p.Location.Type)
	assert.Equal(t, []float64{-71.104028, 42.350846}, []float64(p.Location.Coordinates))
	assert.Equal(t, "Boston", p.Location.City)
	assert.Equal(t, "MA", p.Location.State)
	assert.Equal(t, "02215", p.Location.Zipcode)
	assert.Equal(t, "US", p.Location.Country)
	assert.Equal(t, "233 Bay State Rd", p.Location.Street)
	assert.Equal(t, "acme", p.Slug)
}

func TestGeocodeStage_SkipsWithoutAddress(t *testing.T) {
	g := &testutil.StubGeocoder{}
	existing := models.Location{Type: "Point", Coordinates: models.NewPoint(1, 2)}
	p := &models.Profile{Name: "Acme", Location: existing}

	require.NoError(t, NewProfilePipeline(g).Run(context.Background(), p))
	assert.Zero(t, g.CallCount())
	assert.Equal(t, existing, p.Location)
}

func TestGeocodeStage_EmptyResult(t *testing.T) {
	g := &testutil.StubGeocoder{Results: []geocoder.Result{}}
	p := &models.Profile{Name: "Acme", Address: "nowhere"}

	err := NewProfilePipeline(g).Run(context.Background(), p)
	assert.True(t, IsKind(err, KindValidationFailed), "got %v", err)
	assert.True(t, p.Location.IsZero(), "location must not be partially written")
	assert.Equal(t, "nowhere", p.Address)
}

func TestGeocodeStage_ProviderError(t *testing.T) {
	g := &testutil.StubGeocoder{Err: errors.New("connection refused")}
	p := &models.Profile{Name: "Acme", Address: "somewhere"}

	err := NewProfilePipeline(g).Run(context.Background(), p)
	var er *ErrorResponse
	require.True(t, errors.As(err, &er))
	assert.Equal(t, KindInternal, er.Kind)
	assert.Equal(t, 500, er.StatusCode)
}
