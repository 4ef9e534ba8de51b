package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/datatypes"
)

const DefaultProfilePhoto = "no-photo.jpg"

// Location is a GeoJSON point plus the address parts returned by the geocoder.
type Location struct {
	Type             string                       `json:"type,omitempty" bson:"type,omitempty"`
	Coordinates      datatypes.JSONSlice[float64] `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	FormattedAddress string                       `json:"formatted_address,omitempty" bson:"formatted_address,omitempty"`
	Street           string                       `json:"street,omitempty" bson:"street,omitempty"`
	City             string                       `json:"city,omitempty" bson:"city,omitempty"`
	State            string                       `json:"state,omitempty" bson:"state,omitempty"`
	Zipcode          string                       `json:"zipcode,omitempty" bson:"zipcode,omitempty"`
	Country          string                       `json:"country,omitempty" bson:"country,omitempty"`
}

func NewPoint(longitude, latitude float64) datatypes.JSONSlice[float64] {
	return datatypes.NewJSONSlice([]float64{longitude, latitude})
}

func (l Location) IsZero() bool {
	return l.Type == "" && len(l.Coordinates) == 0
}

// Profile is a tasker's public page. Address is input only: the lifecycle
// pipeline turns it into Location and clears it before the profile is stored.
type Profile struct {
	ID            uuid.UUID `json:"id" gorm:"primaryKey;type:uuid" bson:"_id"`
	Name          string    `json:"name" gorm:"uniqueIndex;size:50;not null" bson:"name" validate:"required,max=50"`
	Slug          string    `json:"slug" gorm:"index" bson:"slug"`
	Description   string    `json:"description" gorm:"size:500;not null" bson:"description" validate:"required,max=500"`
	Phone         string    `json:"phone" gorm:"size:20;not null" bson:"phone" validate:"required,max=20"`
	Email         string    `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	AccountNumber string    `json:"-" bson:"account_number,omitempty" validate:"omitempty,numeric,max=34"`
	BankName      string    `json:"-" bson:"bank_name,omitempty" validate:"omitempty,max=100"`
	Address       string    `json:"address,omitempty" gorm:"-" bson:"-"`
	Location      Location  `json:"location" gorm:"embedded;embeddedPrefix:location_" bson:"location"`
	Photo         string    `json:"photo" bson:"photo"`
	UserID        uuid.UUID `json:"user" gorm:"type:uuid;not null;index" bson:"user_id" validate:"required"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

func (p *Profile) ResourceKind() string  { return "profile" }
func (p *Profile) ResourceID() uuid.UUID { return p.ID }
func (p *Profile) OwnerID() uuid.UUID    { return p.UserID }

func (p *Profile) Validate() error {
	return Validate(p)
}

func (p *Profile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, Name: p.Name, Description: p.Description}
}

// ProfileSummary is the projection embedded in task responses.
type ProfileSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}
