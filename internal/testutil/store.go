// Package testutil provides shared fixtures for package tests: an in-memory
// Store, seeded documents and a scriptable geocoder.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"taskerhub/backend/internal/geocoder"
	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/repositories"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewStore returns a migrated GormStore on a private in-memory sqlite
// database. The database lives as long as the test.
func NewStore(t *testing.T) *repositories.GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// Every new connection to ":memory:" is a new empty database.
	sqlDB.SetMaxOpenConns(1)

	store := repositories.NewGormStore(db)
	if err := store.AutoMigrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestPassword is the plain-text password of every seeded user.
const TestPassword = "Passw0rd!"

var (
	hashOnce   sync.Once
	hashedPass string
)

func hashedTestPassword(t *testing.T) string {
	hashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		hashedPass = string(h)
	})
	return hashedPass
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

func CreateUser(t *testing.T, store repositories.Store, role models.Role) *models.User {
	t.Helper()

	id := newID()
	user := &models.User{
		ID:        id,
		Name:      fmt.Sprintf("%s %s", role, id.String()[:8]),
		Email:     fmt.Sprintf("%s@example.com", id.String()[:8]),
		Role:      role,
		Password:  hashedTestPassword(t),
		CreatedAt: time.Now(),
	}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func CreateProfile(t *testing.T, store repositories.Store, owner *models.User, name string) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		ID:          newID(),
		Name:        name,
		Description: "Profile " + name,
		Phone:       "555-0100",
		Photo:       models.DefaultProfilePhoto,
		UserID:      owner.ID,
		CreatedAt:   time.Now(),
	}
	if err := store.Profiles().Create(context.Background(), profile); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	return profile
}

func CreateTask(t *testing.T, store repositories.Store, profile *models.Profile, owner *models.User, title string) *models.Task {
	t.Helper()

	now := time.Now()
	task := &models.Task{
		ID:          newID(),
		Title:       title,
		Description: "Task " + title,
		Budget:      decimal.NewFromInt(50),
		Status:      models.TaskOpen,
		ProfileID:   profile.ID,
		UserID:      owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.Tasks().Create(context.Background(), task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	return task
}

// StubGeocoder returns Results or Err and records every address it sees.
type StubGeocoder struct {
	mu      sync.Mutex
	Results []geocoder.Result
	Err     error
	Calls   []string
}

func (s *StubGeocoder) Geocode(ctx context.Context, address string) ([]geocoder.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, address)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Results, nil
}

func (s *StubGeocoder) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

// BostonResult is a complete geocoder match used across tests.
var BostonResult = geocoder.Result{
	Longitude:        -71.104028,
	Latitude:         42.350846,
	FormattedAddress: "233 Bay State Rd, Boston, MA 02215, US",
	StreetName:       "233 Bay State Rd",
	City:             "Boston",
	StateCode:        "MA",
	Zipcode:          "02215",
	CountryCode:      "US",
}
