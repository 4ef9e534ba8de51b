package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/repositories"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "taskerhub"

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BCryptCost int
}

// Claims are the JWT claims of an access token.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, req RegistrationRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GenerateToken(user *models.User) (string, error)
	TokenTTL() time.Duration
}

type AuthServiceImpl struct {
	store  repositories.Store
	config AuthConfig
	now    func() time.Time
}

func NewAuthService(store repositories.Store, config AuthConfig) *AuthServiceImpl {
	if config.TokenTTL <= 0 {
		config.TokenTTL = 24 * time.Hour
	}
	return &AuthServiceImpl{store: store, config: config, now: time.Now}
}

func (s *AuthServiceImpl) TokenTTL() time.Duration {
	return s.config.TokenTTL
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ValidationFailed("Please provide an email and password", nil)
	}

	users, err := s.store.Users().Find(ctx, repositories.Eq("email", email).Page(0, 1))
	if err != nil {
		return nil, "", Internal(err)
	}
	if len(users) == 0 || !VerifyPassword(users[0].Password, password) {
		return nil, "", Unauthenticated("Invalid credentials")
	}

	user := &users[0]
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthServiceImpl) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID.String(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", Internal(fmt.Errorf("failed to sign token: %w", err))
	}
	return signed, nil
}

// Authenticate verifies token and loads its user. The role is always
// read from the store, so a demoted user loses access immediately.
func (s *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, Unauthenticated("Not authorized to access this route")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, Unauthenticated("Not authorized to access this route")
	}

	id, err := uuid.FromString(claims.UserID)
	if err != nil {
		return nil, Unauthenticated("Not authorized to access this route")
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, Unauthenticated("Not authorized to access this route")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return user, nil
}
