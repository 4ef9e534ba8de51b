package services

import (
	"context"
	"log"
	"strings"
	"time"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/repositories"
)

type RegistrationRequest struct {
	Name     string      `json:"name" binding:"required,max=100"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role"`
}

// Register creates a Tasker or User account and signs a token for it.
// Admins are created through the CLI or by another admin.
func (s *AuthServiceImpl) Register(ctx context.Context, req RegistrationRequest) (*models.User, string, error) {
	role := models.RoleUser
	if req.Role != "" {
		parsed, err := models.ParseRole(string(req.Role))
		if err != nil || parsed.IsAdmin() {
			return nil, "", ValidationFailed("role must be one of [Tasker, User]", err)
		}
		role = parsed
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	n, err := s.store.Users().Count(ctx, repositories.Eq("email", email))
	if err != nil {
		return nil, "", Internal(err)
	}
	if n > 0 {
		return nil, "", ValidationFailed("email already exists", repositories.ErrDuplicateKey)
	}

	hash, err := HashPassword(req.Password, s.config.BCryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		ID:        newID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Role:      role,
		Password:  hash,
		CreatedAt: time.Now(),
	}
	if err := user.Validate(); err != nil {
		return nil, "", ValidationFailed(err.Error(), err)
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, "", storeError(err, "user", user.ID)
	}
	log.Printf("Registered user %s with role %s", user.ID, user.Role)

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
