package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/repositories"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserInput struct {
	Name     *string      `json:"name"`
	Email    *string      `json:"email"`
	Role     *models.Role `json:"role"`
	Password *string      `json:"password"`
}

// UserService is the admin-only user management surface.
type UserService interface {
	Create(ctx context.Context, in UserInput) (*models.User, error)
	List(ctx context.Context, q repositories.Query) (*ListResult[models.User], error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, in UserInput) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserServiceImpl struct {
	store      repositories.Store
	bcryptCost int
}

func NewUserService(store repositories.Store, bcryptCost int) *UserServiceImpl {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserServiceImpl{store: store, bcryptCost: bcryptCost}
}

func (s *UserServiceImpl) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if in.Password == nil {
		return nil, ValidationFailed("password is required", nil)
	}

	user := &models.User{ID: newID(), Role: models.RoleUser, CreatedAt: time.Now()}
	if err := s.apply(user, in); err != nil {
		return nil, err
	}
	if err := s.checkEmail(ctx, user); err != nil {
		return nil, err
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, storeError(err, "user", user.ID)
	}
	return user, nil
}

func (s *UserServiceImpl) List(ctx context.Context, q repositories.Query) (*ListResult[models.User], error) {
	return list(ctx, s.store.Users(), q)
}

func (s *UserServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", id)
	}
	return user, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, id uuid.UUID, in UserInput) (*models.User, error) {
	existing, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user", id)
	}

	updated := *existing
	if err := s.apply(&updated, in); err != nil {
		return nil, err
	}
	if updated.Email != existing.Email {
		if err := s.checkEmail(ctx, &updated); err != nil {
			return nil, err
		}
	}

	if err := s.store.Users().Update(ctx, &updated); err != nil {
		return nil, storeError(err, "user", id)
	}
	return &updated, nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Users().DeleteByID(ctx, id); err != nil {
		return storeError(err, "user", id)
	}
	return nil
}

// apply copies in onto user, hashing a new password, and validates the
// result.
func (s *UserServiceImpl) apply(user *models.User, in UserInput) error {
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Role != nil {
		role, err := models.ParseRole(string(*in.Role))
		if err != nil {
			return ValidationFailed(fmt.Sprintf("role must be one of %v", models.Roles), err)
		}
		user.Role = role
	}
	if in.Password != nil {
		hash, err := HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return err
		}
		user.Password = hash
	}

	if err := user.Validate(); err != nil {
		return ValidationFailed(err.Error(), err)
	}
	return nil
}

func (s *UserServiceImpl) checkEmail(ctx context.Context, user *models.User) error {
	n, err := s.store.Users().Count(ctx, repositories.Eq("email", user.Email))
	if err != nil {
		return Internal(err)
	}
	if n > 0 {
		return ValidationFailed(fmt.Sprintf("Email '%s' is already registered", user.Email), repositories.ErrDuplicateKey)
	}
	return nil
}
