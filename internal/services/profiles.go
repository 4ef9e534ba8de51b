package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"taskerhub/backend/internal/cache"
	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/repositories"

	"github.com/gofrs/uuid"
)

// ProfileInput carries the writable profile fields. Nil fields are left
// unchanged on update.
type ProfileInput struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	AccountNumber *string `json:"account_number"`
	BankName      *string `json:"bank_name"`
	Address       *string `json:"address"`
}

func (in ProfileInput) apply(p *models.Profile) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
	if in.Email != nil {
		p.Email = strings.TrimSpace(*in.Email)
	}
	if in.AccountNumber != nil {
		p.AccountNumber = *in.AccountNumber
	}
	if in.BankName != nil {
		p.BankName = *in.BankName
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
}

type ProfileService interface {
	Create(ctx context.Context, requester Requester, in ProfileInput) (*models.Profile, error)
	List(ctx context.Context, q repositories.Query) (*ListResult[models.Profile], error)
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, requester Requester, id uuid.UUID, in ProfileInput) (*models.Profile, error)
	Delete(ctx context.Context, requester Requester, id uuid.UUID) error
}

type ProfileServiceImpl struct {
	store      repositories.Store
	authorizer Authorizer
	pipeline   *ProfilePipeline
	cache      cache.Cache
}

func NewProfileService(store repositories.Store, authorizer Authorizer, pipeline *ProfilePipeline, c cache.Cache) *ProfileServiceImpl {
	if c == nil {
		c = cache.NopCache{}
	}
	return &ProfileServiceImpl{store: store, authorizer: authorizer, pipeline: pipeline, cache: c}
}

func (s *ProfileServiceImpl) Create(ctx context.Context, requester Requester, in ProfileInput) (*models.Profile, error) {
	profile := &models.Profile{
		ID:        newID(),
		Photo:     models.DefaultProfilePhoto,
		UserID:    requester.ID,
		CreatedAt: time.Now(),
	}
	in.apply(profile)

	if err := s.prepare(ctx, profile, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.store.Profiles().Create(ctx, profile); err != nil {
		return nil, storeError(err, "profile", profile.ID)
	}

	log.Printf("Profile %s created by user %s", profile.ID, requester.ID)
	return profile, nil
}

func (s *ProfileServiceImpl) List(ctx context.Context, q repositories.Query) (*ListResult[models.Profile], error) {
	return list(ctx, s.store.Profiles(), q)
}

func (s *ProfileServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	key := profileTag(id)

	var cached models.Profile
	if cacheGet(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	profile, err := s.store.Profiles().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "profile", id)
	}

	cacheSet(ctx, s.cache, key, profile, profileTag(id))
	return profile, nil
}

func (s *ProfileServiceImpl) Update(ctx context.Context, requester Requester, id uuid.UUID, in ProfileInput) (*models.Profile, error) {
	existing, err := s.store.Profiles().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "profile", id)
	}

	if err := s.authorizer.Authorize(requester, models.ActionUpdate, existing); err != nil {
		return nil, err
	}

	updated := *existing
	in.apply(&updated)

	if err := s.prepare(ctx, &updated, id); err != nil {
		return nil, err
	}

	if err := s.store.Profiles().Update(ctx, &updated); err != nil {
		return nil, storeError(err, "profile", id)
	}

	cacheInvalidate(ctx, s.cache, profileTag(id))
	return &updated, nil
}

// Delete removes the profile and every task filed under it.
func (s *ProfileServiceImpl) Delete(ctx context.Context, requester Requester, id uuid.UUID) error {
	profile, err := s.store.Profiles().FindByID(ctx, id)
	if err != nil {
		return storeError(err, "profile", id)
	}

	if err := s.authorizer.Authorize(requester, models.ActionDelete, profile); err != nil {
		return err
	}

	var removed int64
	err = s.store.WithTransaction(ctx, func(tx repositories.Store) error {
		n, err := tx.Tasks().DeleteWhere(ctx, repositories.Eq("profile_id", id))
		if err != nil {
			return fmt.Errorf("failed to delete tasks of profile %s: %w", id, err)
		}
		removed = n
		return tx.Profiles().DeleteByID(ctx, id)
	})
	if err != nil {
		return storeError(err, "profile", id)
	}

	log.Printf("Profile %s deleted by user %s (%d tasks removed)", id, requester.ID, removed)
	cacheInvalidate(ctx, s.cache, profileTag(id))
	return nil
}

// prepare validates the profile, checks name uniqueness and runs the
// lifecycle pipeline. self is the id to ignore in the uniqueness check.
func (s *ProfileServiceImpl) prepare(ctx context.Context, profile *models.Profile, self uuid.UUID) error {
	if err := profile.Validate(); err != nil {
		return ValidationFailed(err.Error(), err)
	}

	clash, err := s.store.Profiles().Find(ctx, repositories.Eq("name", profile.Name).Page(0, 1))
	if err != nil {
		return Internal(err)
	}
	if len(clash) > 0 && clash[0].ID != self {
		return ValidationFailed(fmt.Sprintf("Profile name '%s' already exists", profile.Name), repositories.ErrDuplicateKey)
	}

	return s.pipeline.Run(ctx, profile)
}
