package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"taskerhub/backend/internal/cache"
	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/repositories"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type TaskInput struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Budget      *decimal.Decimal   `json:"budget"`
	Status      *models.TaskStatus `json:"status"`
	DueDate     *time.Time         `json:"due_date"`
}

func (in TaskInput) apply(t *models.Task) {
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Budget != nil {
		t.Budget = *in.Budget
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
}

type TaskService interface {
	Create(ctx context.Context, requester Requester, profileID uuid.UUID, in TaskInput) (*models.Task, error)
	List(ctx context.Context, q repositories.Query) (*ListResult[models.Task], error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.TaskDetail, error)
	Update(ctx context.Context, requester Requester, id uuid.UUID, in TaskInput) (*models.Task, error)
	Delete(ctx context.Context, requester Requester, id uuid.UUID) error
}

type TaskServiceImpl struct {
	store      repositories.Store
	authorizer Authorizer
	cache      cache.Cache
}

func NewTaskService(store repositories.Store, authorizer Authorizer, c cache.Cache) *TaskServiceImpl {
	if c == nil {
		c = cache.NopCache{}
	}
	return &TaskServiceImpl{store: store, authorizer: authorizer, cache: c}
}

// Create files a new task under a profile. Only the profile owner or an
// admin may add tasks to it.
func (s *TaskServiceImpl) Create(ctx context.Context, requester Requester, profileID uuid.UUID, in TaskInput) (*models.Task, error) {
	profile, err := s.store.Profiles().FindByID(ctx, profileID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ParentNotFound("profile", profileID)
	}
	if err != nil {
		return nil, Internal(err)
	}

	if err := s.authorizer.Authorize(requester, models.ActionCreate, profile); err != nil {
		return nil, err
	}

	now := time.Now()
	task := &models.Task{
		ID:        newID(),
		Status:    models.TaskOpen,
		ProfileID: profile.ID,
		UserID:    requester.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(task)

	if err := task.Validate(); err != nil {
		return nil, ValidationFailed(err.Error(), err)
	}

	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, storeError(err, "task", task.ID)
	}

	log.Printf("Task %s added to profile %s by user %s", task.ID, profileID, requester.ID)
	return task, nil
}

func (s *TaskServiceImpl) List(ctx context.Context, q repositories.Query) (*ListResult[models.Task], error) {
	return list(ctx, s.store.Tasks(), q)
}

func (s *TaskServiceImpl) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.Task, error) {
	tasks, err := s.store.Tasks().Find(ctx, repositories.Eq("profile_id", profileID).OrderBy("created_at", true))
	if err != nil {
		return nil, Internal(err)
	}
	return tasks, nil
}

// Get returns the task with its profile's id, name and description.
func (s *TaskServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.TaskDetail, error) {
	key := taskTag(id)

	var cached models.TaskDetail
	if cacheGet(ctx, s.cache, key, &cached) {
		return &cached, nil
	}

	task, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "task", id)
	}

	detail := &models.TaskDetail{Task: *task, Profile: models.ProfileSummary{ID: task.ProfileID}}
	profile, err := s.store.Profiles().FindByID(ctx, task.ProfileID)
	switch {
	case err == nil:
		detail.Profile = profile.Summary()
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, Internal(err)
	}

	cacheSet(ctx, s.cache, key, detail, taskTag(id), profileTag(task.ProfileID))
	return detail, nil
}

func (s *TaskServiceImpl) Update(ctx context.Context, requester Requester, id uuid.UUID, in TaskInput) (*models.Task, error) {
	existing, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "task", id)
	}

	if err := s.authorizer.Authorize(requester, models.ActionUpdate, existing); err != nil {
		return nil, err
	}

	updated := *existing
	in.apply(&updated)
	updated.UpdatedAt = time.Now()

	if err := updated.Validate(); err != nil {
		return nil, ValidationFailed(err.Error(), err)
	}

	if err := s.store.Tasks().Update(ctx, &updated); err != nil {
		return nil, storeError(err, "task", id)
	}

	cacheInvalidate(ctx, s.cache, taskTag(id))
	return &updated, nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, requester Requester, id uuid.UUID) error {
	task, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		return storeError(err, "task", id)
	}

	if err := s.authorizer.Authorize(requester, models.ActionDelete, task); err != nil {
		return err
	}

	if err := s.store.Tasks().DeleteByID(ctx, id); err != nil {
		return storeError(err, "task", id)
	}

	cacheInvalidate(ctx, s.cache, taskTag(id))
	return nil
}
