package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/repositories"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type PaymentInput struct {
	Amount *decimal.Decimal `json:"amount"`
}

type PaymentService interface {
	Create(ctx context.Context, requester Requester, taskID uuid.UUID, in PaymentInput) (*models.Payment, error)
	ListByTask(ctx context.Context, requester Requester, taskID uuid.UUID) ([]models.Payment, error)
	List(ctx context.Context, q repositories.Query) (*ListResult[models.Payment], error)
	Get(ctx context.Context, requester Requester, id uuid.UUID) (*models.Payment, error)
	UpdateStatus(ctx context.Context, requester Requester, id uuid.UUID, status models.PaymentStatus) (*models.Payment, error)
}

type PaymentServiceImpl struct {
	store      repositories.Store
	authorizer Authorizer
	now        func() time.Time
}

func NewPaymentService(store repositories.Store, authorizer Authorizer) *PaymentServiceImpl {
	return &PaymentServiceImpl{store: store, authorizer: authorizer, now: time.Now}
}

// Create opens a payment in the Init state from the requester to the
// task's owner. The amount defaults to the task budget.
func (s *PaymentServiceImpl) Create(ctx context.Context, requester Requester, taskID uuid.UUID, in PaymentInput) (*models.Payment, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	amount := task.Budget
	if in.Amount != nil {
		amount = *in.Amount
	}

	id := newID()
	payment := &models.Payment{
		ID:          id,
		UserID:      requester.ID,
		TaskID:      task.ID,
		TaskOwnerID: task.UserID,
		ReferenceID: "PAY-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:16]),
		AccessCode:  strings.ReplaceAll(newID().String(), "-", ""),
		Amount:      amount.Round(2),
		Status:      models.PaymentInit,
		CreatedAt:   s.now(),
	}

	if err := payment.Validate(); err != nil {
		return nil, ValidationFailed(err.Error(), err)
	}

	if err := s.store.Payments().Create(ctx, payment); err != nil {
		return nil, storeError(err, "payment", payment.ID)
	}

	log.Printf("Payment %s (%s) opened by user %s for task %s", payment.ID, payment.ReferenceID, requester.ID, task.ID)
	return payment, nil
}

// ListByTask returns the payments of a task to its owner or an admin.
func (s *PaymentServiceImpl) ListByTask(ctx context.Context, requester Requester, taskID uuid.UUID) ([]models.Payment, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizer.Authorize(requester, models.ActionRead, task); err != nil {
		return nil, err
	}

	payments, err := s.store.Payments().Find(ctx, repositories.Eq("task_id", taskID).OrderBy("created_at", true))
	if err != nil {
		return nil, Internal(err)
	}
	return payments, nil
}

func (s *PaymentServiceImpl) List(ctx context.Context, q repositories.Query) (*ListResult[models.Payment], error) {
	return list(ctx, s.store.Payments(), q)
}

// Get is allowed for the payer, the task owner and admins.
func (s *PaymentServiceImpl) Get(ctx context.Context, requester Requester, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.store.Payments().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "payment", id)
	}

	if requester.ID != payment.TaskOwnerID {
		if err := s.authorizer.Authorize(requester, models.ActionRead, payment); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

func (s *PaymentServiceImpl) UpdateStatus(ctx context.Context, requester Requester, id uuid.UUID, status models.PaymentStatus) (*models.Payment, error) {
	payment, err := s.store.Payments().FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "payment", id)
	}

	if err := s.authorizer.Authorize(requester, models.ActionUpdate, payment); err != nil {
		return nil, err
	}

	if !payment.Status.CanTransitionTo(status) {
		return nil, ValidationFailed(fmt.Sprintf("Payment status can not change from %s to %s", payment.Status, status), nil)
	}

	updated := *payment
	updated.Status = status
	if status == models.PaymentPaid {
		paidAt := s.now()
		updated.PaidAt = &paidAt
	}

	if err := s.store.Payments().Update(ctx, &updated); err != nil {
		return nil, storeError(err, "payment", id)
	}

	log.Printf("Payment %s moved %s -> %s by user %s", id, payment.Status, status, requester.ID)
	return &updated, nil
}

func (s *PaymentServiceImpl) findTask(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, taskID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ParentNotFound("task", taskID)
	}
	if err != nil {
		return nil, Internal(err)
	}
	return task, nil
}
