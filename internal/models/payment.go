package models

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentInit      PaymentStatus = "Init"
	PaymentPaid      PaymentStatus = "Paid"
	PaymentCancelled PaymentStatus = "Cancelled"
)

// CanTransitionTo reports whether a payment may move from s to next.
// Only Init is mutable; Paid and Cancelled are terminal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentInit && (next == PaymentPaid || next == PaymentCancelled)
}

type Payment struct {
	ID          uuid.UUID       `json:"id" gorm:"primaryKey;type:uuid" bson:"_id"`
	UserID      uuid.UUID       `json:"user" gorm:"type:uuid;not null;index" bson:"user_id" validate:"required"`
	TaskID      uuid.UUID       `json:"task" gorm:"type:uuid;not null;index" bson:"task_id" validate:"required"`
	TaskOwnerID uuid.UUID       `json:"task_owner" gorm:"type:uuid;not null;index" bson:"task_owner_id" validate:"required"`
	ReferenceID string          `json:"reference_id" gorm:"uniqueIndex;not null" bson:"reference_id" validate:"required"`
	AccessCode  string          `json:"access_code" gorm:"not null" bson:"access_code" validate:"required"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)" bson:"amount"`
	Status      PaymentStatus   `json:"status" gorm:"size:16;not null" bson:"status" validate:"required,oneof=Init Paid Cancelled"`
	PaidAt      *time.Time      `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
}

func (p *Payment) ResourceKind() string  { return "payment" }
func (p *Payment) ResourceID() uuid.UUID { return p.ID }
func (p *Payment) OwnerID() uuid.UUID    { return p.UserID }

func (p *Payment) Validate() error {
	err := Validate(p)
	if !p.Amount.IsPositive() {
		return appendFieldError(err, "amount", "amount must be greater than zero")
	}
	return err
}
