package models

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type TaskStatus string

const (
	TaskOpen      TaskStatus = "open"
	TaskAssigned  TaskStatus = "assigned"
	TaskCompleted TaskStatus = "completed"
	TaskCancelled TaskStatus = "cancelled"
)

type Task struct {
	ID          uuid.UUID       `json:"id" gorm:"primaryKey;type:uuid" bson:"_id"`
	Title       string          `json:"title" gorm:"size:100;not null" bson:"title" validate:"required,max=100"`
	Description string          `json:"description" gorm:"size:2000;not null" bson:"description" validate:"required,max=2000"`
	Budget      decimal.Decimal `json:"budget" gorm:"type:decimal(12,2);not null" bson:"budget"`
	Status      TaskStatus      `json:"status" gorm:"size:16;not null" bson:"status" validate:"required,oneof=open assigned completed cancelled"`
	DueDate     *time.Time      `json:"due_date,omitempty" bson:"due_date,omitempty"`
	ProfileID   uuid.UUID       `json:"profile" gorm:"type:uuid;not null;index" bson:"profile_id" validate:"required"`
	UserID      uuid.UUID       `json:"user" gorm:"type:uuid;not null;index" bson:"user_id" validate:"required"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}

func (t *Task) ResourceKind() string  { return "task" }
func (t *Task) ResourceID() uuid.UUID { return t.ID }
func (t *Task) OwnerID() uuid.UUID    { return t.UserID }

func (t *Task) Validate() error {
	err := Validate(t)
	if t.Budget.IsNegative() {
		return appendFieldError(err, "budget", "budget can not be negative")
	}
	return err
}

// TaskDetail is a task with its profile expanded.
type TaskDetail struct {
	Task
	Profile ProfileSummary `json:"profile"`
}
