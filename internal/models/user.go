package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid" bson:"_id"`
	Name      string    `json:"name" gorm:"size:100;not null" bson:"name" validate:"required,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null" bson:"email" validate:"required,email"`
	Role      Role      `json:"role" gorm:"size:16;not null" bson:"role" validate:"required,oneof=Tasker User Admin"`
	Password  string    `json:"-" gorm:"not null" bson:"password" validate:"required"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role.IsAdmin()
}

func (u *User) HasRole(role Role) bool {
	return u.Role == role
}

func (u *User) Validate() error {
	return Validate(u)
}
