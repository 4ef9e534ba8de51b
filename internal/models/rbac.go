package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

type Role string

const (
	RoleTasker Role = "Tasker"
	RoleUser   Role = "User"
	RoleAdmin  Role = "Admin"
)

var Roles = []Role{RoleTasker, RoleUser, RoleAdmin}

// ParseRole matches role names case-insensitively.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// OwnedResource is anything the authorization gate can be applied to.
type OwnedResource interface {
	ResourceKind() string
	ResourceID() uuid.UUID
	OwnerID() uuid.UUID
}

type AuthorizationDecision struct {
	UserID     uuid.UUID `json:"user_id"`
	Role       Role      `json:"role"`
	Action     Action    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID uuid.UUID `json:"resource_id"`
	Decision   string    `json:"decision"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

func (d AuthorizationDecision) Allowed() bool {
	return d.Decision == "allowed"
}
