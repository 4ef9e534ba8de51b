package services

import (
	"log"
	"time"

	"taskerhub/backend/internal/models"

	"github.com/gofrs/uuid"
)

// Requester is the authenticated caller of a service operation.
type Requester struct {
	ID   uuid.UUID
	Role models.Role
}

func (r Requester) IsAdmin() bool {
	return r.Role.IsAdmin()
}

// IsAuthorized reports whether a requester may mutate a resource: owners
// may, and so may admins.
func IsAuthorized(requesterID uuid.UUID, role models.Role, ownerID uuid.UUID) bool {
	return requesterID == ownerID || role.IsAdmin()
}

type Authorizer interface {
	Authorize(requester Requester, action models.Action, resource models.OwnedResource) error
}

type AuthorizerImpl struct {
	now func() time.Time
}

func NewAuthorizer() *AuthorizerImpl {
	return &AuthorizerImpl{now: time.Now}
}

// Authorize applies IsAuthorized and logs the decision. A denial is a
// Forbidden error naming the requester and the resource.
func (a *AuthorizerImpl) Authorize(requester Requester, action models.Action, resource models.OwnedResource) error {
	decision := models.AuthorizationDecision{
		UserID:     requester.ID,
		Role:       requester.Role,
		Action:     action,
		Resource:   resource.ResourceKind(),
		ResourceID: resource.ResourceID(),
		Decision:   "denied",
		Reason:     "requester is neither owner nor admin",
		Timestamp:  a.now(),
	}

	if IsAuthorized(requester.ID, requester.Role, resource.OwnerID()) {
		decision.Decision = "allowed"
		decision.Reason = "owner"
		if requester.ID != resource.OwnerID() {
			decision.Reason = "admin"
		}
	}

	log.Printf("Authorization %s: user=%s role=%s action=%s %s=%s (%s)",
		decision.Decision, decision.UserID, decision.Role, decision.Action,
		decision.Resource, decision.ResourceID, decision.Reason)

	if !decision.Allowed() {
		return Forbidden(requester.ID, action, resource.ResourceKind(), resource.ResourceID())
	}
	return nil
}
