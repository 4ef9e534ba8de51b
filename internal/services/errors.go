package services

import (
	"errors"
	"fmt"
	"net/http"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/repositories"

	"github.com/gofrs/uuid"
)

type ErrorKind string

const (
	KindNotFound         ErrorKind = "NotFound"
	KindForbidden        ErrorKind = "Forbidden"
	KindParentNotFound   ErrorKind = "ParentNotFound"
	KindValidationFailed ErrorKind = "ValidationFailed"
	KindUnauthenticated  ErrorKind = "Unauthenticated"
	KindInternal         ErrorKind = "Internal"
	KindRateLimited      ErrorKind = "RateLimited"
)

// ErrorResponse is the error type every service returns. The centralized
// responder turns it into a JSON body with StatusCode.
type ErrorResponse struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Err        error
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

func (e *ErrorResponse) Unwrap() error {
	return e.Err
}

func NotFound(kind string, id uuid.UUID) *ErrorResponse {
	return &ErrorResponse{
		Kind:       KindNotFound,
		Message:    fmt.Sprintf("No %s with the id of %s", kind, id),
		StatusCode: http.StatusNotFound,
	}
}

func ParentNotFound(kind string, id uuid.UUID) *ErrorResponse {
	return &ErrorResponse{
		Kind:       KindParentNotFound,
		Message:    fmt.Sprintf("No %s with the id of %s", kind, id),
		StatusCode: http.StatusNotFound,
	}
}

// Forbidden is reported with 401, matching the API's historical contract.
func Forbidden(requesterID uuid.UUID, action models.Action, kind string, resourceID uuid.UUID) *ErrorResponse {
	msg := fmt.Sprintf("User %s is not authorized to %s %s %s", requesterID, action, kind, resourceID)
	if action == models.ActionCreate {
		// creation is gated on the parent resource
		msg = fmt.Sprintf("User %s is not authorized to add to %s %s", requesterID, kind, resourceID)
	}
	return &ErrorResponse{
		Kind:       KindForbidden,
		Message:    msg,
		StatusCode: http.StatusUnauthorized,
	}
}

func ValidationFailed(message string, err error) *ErrorResponse {
	return &ErrorResponse{
		Kind:       KindValidationFailed,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

func Unauthenticated(message string) *ErrorResponse {
	return &ErrorResponse{
		Kind:       KindUnauthenticated,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func RateLimited() *ErrorResponse {
	return &ErrorResponse{
		Kind:       KindRateLimited,
		Message:    "Too many requests, please try again later",
		StatusCode: http.StatusTooManyRequests,
	}
}

func Internal(err error) *ErrorResponse {
	return &ErrorResponse{
		Kind:       KindInternal,
		Message:    "Server Error",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// storeError maps repository errors onto the taxonomy. ErrNotFound is
// reported against kind and id.
func storeError(err error, kind string, id uuid.UUID) error {
	var er *ErrorResponse
	switch {
	case err == nil:
		return nil
	case errors.As(err, &er):
		return er
	case errors.Is(err, repositories.ErrNotFound):
		return NotFound(kind, id)
	case errors.Is(err, repositories.ErrDuplicateKey):
		return ValidationFailed("Duplicate field value entered", err)
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return ValidationFailed(verr.Error(), err)
	}
	return Internal(err)
}

func IsKind(err error, kind ErrorKind) bool {
	var er *ErrorResponse
	return errors.As(err, &er) && er.Kind == kind
}
