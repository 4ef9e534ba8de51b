package handlers

import (
	"fmt"
	"net/http"

	"taskerhub/backend/internal/middleware"
	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

// Envelope is the body of every successful response.
type Envelope struct {
	Success    bool        `json:"success"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Data       interface{} `json:"data"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func respondList(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

func respondPage(c *gin.Context, data interface{}, count int, pagination Pagination) {
	c.JSON(http.StatusOK, Envelope{Success: true, Count: &count, Pagination: &pagination, Data: data})
}

// respondDeleted answers a successful delete with an empty data object.
func respondDeleted(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{})
}

// parseID reads a path parameter as a resource id. Malformed ids can never
// match a stored resource, so they are reported as not found.
func parseID(c *gin.Context, param, kind string) (uuid.UUID, error) {
	raw := c.Param(param)
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, &services.ErrorResponse{
			Kind:       services.KindNotFound,
			Message:    fmt.Sprintf("No %s with the id of %s", kind, raw),
			StatusCode: http.StatusNotFound,
			Err:        err,
		}
	}
	return id, nil
}

func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return services.ValidationFailed(fmt.Sprintf("Invalid request body: %v", err), err)
	}
	return nil
}

// requester is only called behind middleware.Protect.
func requester(c *gin.Context) (services.Requester, error) {
	r, ok := middleware.RequesterFrom(c)
	if !ok {
		return services.Requester{}, services.Unauthenticated("Not authorized to access this route")
	}
	return r, nil
}

// fail hands err to middleware.ErrorResponder.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// listAll runs an AdvancedQuery list and writes the paginated envelope.
func listAll[T any](c *gin.Context, fields Fields, list func(*gin.Context, *AdvancedQuery) (*services.ListResult[T], error)) {
	aq, err := ParseAdvancedQuery(c, fields)
	if err != nil {
		fail(c, err)
		return
	}

	res, err := list(c, aq)
	if err != nil {
		fail(c, err)
		return
	}

	data, err := project(res.Items, aq.Select)
	if err != nil {
		fail(c, services.Internal(err))
		return
	}
	respondPage(c, data, len(res.Items), aq.Pagination(res.Total))
}
