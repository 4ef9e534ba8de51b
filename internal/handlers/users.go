package handlers

import (
	"net/http"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the admin-only user management routes.
type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	listAll(c, userFields, func(c *gin.Context, aq *AdvancedQuery) (*services.ListResult[models.User], error) {
		return h.userService.List(c.Request.Context(), aq.Query)
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := parseID(c, "id", "user")
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var in services.UserInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := parseID(c, "id", "user")
	if err != nil {
		fail(c, err)
		return
	}

	var in services.UserInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := parseID(c, "id", "user")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respondDeleted(c)
}
