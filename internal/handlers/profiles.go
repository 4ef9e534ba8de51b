package handlers

import (
	"net/http"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfiles handles GET /profiles (public)
func (h *ProfileHandler) GetProfiles(c *gin.Context) {
	listAll(c, profileFields, func(c *gin.Context, aq *AdvancedQuery) (*services.ListResult[models.Profile], error) {
		return h.profileService.List(c.Request.Context(), aq.Query)
	})
}

// GetProfile handles GET /profiles/:id (public)
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, err := parseID(c, "id", "profile")
	if err != nil {
		fail(c, err)
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

// CreateProfile handles POST /profiles (Tasker, Admin)
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	r, err := requester(c)
	if err != nil {
		fail(c, err)
		return
	}

	var in services.ProfileInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}

	profile, err := h.profileService.Create(c.Request.Context(), r, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, profile)
}

// UpdateProfile handles PUT /profiles/:id (owner or Admin)
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	r, err := requester(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := parseID(c, "id", "profile")
	if err != nil {
		fail(c, err)
		return
	}

	var in services.ProfileInput
	if err := bindJSON(c, &in); err != nil {
		fail(c, err)
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), r, id, in)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, profile)
}

// DeleteProfile handles DELETE /profiles/:id (owner or Admin).
// Tasks filed under the profile are removed with it.
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	r, err := requester(c)
	if err != nil {
		fail(c, err)
		return
	}
	id, err := parseID(c, "id", "profile")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.profileService.Delete(c.Request.Context(), r, id); err != nil {
		fail(c, err)
		return
	}
	respondDeleted(c)
}
