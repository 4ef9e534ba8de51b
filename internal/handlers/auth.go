package handlers

import (
	"net/http"

	"taskerhub/backend/internal/middleware"
	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  services.AuthService
	secureCookie bool
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// NewAuthHandler builds the auth routes. secureCookie marks the token
// cookie Secure and should be set in production.
func NewAuthHandler(authService services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegistrationRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	_, token, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusCreated, token)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}

	_, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, token)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, services.Unauthenticated("Not authorized to access this route"))
		return
	}
	respond(c, http.StatusOK, user)
}

// Logout handles GET /auth/logout by expiring the token cookie. Bearer
// tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	respond(c, http.StatusOK, gin.H{})
}

func (h *AuthHandler) sendToken(c *gin.Context, status int, token string) {
	maxAge := int(h.authService.TokenTTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.secureCookie, true)
	c.JSON(status, TokenResponse{Success: true, Token: token})
}
