package middleware

import (
	"context"
	"fmt"
	"strings"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	// TokenCookie is the cookie the auth handlers set on login.
	TokenCookie = "token"

	userKey = "user"
)

// Authenticator is the part of services.AuthService Protect needs.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Protect resolves the bearer token or token cookie into the current user.
// Requests without a valid token are rejected with 401.
func Protect(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), tokenFromRequest(c))
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// Authorize restricts a route to the given roles. It must run after Protect.
func Authorize(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Error(services.Unauthenticated("Not authorized to access this route"))
			c.Abort()
			return
		}

		if !allowed[user.Role] {
			c.Error(services.Unauthenticated(fmt.Sprintf("User role %s is not authorized to access this route", user.Role)))
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// RequesterFrom returns the authenticated caller as seen by the
// authorization gate.
func RequesterFrom(c *gin.Context) (services.Requester, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		return services.Requester{}, false
	}
	return services.Requester{ID: user.ID, Role: user.Role}, true
}
