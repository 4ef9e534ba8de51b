package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskerhub/backend/internal/middleware"
	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	users map[string]*models.User
	err   error
	seen  string
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	f.seen = token
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, services.Unauthenticated("Not authorized to access this route")
}

func newUser(role models.Role) *models.User {
	return &models.User{ID: uuid.Must(uuid.NewV4()), Name: "u", Email: "u@example.com", Role: role}
}

func protectedRouter(auth middleware.Authenticator, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.ErrorResponder())

	chain := []gin.HandlerFunc{middleware.Protect(auth)}
	if len(roles) > 0 {
		chain = append(chain, middleware.Authorize(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		requester, ok := middleware.RequesterFrom(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": requester.ID.String(), "role": requester.Role})
	})
	router.GET("/protected", chain...)
	return router
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestProtect_BearerHeader(t *testing.T) {
	user := newUser(models.RoleTasker)
	auth := &fakeAuthenticator{users: map[string]*models.User{"good": user}}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	protectedRouter(auth).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ID.String(), decodeBody(t, w)["id"])
}

func TestProtect_Cookie(t *testing.T) {
	user := newUser(models.RoleUser)
	auth := &fakeAuthenticator{users: map[string]*models.User{"from-cookie": user}}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: "from-cookie"})
	w := httptest.NewRecorder()
	protectedRouter(auth).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "from-cookie", auth.seen)
}

func TestProtect_HeaderWinsOverCookie(t *testing.T) {
	user := newUser(models.RoleUser)
	auth := &fakeAuthenticator{users: map[string]*models.User{"header": user}}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer header")
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: "cookie"})
	w := httptest.NewRecorder()
	protectedRouter(auth).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "header", auth.seen)
}

func TestProtect_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no token", ""},
		{"wrong scheme", "Basic abc"},
		{"unknown token", "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			protectedRouter(&fakeAuthenticator{}).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Not authorized to access this route", body["error"])
		})
	}
}

func TestProtect_StoreFailureIs500(t *testing.T) {
	auth := &fakeAuthenticator{err: services.Internal(errors.New("db down"))}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	protectedRouter(auth).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server Error", decodeBody(t, w)["error"])
}

func TestAuthorize_Roles(t *testing.T) {
	admin := newUser(models.RoleAdmin)
	tasker := newUser(models.RoleTasker)
	auth := &fakeAuthenticator{users: map[string]*models.User{"admin": admin, "tasker": tasker}}
	router := protectedRouter(auth, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer admin")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tasker")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User role Tasker is not authorized to access this route", decodeBody(t, w)["error"])
}

func TestAuthorize_WithoutProtect(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.ErrorResponder())
	router.GET("/admin", middleware.Authorize(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
