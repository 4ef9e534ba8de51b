package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"taskerhub/backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func recoveringRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RecoveryWithLog(), middleware.ErrorResponder())
	router.GET("/profiles", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []string{}})
	})
	router.GET("/profiles/:id", func(c *gin.Context) {
		var p *struct{ Name string }
		c.String(http.StatusOK, p.Name)
	})
	router.DELETE("/profiles/:id", func(c *gin.Context) {
		panic("cascade aborted")
	})
	return router
}

func TestRecoveryWithLog(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"no panic", http.MethodGet, "/profiles", http.StatusOK, `{"success":true,"data":[]}`},
		{"nil dereference", http.MethodGet, "/profiles/1", http.StatusInternalServerError, `{"success":false,"error":"Server Error"}`},
		{"explicit panic", http.MethodDelete, "/profiles/1", http.StatusInternalServerError, `{"success":false,"error":"Server Error"}`},
	}

	router := recoveringRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRecoveryWithLog_ServesAfterPanic(t *testing.T) {
	router := recoveringRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/profiles/1", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profiles", nil))
	assert.Equal(t, http.StatusOK, w.Code, "a recovered panic does not poison the engine")
}
