package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ok/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	for _, path := range []string{"/ok/1", "/ok/2", "/bad", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	s := m.Snapshot()
	assert.Equal(t, int64(4), s.RequestCount)
	assert.Equal(t, int64(2), s.ErrorCount)
	assert.Equal(t, int64(0), s.ActiveRequests)
	assert.Equal(t, int64(2), s.StatusCodes["200"])
	assert.Equal(t, int64(1), s.StatusCodes["404"])
	assert.Equal(t, int64(2), s.Endpoints["GET /ok/:id"], "endpoints are grouped by route")
	assert.Equal(t, int64(1), s.Endpoints["GET unmatched"])
}

func TestMetricsHandler_Components(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.GET("/metrics", m.MetricsHandler(map[string]StatsFunc{
		"cache": func() interface{} { return map[string]int{"hits": 3} },
	}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Components map[string]map[string]int `json:"components"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Components["cache"]["hits"])
}

func healthRouter(h *HealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	router := gin.New()
	router.GET("/health", h.HealthHandler(m))
	router.GET("/health/ready", h.ReadinessHandler())
	router.GET("/health/live", LivenessHandler(m))
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth_AllHealthy(t *testing.T) {
	h := NewHealthChecker()
	h.Register("database", true, func(ctx context.Context) error { return nil })

	router := healthRouter(h)
	assert.Equal(t, http.StatusOK, get(router, "/health").Code)
	assert.Equal(t, http.StatusOK, get(router, "/health/ready").Code)
	assert.Equal(t, http.StatusOK, get(router, "/health/live").Code)
}

func TestHealth_NonCriticalFailureDegrades(t *testing.T) {
	h := NewHealthChecker()
	h.Register("database", true, func(ctx context.Context) error { return nil })
	h.Register("cache", false, func(ctx context.Context) error { return errors.New("redis down") })

	router := healthRouter(h)
	w := get(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), "redis down")
	assert.Equal(t, http.StatusOK, get(router, "/health/ready").Code)
}

func TestHealth_CriticalFailure(t *testing.T) {
	h := NewHealthChecker()
	h.Register("database", true, func(ctx context.Context) error { return errors.New("connection refused") })

	router := healthRouter(h)
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/health").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/health/ready").Code)
	assert.Equal(t, http.StatusOK, get(router, "/health/live").Code, "liveness ignores dependencies")
}

func TestHealthChecker_RunIsSorted(t *testing.T) {
	h := NewHealthChecker()
	for _, name := range []string{"redis", "database", "geocoder"} {
		h.Register(name, false, func(ctx context.Context) error { return nil })
	}

	results := h.Run(context.Background())
	require.Len(t, results, 3)
	assert.Equal(t, "database", results[0].Name)
	assert.Equal(t, "geocoder", results[1].Name)
	assert.Equal(t, "redis", results[2].Name)
}
