package monitoring

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	checkTimeout = 5 * time.Second
)

type HealthCheckFunc func(ctx context.Context) error

type HealthCheck struct {
	Name     string    `json:"name"`
	Status   string    `json:"status"`
	Message  string    `json:"message,omitempty"`
	Critical bool      `json:"critical"`
	LastRun  time.Time `json:"last_run"`
}

type registeredCheck struct {
	fn       HealthCheckFunc
	critical bool
}

// HealthChecker runs dependency checks on demand. A failing critical check
// makes the service not ready; non-critical failures only degrade /health.
type HealthChecker struct {
	mu     sync.RWMutex
	checks map[string]registeredCheck
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make(map[string]registeredCheck)}
}

func (h *HealthChecker) Register(name string, critical bool, fn HealthCheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = registeredCheck{fn: fn, critical: critical}
}

// Run executes every check concurrently, each with its own timeout.
func (h *HealthChecker) Run(ctx context.Context) []HealthCheck {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	checks := make(map[string]registeredCheck, len(h.checks))
	for k, v := range h.checks {
		checks[k] = v
	}
	h.mu.RUnlock()

	sort.Strings(names)
	results := make([]HealthCheck, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string, rc registeredCheck) {
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()

			result := HealthCheck{Name: name, Status: StatusHealthy, Critical: rc.critical, LastRun: time.Now()}
			if err := rc.fn(cctx); err != nil {
				result.Status = StatusUnhealthy
				result.Message = err.Error()
			}
			results[i] = result
		}(i, name, checks[name])
	}
	wg.Wait()

	return results
}

func overall(results []HealthCheck) (healthy, ready bool) {
	healthy, ready = true, true
	for _, r := range results {
		if r.Status != StatusHealthy {
			healthy = false
			if r.Critical {
				ready = false
			}
		}
	}
	return healthy, ready
}

func (h *HealthChecker) HealthHandler(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		results := h.Run(c.Request.Context())
		healthy, ready := overall(results)

		status := StatusHealthy
		if !healthy {
			status = "degraded"
		}
		code := http.StatusOK
		if !ready {
			status = StatusUnhealthy
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now(),
			"checks":    results,
			"uptime":    m.Uptime().Round(time.Second).String(),
		})
	}
}

func (h *HealthChecker) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ready := overall(h.Run(c.Request.Context()))
		if ready {
			c.JSON(http.StatusOK, gin.H{"status": "ready", "timestamp": time.Now()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "timestamp": time.Now()})
	}
}

func LivenessHandler(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": time.Now(),
			"uptime":    m.Uptime().Round(time.Second).String(),
		})
	}
}
