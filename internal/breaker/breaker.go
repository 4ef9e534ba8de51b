// Package breaker guards calls to flaky dependencies such as the geocoding
// API and Redis.
package breaker

import (
	"errors"
	"log"
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	Name string `json:"name"`
	// MaxFailures consecutive failures trip the breaker.
	MaxFailures int `json:"max_failures"`
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration `json:"cooldown"`
	// HalfOpenSuccesses probes must succeed before the breaker closes.
	HalfOpenSuccesses int `json:"half_open_successes"`
	// IsFailure decides whether an error counts against the dependency.
	// nil counts every non-nil error.
	IsFailure func(error) bool `json:"-"`
}

func DefaultConfig(name string) Config {
	return Config{
		Name:              name,
		MaxFailures:       5,
		Cooldown:          30 * time.Second,
		HalfOpenSuccesses: 2,
	}
}

type Breaker struct {
	mu       sync.Mutex
	cfg      Config
	state    State
	failures int
	probes   int
	openedAt time.Time
	now      func() time.Time
}

func New(cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.HalfOpenSuccesses <= 0 {
		cfg.HalfOpenSuccesses = 1
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// Execute runs fn unless the breaker is open. Errors from fn are returned
// unchanged.
func (b *Breaker) Execute(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}

	err := fn()
	if err != nil && b.countsAsFailure(err) {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return err
}

func (b *Breaker) countsAsFailure(err error) bool {
	if b.cfg.IsFailure == nil {
		return true
	}
	return b.cfg.IsFailure(err)
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return false
		}
		b.setState(StateHalfOpen)
		b.probes = 0
	}
	return true
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	switch b.state {
	case StateClosed:
		if b.failures >= b.cfg.MaxFailures {
			b.trip()
		}
	case StateHalfOpen:
		b.trip()
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.probes++
		if b.probes >= b.cfg.HalfOpenSuccesses {
			b.failures = 0
			b.probes = 0
			b.setState(StateClosed)
		}
	}
}

func (b *Breaker) trip() {
	b.openedAt = b.now()
	b.probes = 0
	b.setState(StateOpen)
}

func (b *Breaker) setState(s State) {
	if b.state == s {
		return
	}
	log.Printf("Circuit breaker %q: %s -> %s", b.cfg.Name, b.state, s)
	b.state = s
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Stats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]interface{}{
		"name":             b.cfg.Name,
		"state":            b.state.String(),
		"failure_count":    b.failures,
		"max_failures":     b.cfg.MaxFailures,
		"cooldown_seconds": b.cfg.Cooldown.Seconds(),
	}
}
