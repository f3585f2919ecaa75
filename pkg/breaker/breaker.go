package breaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker rejects a call without attempting it.
var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// FailureThreshold is the number of consecutive failures that trips
	// the breaker open.
	FailureThreshold int
	// Cooldown is how long the breaker stays open before allowing a
	// single probe call.
	Cooldown time.Duration
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewDefaultConfig() *Config {
	return &Config{
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	}
}

// Breaker is a three-state circuit breaker: closed (normal), open
// (reject immediately until the cooldown elapses) and half-open (exactly
// one probe allowed; success closes, failure reopens). State is owned by
// the process and shared across requests.
type Breaker struct {
	mu          sync.Mutex
	cfg         Config
	failures    int
	lastFailure time.Time
	open        bool
	probing     bool
}

func New(cfg *Config) *Breaker {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	c := *cfg
	if c.Now == nil {
		c.Now = time.Now
	}
	return &Breaker{cfg: c}
}

// Allow reports whether a call may proceed. In the half-open state only
// the first concurrent caller gets through; the rest are rejected until
// the probe resolves.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}

	if b.cfg.Now().Sub(b.lastFailure) < b.cfg.Cooldown {
		return ErrOpen
	}

	// Cooldown elapsed: half-open. One probe only.
	if b.probing {
		return ErrOpen
	}
	b.probing = true
	return nil
}

// Success records a successful call and closes the breaker.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
	b.probing = false
}

// Failure records a failed call. Past the threshold the breaker opens
// and the cooldown restarts.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = b.cfg.Now()
	b.probing = false
	if b.failures >= b.cfg.FailureThreshold {
		b.open = true
	}
}

// State is a snapshot for monitoring.
type State struct {
	Failures    int
	LastFailure time.Time
	IsOpen      bool
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{Failures: b.failures, LastFailure: b.lastFailure, IsOpen: b.open}
}
