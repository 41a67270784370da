// Package threshold holds the process-wide stock severity configuration.
package threshold

import (
	"fmt"
	"sync"

	"github.com/pos-suite/backend-go/internal/domain"
)

// Config is the set of numeric bounds that classify a stock quantity.
type Config struct {
	CriticalFloor int `json:"critical_floor"`
	WarningLow    int `json:"warning_low"`
	WarningHigh   int `json:"warning_high"`
}

// DefaultConfig returns the bounds the dashboard ships with.
func DefaultConfig() Config {
	return Config{CriticalFloor: 200, WarningLow: 90, WarningHigh: 110}
}

// InvalidRangeError rejects a threshold update with bad bounds. This is a
// programmer/operator error and is surfaced synchronously.
type InvalidRangeError struct {
	Low    int
	High   int
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid threshold range [%d, %d]: %s", e.Low, e.High, e.Reason)
}

// Policy is the mutable classification policy shared by every screen.
// Reads vastly outnumber writes; updates are last-writer-wins.
type Policy struct {
	mu  sync.RWMutex
	cfg Config
}

// NewPolicy builds a Policy from cfg, falling back to defaults when cfg is
// entirely zero.
func NewPolicy(cfg Config) *Policy {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Policy{cfg: cfg}
}

// Classify maps a quantity onto a severity tier. The critical check runs
// first, so critical wins when the bands overlap.
func (p *Policy) Classify(quantity int) domain.Severity {
	p.mu.RLock()
	cfg := p.cfg
	p.mu.RUnlock()

	if quantity < cfg.CriticalFloor {
		return domain.SeverityCritical
	}
	if quantity >= cfg.WarningLow && quantity <= cfg.WarningHigh {
		return domain.SeverityWarning
	}
	return domain.SeverityNormal
}

// SetCriticalFloor replaces the critical floor.
func (p *Policy) SetCriticalFloor(n int) error {
	if n < 0 {
		return &InvalidRangeError{Low: n, High: n, Reason: "critical floor must not be negative"}
	}
	p.mu.Lock()
	p.cfg.CriticalFloor = n
	p.mu.Unlock()
	return nil
}

// SetWarningBand replaces the warning band bounds.
func (p *Policy) SetWarningBand(low, high int) error {
	if low < 0 || high < 0 {
		return &InvalidRangeError{Low: low, High: high, Reason: "bounds must not be negative"}
	}
	if low > high {
		return &InvalidRangeError{Low: low, High: high, Reason: "low bound exceeds high bound"}
	}
	p.mu.Lock()
	p.cfg.WarningLow = low
	p.cfg.WarningHigh = high
	p.mu.Unlock()
	return nil
}

// Set replaces the whole configuration atomically.
func (p *Policy) Set(cfg Config) error {
	if cfg.CriticalFloor < 0 || cfg.WarningLow < 0 || cfg.WarningHigh < 0 {
		return &InvalidRangeError{Low: cfg.WarningLow, High: cfg.WarningHigh, Reason: "bounds must not be negative"}
	}
	if cfg.WarningLow > cfg.WarningHigh {
		return &InvalidRangeError{Low: cfg.WarningLow, High: cfg.WarningHigh, Reason: "low bound exceeds high bound"}
	}
	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
	return nil
}

// Snapshot returns the current configuration.
func (p *Policy) Snapshot() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}
