// Package poller drives the fetch-reconcile cycle on a fixed interval.
//
// One tick fans out fetches for all six collections, waits for all of them,
// and only then hands the snapshot to the reconcile step. Partial results
// are never reconciled: a failed fetch aborts the tick after retries and the
// previous derived views stay in place (stale-but-consistent over
// fresh-but-partial).
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pos-suite/backend-go/internal/engine"
	"github.com/pos-suite/backend-go/internal/factstore"
)

// State is the tick lifecycle: Idle -> Fetching -> Reconciling -> Idle.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateReconciling
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateReconciling:
		return "reconciling"
	default:
		return "idle"
	}
}

// ErrTickInFlight is returned when a tick fires while the previous one is
// still fetching or reconciling. The new tick is skipped, never queued.
var ErrTickInFlight = errors.New("poller: previous tick still in flight")

// ReconciliationAbortError marks a tick whose fetch phase failed after all
// retries. The previous derived views are retained.
type ReconciliationAbortError struct {
	Tick     time.Time
	Attempts int
	Err      error
}

func (e *ReconciliationAbortError) Error() string {
	return fmt.Sprintf("reconciliation aborted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ReconciliationAbortError) Unwrap() error {
	return e.Err
}

// TickResult summarizes one successful tick for subscribers.
type TickResult struct {
	ReconciledAt time.Time `json:"reconciled_at"`
	Attempts     int       `json:"attempts"`
	Inventory    int       `json:"inventory_records"`
	Sales        int       `json:"sales"`
}

// ApplyFunc consumes a complete snapshot. Reconciliation is pure and
// synchronous once the inputs are in hand, so apply is never cancelled
// mid-build.
type ApplyFunc func(ctx context.Context, snap *engine.Snapshot) error

// Config sizes one poller.
type Config struct {
	Name         string
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Status is a point-in-time view of the poller for the ops endpoint.
type Status struct {
	Name                string    `json:"name"`
	State               string    `json:"state"`
	LastReconciledAt    time.Time `json:"last_reconciled_at"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
}

// Poller owns one screen's refresh cycle.
type Poller struct {
	cfg     Config
	client  factstore.Client
	apply   ApplyFunc
	onAbort func(error)

	state   atomic.Int32
	ticking atomic.Bool

	mu       sync.RWMutex
	subs     map[uuid.UUID]func(TickResult)
	last     TickResult
	lastErr  error
	failures int
}

// New builds a poller over client that feeds snapshots into apply.
func New(cfg Config, client factstore.Client, apply ApplyFunc) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	return &Poller{
		cfg:    cfg,
		client: client,
		apply:  apply,
		subs:   make(map[uuid.UUID]func(TickResult)),
	}
}

// OnAbort installs a handler invoked when a tick fails after all retries.
func (p *Poller) OnAbort(fn func(error)) {
	p.onAbort = fn
}

// OnReconciled registers a callback fired once per successful tick and
// returns the handle to unsubscribe with.
func (p *Poller) OnReconciled(fn func(TickResult)) uuid.UUID {
	id := uuid.New()
	p.mu.Lock()
	p.subs[id] = fn
	p.mu.Unlock()
	return id
}

// Unsubscribe removes a reconcile callback.
func (p *Poller) Unsubscribe(id uuid.UUID) {
	p.mu.Lock()
	delete(p.subs, id)
	p.mu.Unlock()
}

// Run ticks immediately, then on every interval until ctx is cancelled.
// Teardown is deterministic: once ctx is done no further tick fires.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if _, err := p.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrTickInFlight) {
			log.Debug().Str("poller", p.cfg.Name).Msg("tick skipped, previous still in flight")
			return
		}
		if ctx.Err() == nil {
			log.Warn().Err(err).Str("poller", p.cfg.Name).Msg("tick failed, keeping previous views")
		}
	}
}

// RunOnce performs a single guarded tick: fetch all collections (with retry
// and backoff), then reconcile.
func (p *Poller) RunOnce(ctx context.Context) (TickResult, error) {
	if !p.ticking.CompareAndSwap(false, true) {
		return TickResult{}, ErrTickInFlight
	}
	defer func() {
		p.ticking.Store(false)
		p.state.Store(int32(StateIdle))
	}()

	var (
		snap     *engine.Snapshot
		fetchErr error
	)
	attempts := 0
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		attempts++
		p.state.Store(int32(StateFetching))
		snap, fetchErr = p.fetchSnapshot(ctx)
		if fetchErr == nil {
			break
		}
		if ctx.Err() != nil || attempt == p.cfg.MaxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * p.cfg.RetryBackoff
		log.Debug().Err(fetchErr).Str("poller", p.cfg.Name).
			Dur("backoff", backoff).Msg("fetch failed, retrying")
		select {
		case <-ctx.Done():
			attempt = p.cfg.MaxRetries
		case <-time.After(backoff):
		}
	}
	if fetchErr != nil {
		abort := &ReconciliationAbortError{Tick: time.Now().UTC(), Attempts: attempts, Err: fetchErr}
		p.recordFailure(abort)
		if p.onAbort != nil {
			p.onAbort(abort)
		}
		return TickResult{}, abort
	}

	p.state.Store(int32(StateReconciling))
	if err := p.apply(ctx, snap); err != nil {
		abort := &ReconciliationAbortError{Tick: time.Now().UTC(), Attempts: attempts, Err: err}
		p.recordFailure(abort)
		if p.onAbort != nil {
			p.onAbort(abort)
		}
		return TickResult{}, abort
	}

	result := TickResult{
		ReconciledAt: snap.FetchedAt,
		Attempts:     attempts,
		Inventory:    len(snap.Inventory),
		Sales:        len(snap.Sales),
	}
	p.recordSuccess(result)
	p.notify(result)
	return result, nil
}

// fetchSnapshot fans out one fetch per collection and waits for all of them.
func (p *Poller) fetchSnapshot(ctx context.Context) (*engine.Snapshot, error) {
	snap := &engine.Snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Products, err = p.client.Products(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Branches, err = p.client.Branches(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Inventory, err = p.client.Inventory(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Sales, err = p.client.Sales(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.SaleItems, err = p.client.SaleItems(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Requests, err = p.client.TransferRequests(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.FetchedAt = time.Now().UTC()
	return snap, nil
}

func (p *Poller) recordSuccess(result TickResult) {
	p.mu.Lock()
	p.last = result
	p.lastErr = nil
	p.failures = 0
	p.mu.Unlock()
}

func (p *Poller) recordFailure(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.failures++
	p.mu.Unlock()
}

func (p *Poller) notify(result TickResult) {
	p.mu.RLock()
	callbacks := make([]func(TickResult), 0, len(p.subs))
	for _, fn := range p.subs {
		callbacks = append(callbacks, fn)
	}
	p.mu.RUnlock()

	for _, fn := range callbacks {
		fn(result)
	}
}

// Status reports the poller state for the ops endpoint.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := Status{
		Name:                p.cfg.Name,
		State:               State(p.state.Load()).String(),
		LastReconciledAt:    p.last.ReconciledAt,
		ConsecutiveFailures: p.failures,
	}
	if p.lastErr != nil {
		status.LastError = p.lastErr.Error()
	}
	return status
}
