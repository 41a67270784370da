package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pos-suite/backend-go/internal/archive"
	"github.com/pos-suite/backend-go/internal/cache"
	"github.com/pos-suite/backend-go/internal/domain"
	"github.com/pos-suite/backend-go/internal/engine"
	"github.com/pos-suite/backend-go/internal/factstore"
	"github.com/pos-suite/backend-go/internal/poller"
	"github.com/pos-suite/backend-go/internal/threshold"
	"github.com/pos-suite/backend-go/internal/timebucket"
)

// ReconcileService is the facade the UI consumes: it owns the poller, the
// view store, and the threshold policy, and answers every derived-view read
// from the last reconciled snapshot.
type ReconcileService struct {
	policy   *threshold.Policy
	cache    cache.MovementCache
	recorder *archive.TickRecorder
	snaps    *archive.SnapshotArchiver

	store  viewStore
	poller *poller.Poller
}

// Options carries the optional sinks.
type Options struct {
	Cache    cache.MovementCache
	Recorder *archive.TickRecorder
	Archiver *archive.SnapshotArchiver
}

// NewReconcileService wires the service and its poller over client.
func NewReconcileService(client factstore.Client, policy *threshold.Policy, pollCfg poller.Config, opts Options) *ReconcileService {
	svc := &ReconcileService{
		policy:   policy,
		cache:    opts.Cache,
		recorder: opts.Recorder,
		snaps:    opts.Archiver,
	}
	if svc.cache == nil {
		svc.cache = cache.NewNoopMovementCache()
	}

	svc.poller = poller.New(pollCfg, client, svc.applySnapshot)
	svc.poller.OnAbort(func(err error) {
		svc.store.markStale()
	})
	return svc
}

// Run drives the polling loop until ctx is cancelled.
func (s *ReconcileService) Run(ctx context.Context) {
	s.poller.Run(ctx)
}

// RefreshOnce forces a single tick; used by the CLI and tests.
func (s *ReconcileService) RefreshOnce(ctx context.Context) (poller.TickResult, error) {
	return s.poller.RunOnce(ctx)
}

// applySnapshot is the reconcile step of each tick.
func (s *ReconcileService) applySnapshot(ctx context.Context, snap *engine.Snapshot) error {
	start := time.Now()
	table, diags := engine.BuildStockTable(snap.Inventory, snap.Products, snap.Branches, s.policy)
	_, soldDiags := engine.SoldQuantity(snap.SaleItems, snap.Sales, domain.SoldFilter{})
	diags.Add(soldDiags)
	s.store.swap(snap, table, diags)

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("reconcile: movement cache invalidation failed")
	}

	if s.recorder != nil {
		low := engine.LowStock(snap.Inventory, s.policy, domain.Scope{})
		rec := archive.TickRecord{
			ReconciledAt:     snap.FetchedAt,
			InventoryRows:    len(table),
			LowStockCount:    len(low),
			DroppedSaleItems: diags.DroppedSaleItems,
			UnknownProducts:  diags.UnknownProducts,
			UnknownBranches:  diags.UnknownBranches,
			DurationMS:       time.Since(start).Milliseconds(),
		}
		if err := s.recorder.Record(ctx, rec); err != nil {
			log.Warn().Err(err).Msg("reconcile: tick archive insert failed")
		}
	}

	if s.snaps != nil {
		if err := s.snaps.Store(ctx, snap); err != nil {
			log.Warn().Err(err).Msg("reconcile: snapshot upload failed")
		}
	}

	return nil
}

// GetStockTable returns the reconciled stock table, scoped for the session.
// Severity is re-classified on every read so threshold changes are visible
// immediately, without waiting for the next tick. The second return value
// reports whether the underlying snapshot is stale.
func (s *ReconcileService) GetStockTable(sess domain.SessionContext, scope domain.Scope) ([]domain.StockRow, bool) {
	_, table, stale := s.store.view()
	scope = sess.Restrict(scope)

	rows := make([]domain.StockRow, 0, len(table))
	for _, row := range table {
		if scope.BranchID != "" && row.BranchID != scope.BranchID {
			continue
		}
		row.Severity = s.policy.Classify(row.Quantity)
		rows = append(rows, row)
	}
	return rows, stale
}

// GetLowStock returns the critically low inventory records in scope.
func (s *ReconcileService) GetLowStock(sess domain.SessionContext, scope domain.Scope) ([]domain.InventoryRecord, bool) {
	snap, _, stale := s.store.view()
	if snap == nil {
		return []domain.InventoryRecord{}, stale
	}
	return engine.LowStock(snap.Inventory, s.policy, sess.Restrict(scope)), stale
}

// GetMovementSeries returns the imported/sold/exported series for a branch.
func (s *ReconcileService) GetMovementSeries(ctx context.Context, sess domain.SessionContext, branchID string, granularity timebucket.Granularity) ([]domain.MovementPoint, error) {
	if !sess.IsAdmin() {
		branchID = sess.BranchID
	}

	if series, ok, err := s.cache.Get(ctx, branchID, granularity); err == nil && ok {
		return series, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("movement: cache get failed")
	}

	snap, _, _ := s.store.view()
	if snap == nil {
		return []domain.MovementPoint{}, nil
	}
	series, _ := engine.BuildMovementSeries(snap.Requests, snap.Sales, snap.SaleItems, branchID, granularity)

	if err := s.cache.Set(ctx, branchID, granularity, series); err != nil {
		log.Warn().Err(err).Msg("movement: cache set failed")
	}
	return series, nil
}

// GetSoldQuantity returns quantity sold per product under the filter.
func (s *ReconcileService) GetSoldQuantity(sess domain.SessionContext, filter domain.SoldFilter) map[string]int {
	if !sess.IsAdmin() {
		filter.BranchID = sess.BranchID
	}
	snap, _, _ := s.store.view()
	if snap == nil {
		return map[string]int{}
	}
	totals, _ := engine.SoldQuantity(snap.SaleItems, snap.Sales, filter)
	return totals
}

// SetThreshold replaces the severity bounds.
func (s *ReconcileService) SetThreshold(cfg threshold.Config) error {
	return s.policy.Set(cfg)
}

// GetThreshold returns the current severity bounds.
func (s *ReconcileService) GetThreshold() threshold.Config {
	return s.policy.Snapshot()
}

// OnReconciled subscribes to successful ticks.
func (s *ReconcileService) OnReconciled(fn func(poller.TickResult)) uuid.UUID {
	return s.poller.OnReconciled(fn)
}

// Unsubscribe removes a tick subscription.
func (s *ReconcileService) Unsubscribe(id uuid.UUID) {
	s.poller.Unsubscribe(id)
}

// Status reports poller state plus staleness for the ops endpoint.
func (s *ReconcileService) Status() ServiceStatus {
	_, _, stale := s.store.view()
	return ServiceStatus{
		Poller: s.poller.Status(),
		Stale:  stale,
	}
}

// ServiceStatus is the ops-endpoint payload.
type ServiceStatus struct {
	Poller poller.Status `json:"poller"`
	Stale  bool          `json:"stale"`
}
