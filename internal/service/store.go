package service

import (
	"sync"
	"time"

	"github.com/pos-suite/backend-go/internal/domain"
	"github.com/pos-suite/backend-go/internal/engine"
)

// viewStore holds the last successfully reconciled snapshot and the derived
// stock table. Reads always see a complete, mutually consistent tick; on
// fetch failure the previous views stay in place and the store is only
// marked stale.
type viewStore struct {
	mu           sync.RWMutex
	snap         *engine.Snapshot
	table        []domain.StockRow
	diags        engine.Diagnostics
	reconciledAt time.Time
	stale        bool
}

func (s *viewStore) swap(snap *engine.Snapshot, table []domain.StockRow, diags engine.Diagnostics) {
	s.mu.Lock()
	s.snap = snap
	s.table = table
	s.diags = diags
	s.reconciledAt = snap.FetchedAt
	s.stale = false
	s.mu.Unlock()
}

func (s *viewStore) markStale() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// view returns the held snapshot and table. The slices and snapshot must be
// treated as read-only by callers.
func (s *viewStore) view() (*engine.Snapshot, []domain.StockRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.table, s.stale
}
