package archive

import (
	"context"
	"time"
)

// TickRecord is one audit row per successful reconciliation tick.
type TickRecord struct {
	ReconciledAt     time.Time `db:"reconciled_at"`
	InventoryRows    int       `db:"inventory_rows"`
	LowStockCount    int       `db:"low_stock_count"`
	DroppedSaleItems int       `db:"dropped_sale_items"`
	UnknownProducts  int       `db:"unknown_products"`
	UnknownBranches  int       `db:"unknown_branches"`
	DurationMS       int64     `db:"duration_ms"`
}

// TickRecorder inserts tick audit rows into the archive database.
type TickRecorder struct {
	db *DB
}

// NewTickRecorder builds a recorder over db.
func NewTickRecorder(db *DB) *TickRecorder {
	return &TickRecorder{db: db}
}

const insertTick = `
INSERT INTO reconcile_ticks (
	reconciled_at, inventory_rows, low_stock_count,
	dropped_sale_items, unknown_products, unknown_branches, duration_ms
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Record persists one tick row.
func (r *TickRecorder) Record(ctx context.Context, rec TickRecord) error {
	return r.db.exec(ctx, insertTick,
		rec.ReconciledAt, rec.InventoryRows, rec.LowStockCount,
		rec.DroppedSaleItems, rec.UnknownProducts, rec.UnknownBranches, rec.DurationMS)
}

// Schema is the DDL for the archive tables, applied by `stockctl archive init`.
const Schema = `
CREATE TABLE IF NOT EXISTS reconcile_ticks (
	id                 BIGSERIAL PRIMARY KEY,
	reconciled_at      TIMESTAMPTZ NOT NULL,
	inventory_rows     INTEGER NOT NULL,
	low_stock_count    INTEGER NOT NULL,
	dropped_sale_items INTEGER NOT NULL DEFAULT 0,
	unknown_products   INTEGER NOT NULL DEFAULT 0,
	unknown_branches   INTEGER NOT NULL DEFAULT 0,
	duration_ms        BIGINT NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_reconcile_ticks_reconciled_at
	ON reconcile_ticks (reconciled_at);`
