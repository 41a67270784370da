// Package engine turns raw collection snapshots into the derived views the
// dashboard screens share: the stock table, the movement series, and the
// low-stock set.
//
// The collections are fetched independently and are not guaranteed to be
// mutually consistent, so every join is best-effort: records whose required
// foreign key cannot be resolved against the current snapshot are dropped
// and counted, never treated as fatal.
package engine

import (
	"time"

	"github.com/pos-suite/backend-go/internal/domain"
)

// Classifier maps a stock quantity onto a severity tier.
type Classifier interface {
	Classify(quantity int) domain.Severity
}

// Snapshot bundles one tick's worth of collection fetches.
type Snapshot struct {
	Products  []domain.Product         `json:"products"`
	Branches  []domain.Branch          `json:"branches"`
	Inventory []domain.InventoryRecord `json:"inventory"`
	Sales     []domain.Sale            `json:"sales"`
	SaleItems []domain.SaleItem        `json:"sale_items"`
	Requests  []domain.TransferRequest `json:"requests"`
	FetchedAt time.Time                `json:"fetched_at"`
}

// Diagnostics counts records silently excluded from a build because their
// foreign keys did not resolve in the snapshot.
type Diagnostics struct {
	DroppedSaleItems int `json:"dropped_sale_items"`
	UnknownProducts  int `json:"unknown_products"`
	UnknownBranches  int `json:"unknown_branches"`
}

// Add folds another diagnostics value into d.
func (d *Diagnostics) Add(other Diagnostics) {
	d.DroppedSaleItems += other.DroppedSaleItems
	d.UnknownProducts += other.UnknownProducts
	d.UnknownBranches += other.UnknownBranches
}
