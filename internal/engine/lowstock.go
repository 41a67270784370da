package engine

import (
	"github.com/pos-suite/backend-go/internal/domain"
)

// LowStock returns the inventory records classified critical, optionally
// scoped to one branch. Input order is preserved.
//
// This is the one shared predicate behind the dashboard count, the header
// notification, and the low-stock modal; the screens must not re-implement
// it inline.
func LowStock(
	inventory []domain.InventoryRecord,
	classifier Classifier,
	scope domain.Scope,
) []domain.InventoryRecord {
	low := make([]domain.InventoryRecord, 0)
	for _, rec := range inventory {
		if scope.BranchID != "" && rec.BranchID != scope.BranchID {
			continue
		}
		if classifier.Classify(rec.Quantity) != domain.SeverityCritical {
			continue
		}
		low = append(low, rec)
	}
	return low
}
