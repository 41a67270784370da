package engine

import (
	"github.com/pos-suite/backend-go/internal/domain"
	"github.com/pos-suite/backend-go/internal/timebucket"
)

// BuildMovementSeries aggregates imported, sold, and exported quantities for
// one branch into calendar buckets.
//
// Transfer requests targeting the branch count as imported, requests sourced
// from it as exported; both regardless of status, since the engine observes
// transfers but never applies them to stock. Sales at the branch contribute
// the summed quantities of their items to the sale's bucket.
//
// The series is sparse (buckets with no activity are omitted) and sorted
// ascending by period key even when input records arrive out of order.
func BuildMovementSeries(
	requests []domain.TransferRequest,
	sales []domain.Sale,
	items []domain.SaleItem,
	branchID string,
	granularity timebucket.Granularity,
) ([]domain.MovementPoint, Diagnostics) {
	points := make(map[string]*domain.MovementPoint)
	at := func(key string) *domain.MovementPoint {
		if p, ok := points[key]; ok {
			return p
		}
		p := &domain.MovementPoint{Period: key}
		points[key] = p
		return p
	}

	for _, req := range requests {
		if req.ToBranchID != branchID && req.FromBranchID != branchID {
			continue
		}
		key := timebucket.Key(req.CreatedAt, granularity)
		if req.ToBranchID == branchID {
			at(key).Imported += req.Quantity
		}
		if req.FromBranchID == branchID {
			at(key).Exported += req.Quantity
		}
	}

	saleIDs := make(map[string]struct{}, len(sales))
	for _, sale := range sales {
		saleIDs[sale.SaleID] = struct{}{}
	}

	var diags Diagnostics
	itemsBySale := make(map[string][]domain.SaleItem, len(items))
	for _, item := range items {
		if _, ok := saleIDs[item.SaleID]; !ok {
			diags.DroppedSaleItems++
			continue
		}
		itemsBySale[item.SaleID] = append(itemsBySale[item.SaleID], item)
	}

	for _, sale := range sales {
		if sale.BranchID != branchID {
			continue
		}
		sold := 0
		for _, item := range itemsBySale[sale.SaleID] {
			sold += item.Quantity
		}
		if sold == 0 {
			continue
		}
		at(timebucket.Key(sale.CreatedAt, granularity)).Sold += sold
	}

	series := make([]domain.MovementPoint, 0, len(points))
	for _, key := range timebucket.SortedKeys(points) {
		series = append(series, *points[key])
	}
	return series, diags
}
