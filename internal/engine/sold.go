package engine

import (
	"github.com/pos-suite/backend-go/internal/domain"
)

// SoldQuantity aggregates quantity sold per product, optionally scoped by
// branch, product, and a created-at window.
//
// Sale items carry no branch or date of their own, so the aggregation is
// two-phase: first filter sales, then sum the items whose parent sale
// survived the filter. Items referencing a sale absent from the snapshot
// are dropped and counted in the diagnostics.
func SoldQuantity(
	items []domain.SaleItem,
	sales []domain.Sale,
	filter domain.SoldFilter,
) (map[string]int, Diagnostics) {
	known := make(map[string]struct{}, len(sales))
	included := make(map[string]struct{}, len(sales))
	for _, sale := range sales {
		known[sale.SaleID] = struct{}{}
		if saleMatches(sale, filter) {
			included[sale.SaleID] = struct{}{}
		}
	}

	var diags Diagnostics
	totals := make(map[string]int)
	for _, item := range items {
		if _, ok := known[item.SaleID]; !ok {
			diags.DroppedSaleItems++
			continue
		}
		if _, ok := included[item.SaleID]; !ok {
			continue
		}
		if filter.ProductID != "" && item.ProductID != filter.ProductID {
			continue
		}
		totals[item.ProductID] += item.Quantity
	}
	return totals, diags
}

func saleMatches(sale domain.Sale, filter domain.SoldFilter) bool {
	if filter.BranchID != "" && sale.BranchID != filter.BranchID {
		return false
	}
	if filter.From != nil && sale.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && sale.CreatedAt.After(*filter.To) {
		return false
	}
	return true
}
