package engine

import (
	"sort"

	"github.com/pos-suite/backend-go/internal/domain"
)

// UnknownName is the placeholder for unresolved product/branch references.
// An unresolved reference degrades the row, it never fails the build.
const UnknownName = "Unknown"

// BuildStockTable joins every inventory record against product and branch
// reference data and classifies the quantity.
//
// Rows are grouped by branch (name ascending, id as tie-break) and ordered
// inside each group by updated-at descending, so the most recently changed
// stock surfaces first. The inputs are never mutated.
func BuildStockTable(
	inventory []domain.InventoryRecord,
	products []domain.Product,
	branches []domain.Branch,
	classifier Classifier,
) ([]domain.StockRow, Diagnostics) {
	productIdx := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productIdx[p.ProductID] = p
	}
	branchIdx := make(map[string]domain.Branch, len(branches))
	for _, b := range branches {
		branchIdx[b.BranchID] = b
	}

	var diags Diagnostics
	rows := make([]domain.StockRow, 0, len(inventory))
	for _, rec := range inventory {
		row := domain.StockRow{
			ProductID:   rec.ProductID,
			BranchID:    rec.BranchID,
			ProductCode: UnknownName,
			ProductName: UnknownName,
			BranchName:  UnknownName,
			Quantity:    rec.Quantity,
			Severity:    classifier.Classify(rec.Quantity),
			UpdatedAt:   rec.UpdatedAt,
		}
		if p, ok := productIdx[rec.ProductID]; ok {
			row.ProductCode = p.Code
			row.ProductName = p.Name
		} else {
			diags.UnknownProducts++
		}
		if b, ok := branchIdx[rec.BranchID]; ok {
			row.BranchName = b.Name
		} else {
			diags.UnknownBranches++
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].BranchName != rows[j].BranchName {
			return rows[i].BranchName < rows[j].BranchName
		}
		if rows[i].BranchID != rows[j].BranchID {
			return rows[i].BranchID < rows[j].BranchID
		}
		if !rows[i].UpdatedAt.Equal(rows[j].UpdatedAt) {
			return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
		}
		return rows[i].ProductID < rows[j].ProductID
	})

	return rows, diags
}
