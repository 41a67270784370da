package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-suite/backend-go/internal/domain"
	"github.com/pos-suite/backend-go/internal/threshold"
)

func soldFixtures() ([]domain.Sale, []domain.SaleItem) {
	sales := []domain.Sale{
		{SaleID: "S1", BranchID: "B1", CreatedAt: day(1, 10)},
		{SaleID: "S2", BranchID: "B1", CreatedAt: day(5, 10)},
		{SaleID: "S3", BranchID: "B2", CreatedAt: day(2, 10)},
	}
	items := []domain.SaleItem{
		{SaleID: "S1", ProductID: "P1", Quantity: 2},
		{SaleID: "S1", ProductID: "P2", Quantity: 1},
		{SaleID: "S2", ProductID: "P1", Quantity: 4},
		{SaleID: "S3", ProductID: "P1", Quantity: 8},
	}
	return sales, items
}

func TestSoldQuantityUnfilteredMatchesBruteForce(t *testing.T) {
	sales, items := soldFixtures()

	totals, diags := SoldQuantity(items, sales, domain.SoldFilter{})

	// Brute-force double loop over the same fixtures.
	want := make(map[string]int)
	for _, item := range items {
		for _, sale := range sales {
			if sale.SaleID == item.SaleID {
				want[item.ProductID] += item.Quantity
			}
		}
	}
	assert.Equal(t, want, totals)
	assert.Zero(t, diags.DroppedSaleItems)
}

func TestSoldQuantityBranchFilter(t *testing.T) {
	sales, items := soldFixtures()

	totals, _ := SoldQuantity(items, sales, domain.SoldFilter{BranchID: "B1"})

	assert.Equal(t, map[string]int{"P1": 6, "P2": 1}, totals)
}

func TestSoldQuantityProductAndDateFilter(t *testing.T) {
	sales, items := soldFixtures()

	from := day(3, 0)
	totals, _ := SoldQuantity(items, sales, domain.SoldFilter{
		BranchID:  "B1",
		ProductID: "P1",
		From:      &from,
	})

	// Only S2 falls in the window.
	assert.Equal(t, map[string]int{"P1": 4}, totals)

	to := day(3, 0)
	totals, _ = SoldQuantity(items, sales, domain.SoldFilter{To: &to})
	assert.Equal(t, map[string]int{"P1": 10, "P2": 1}, totals)
}

func TestSoldQuantityDanglingSaleItemDropped(t *testing.T) {
	sales, items := soldFixtures()
	items = append(items, domain.SaleItem{SaleID: "MISSING", ProductID: "P1", Quantity: 99})

	totals, diags := SoldQuantity(items, sales, domain.SoldFilter{})

	assert.Equal(t, 14, totals["P1"], "dangling item must not contribute")
	assert.Equal(t, 1, diags.DroppedSaleItems)
}

func TestRoundTripScenario(t *testing.T) {
	// Branch B1; product P1 at price 10; 5 on hand; thresholds 10/8/12;
	// one sale of 2 units.
	policy := threshold.NewPolicy(threshold.Config{CriticalFloor: 10, WarningLow: 8, WarningHigh: 12})
	products := []domain.Product{{ProductID: "P1", Code: "C-001", Name: "Drip Bag", Price: decimal.NewFromInt(10)}}
	branches := []domain.Branch{{BranchID: "B1", Name: "Asok"}}
	inventory := []domain.InventoryRecord{{ProductID: "P1", BranchID: "B1", Quantity: 5, UpdatedAt: day(1, 8)}}
	sales := []domain.Sale{{SaleID: "S1", BranchID: "B1", TotalAmount: decimal.NewFromInt(20), CreatedAt: day(1, 9)}}
	items := []domain.SaleItem{{SaleID: "S1", ProductID: "P1", Quantity: 2, UnitPrice: decimal.NewFromInt(10)}}

	assert.Equal(t, domain.SeverityCritical, policy.Classify(5))

	rows, _ := BuildStockTable(inventory, products, branches, policy)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.SeverityCritical, rows[0].Severity)

	totals, _ := SoldQuantity(items, sales, domain.SoldFilter{BranchID: "B1"})
	assert.Equal(t, map[string]int{"P1": 2}, totals)

	low := LowStock(inventory, policy, domain.Scope{BranchID: "B1"})
	require.Len(t, low, 1)
	assert.Equal(t, "P1", low[0].ProductID)
}
