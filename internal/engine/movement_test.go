package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-suite/backend-go/internal/domain"
	"github.com/pos-suite/backend-go/internal/timebucket"
)

func TestBuildMovementSeriesDaily(t *testing.T) {
	// Records arrive out of order across three days; day 6 has no activity
	// and must not appear.
	requests := []domain.TransferRequest{
		{RequestID: "R1", FromBranchID: "B2", ToBranchID: "B1", Quantity: 10, Status: domain.TransferPending, CreatedAt: day(7, 9)},
		{RequestID: "R2", FromBranchID: "B1", ToBranchID: "B3", Quantity: 4, Status: domain.TransferComplete, CreatedAt: day(2, 9)},
		{RequestID: "R3", FromBranchID: "B2", ToBranchID: "B3", Quantity: 99, Status: domain.TransferPending, CreatedAt: day(5, 9)},
	}
	sales := []domain.Sale{
		{SaleID: "S1", BranchID: "B1", CreatedAt: day(5, 14)},
		{SaleID: "S2", BranchID: "B1", CreatedAt: day(2, 14)},
		{SaleID: "S3", BranchID: "B2", CreatedAt: day(2, 14)},
	}
	items := []domain.SaleItem{
		{SaleID: "S1", ProductID: "P1", Quantity: 3},
		{SaleID: "S2", ProductID: "P1", Quantity: 1},
		{SaleID: "S2", ProductID: "P2", Quantity: 2},
		{SaleID: "S3", ProductID: "P1", Quantity: 50},
	}

	series, diags := BuildMovementSeries(requests, sales, items, "B1", timebucket.Daily)

	require.Len(t, series, 3)
	assert.Zero(t, diags.DroppedSaleItems)

	assert.Equal(t, domain.MovementPoint{Period: "2025-06-02", Imported: 0, Sold: 3, Exported: 4}, series[0])
	assert.Equal(t, domain.MovementPoint{Period: "2025-06-05", Imported: 0, Sold: 3, Exported: 0}, series[1])
	assert.Equal(t, domain.MovementPoint{Period: "2025-06-07", Imported: 10, Sold: 0, Exported: 0}, series[2])

	// Ascending period keys regardless of input order.
	for i := 1; i < len(series); i++ {
		assert.Less(t, series[i-1].Period, series[i].Period)
	}
}

func TestBuildMovementSeriesWeekly(t *testing.T) {
	// Day 2 (Mon) and day 5 (Thu) of June 2025 share the ISO week
	// starting 2025-06-02.
	requests := []domain.TransferRequest{
		{RequestID: "R1", FromBranchID: "B2", ToBranchID: "B1", Quantity: 5, CreatedAt: day(2, 9)},
		{RequestID: "R2", FromBranchID: "B2", ToBranchID: "B1", Quantity: 7, CreatedAt: day(5, 9)},
	}

	series, _ := BuildMovementSeries(requests, nil, nil, "B1", timebucket.Weekly)

	require.Len(t, series, 1)
	assert.Equal(t, "2025-06-02", series[0].Period)
	assert.Equal(t, 12, series[0].Imported)
}

func TestBuildMovementSeriesDanglingItems(t *testing.T) {
	sales := []domain.Sale{{SaleID: "S1", BranchID: "B1", CreatedAt: day(1, 9)}}
	items := []domain.SaleItem{
		{SaleID: "S1", ProductID: "P1", Quantity: 2},
		{SaleID: "GONE", ProductID: "P1", Quantity: 100},
	}

	series, diags := BuildMovementSeries(nil, sales, items, "B1", timebucket.Daily)

	require.Len(t, series, 1)
	assert.Equal(t, 2, series[0].Sold)
	assert.Equal(t, 1, diags.DroppedSaleItems)
}

func TestBuildMovementSeriesOtherBranchesExcluded(t *testing.T) {
	requests := []domain.TransferRequest{
		{RequestID: "R1", FromBranchID: "B2", ToBranchID: "B3", Quantity: 5, CreatedAt: day(1, 9)},
	}
	sales := []domain.Sale{{SaleID: "S1", BranchID: "B2", CreatedAt: day(1, 9)}}
	items := []domain.SaleItem{{SaleID: "S1", ProductID: "P1", Quantity: 2}}

	series, _ := BuildMovementSeries(requests, sales, items, "B1", timebucket.Daily)

	assert.Empty(t, series)
}
