package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-suite/backend-go/internal/domain"
	"github.com/pos-suite/backend-go/internal/factstore"
	"github.com/pos-suite/backend-go/internal/poller"
	"github.com/pos-suite/backend-go/internal/threshold"
	"github.com/pos-suite/backend-go/internal/timebucket"
)

// fixtureClient serves in-memory collections and can be flipped to failing.
type fixtureClient struct {
	fail      bool
	inventory []domain.InventoryRecord
	products  []domain.Product
	branches  []domain.Branch
	sales     []domain.Sale
	items     []domain.SaleItem
	requests  []domain.TransferRequest
}

func (c *fixtureClient) err(collection string) error {
	if c.fail {
		return &factstore.FetchError{Collection: collection, Err: errors.New("backend down")}
	}
	return nil
}

func (c *fixtureClient) Products(context.Context) ([]domain.Product, error) {
	return c.products, c.err(factstore.CollectionProducts)
}

func (c *fixtureClient) Branches(context.Context) ([]domain.Branch, error) {
	return c.branches, c.err(factstore.CollectionBranches)
}

func (c *fixtureClient) Inventory(context.Context) ([]domain.InventoryRecord, error) {
	return c.inventory, c.err(factstore.CollectionInventory)
}

func (c *fixtureClient) Sales(context.Context) ([]domain.Sale, error) {
	return c.sales, c.err(factstore.CollectionSales)
}

func (c *fixtureClient) SaleItems(context.Context) ([]domain.SaleItem, error) {
	return c.items, c.err(factstore.CollectionSaleItems)
}

func (c *fixtureClient) TransferRequests(context.Context) ([]domain.TransferRequest, error) {
	return c.requests, c.err(factstore.CollectionRequests)
}

func sampleClient() *fixtureClient {
	d1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC)
	return &fixtureClient{
		products: []domain.Product{
			{ProductID: "P1", Code: "ESP", Name: "Espresso Beans"},
			{ProductID: "P2", Code: "MLK", Name: "Oat Milk"},
		},
		branches: []domain.Branch{
			{BranchID: "B1", Name: "Asok"},
			{BranchID: "B2", Name: "Silom"},
		},
		inventory: []domain.InventoryRecord{
			{ProductID: "P1", BranchID: "B1", Quantity: 5, UpdatedAt: d1},
			{ProductID: "P2", BranchID: "B1", Quantity: 250, UpdatedAt: d1},
			{ProductID: "P1", BranchID: "B2", Quantity: 95, UpdatedAt: d2},
		},
		sales: []domain.Sale{
			{SaleID: "S1", BranchID: "B1", CreatedAt: d1},
			{SaleID: "S2", BranchID: "B2", CreatedAt: d2},
		},
		items: []domain.SaleItem{
			{SaleID: "S1", ProductID: "P1", Quantity: 3},
			{SaleID: "S2", ProductID: "P1", Quantity: 4},
		},
		requests: []domain.TransferRequest{
			{RequestID: "R1", FromBranchID: "B2", ToBranchID: "B1", ProductID: "P1", Quantity: 10, Status: domain.TransferPending, CreatedAt: d1},
		},
	}
}

func newTestService(t *testing.T, client factstore.Client) *ReconcileService {
	t.Helper()
	policy := threshold.NewPolicy(threshold.DefaultConfig())
	return NewReconcileService(client, policy, poller.Config{Name: "test", Interval: time.Hour, RetryBackoff: time.Millisecond}, Options{})
}

func TestRefreshOncePopulatesViews(t *testing.T) {
	svc := newTestService(t, sampleClient())

	result, err := svc.RefreshOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Inventory)

	rows, stale := svc.GetStockTable(domain.SessionContext{Role: domain.RoleSuperAdmin}, domain.Scope{})
	assert.False(t, stale)
	require.Len(t, rows, 3)

	// Branch name ascending, then latest update first within a branch.
	assert.Equal(t, "Asok", rows[0].BranchName)
	assert.Equal(t, "Silom", rows[2].BranchName)
}

func TestStockTableSeverityTracksThresholdChanges(t *testing.T) {
	svc := newTestService(t, sampleClient())
	_, err := svc.RefreshOnce(context.Background())
	require.NoError(t, err)

	admin := domain.SessionContext{Role: domain.RoleSuperAdmin}
	bySeverity := func() map[string]domain.Severity {
		rows, _ := svc.GetStockTable(admin, domain.Scope{BranchID: "B2"})
		out := make(map[string]domain.Severity, len(rows))
		for _, row := range rows {
			out[row.ProductID] = row.Severity
		}
		return out
	}

	// Defaults: 95 sits below the critical floor of 200.
	assert.Equal(t, domain.SeverityCritical, bySeverity()["P1"])

	// Lowering the floor reclassifies on the very next read, no tick needed.
	require.NoError(t, svc.SetThreshold(threshold.Config{CriticalFloor: 50, WarningLow: 90, WarningHigh: 110}))
	assert.Equal(t, domain.SeverityWarning, bySeverity()["P1"])
}

func TestStockTableScopesNonAdminToOwnBranch(t *testing.T) {
	svc := newTestService(t, sampleClient())
	_, err := svc.RefreshOnce(context.Background())
	require.NoError(t, err)

	cashier := domain.SessionContext{EmployeeID: "E7", BranchID: "B2", Role: domain.RoleCashier}

	// A cashier asking for another branch still only sees their own.
	rows, _ := svc.GetStockTable(cashier, domain.Scope{BranchID: "B1"})
	require.Len(t, rows, 1)
	assert.Equal(t, "B2", rows[0].BranchID)

	low, _ := svc.GetLowStock(cashier, domain.Scope{})
	require.Len(t, low, 1)
	assert.Equal(t, "B2", low[0].BranchID)
}

func TestGetSoldQuantityRespectsSessionAndFilter(t *testing.T) {
	svc := newTestService(t, sampleClient())
	_, err := svc.RefreshOnce(context.Background())
	require.NoError(t, err)

	admin := domain.SessionContext{Role: domain.RoleSuperAdmin}
	totals := svc.GetSoldQuantity(admin, domain.SoldFilter{})
	assert.Equal(t, map[string]int{"P1": 7}, totals)

	totals = svc.GetSoldQuantity(admin, domain.SoldFilter{BranchID: "B1"})
	assert.Equal(t, map[string]int{"P1": 3}, totals)

	manager := domain.SessionContext{EmployeeID: "E2", BranchID: "B2", Role: domain.RoleManager}
	totals = svc.GetSoldQuantity(manager, domain.SoldFilter{BranchID: "B1"})
	assert.Equal(t, map[string]int{"P1": 4}, totals, "non-admin filter is pinned to the session branch")
}

func TestGetMovementSeries(t *testing.T) {
	svc := newTestService(t, sampleClient())
	_, err := svc.RefreshOnce(context.Background())
	require.NoError(t, err)

	admin := domain.SessionContext{Role: domain.RoleSuperAdmin}
	series, err := svc.GetMovementSeries(context.Background(), admin, "B1", timebucket.Daily)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, domain.MovementPoint{Period: "2025-03-10", Imported: 10, Sold: 3, Exported: 0}, series[0])

	// The exporting branch sees the same transfer on the other side.
	series, err = svc.GetMovementSeries(context.Background(), admin, "B2", timebucket.Daily)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, domain.MovementPoint{Period: "2025-03-10", Imported: 0, Sold: 0, Exported: 10}, series[0])
	assert.Equal(t, domain.MovementPoint{Period: "2025-03-11", Imported: 0, Sold: 4, Exported: 0}, series[1])
}

func TestFailedTickRetainsPreviousViewsAndMarksStale(t *testing.T) {
	client := sampleClient()
	svc := newTestService(t, client)

	_, err := svc.RefreshOnce(context.Background())
	require.NoError(t, err)

	client.fail = true
	_, err = svc.RefreshOnce(context.Background())
	require.Error(t, err)

	var abort *poller.ReconciliationAbortError
	assert.ErrorAs(t, err, &abort)

	// The previous table survives, flagged stale.
	rows, stale := svc.GetStockTable(domain.SessionContext{Role: domain.RoleSuperAdmin}, domain.Scope{})
	assert.Len(t, rows, 3)
	assert.True(t, stale)
	assert.True(t, svc.Status().Stale)

	// Recovery clears the flag.
	client.fail = false
	_, err = svc.RefreshOnce(context.Background())
	require.NoError(t, err)
	_, stale = svc.GetStockTable(domain.SessionContext{Role: domain.RoleSuperAdmin}, domain.Scope{})
	assert.False(t, stale)
}

func TestThresholdValidationLeavesPolicyUntouched(t *testing.T) {
	svc := newTestService(t, sampleClient())

	err := svc.SetThreshold(threshold.Config{CriticalFloor: 10, WarningLow: 120, WarningHigh: 80})
	var invalid *threshold.InvalidRangeError
	require.ErrorAs(t, err, &invalid)

	assert.Equal(t, threshold.DefaultConfig(), svc.GetThreshold())
}

func TestReadsBeforeFirstTick(t *testing.T) {
	svc := newTestService(t, sampleClient())
	admin := domain.SessionContext{Role: domain.RoleSuperAdmin}

	rows, _ := svc.GetStockTable(admin, domain.Scope{})
	assert.Empty(t, rows)

	low, _ := svc.GetLowStock(admin, domain.Scope{})
	assert.Empty(t, low)

	totals := svc.GetSoldQuantity(admin, domain.SoldFilter{})
	assert.Empty(t, totals)

	series, err := svc.GetMovementSeries(context.Background(), admin, "B1", timebucket.Daily)
	require.NoError(t, err)
	assert.Empty(t, series)
}
