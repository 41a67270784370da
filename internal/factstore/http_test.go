package factstore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-suite/backend-go/internal/domain"
)

// The fixtures below mirror the backend's real inconsistencies: snake_case
// and smashed-together keys in the same collection, mixed-case statuses.
func newBackendStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	serve := func(path, body string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		})
	}

	serve("/products.json", `[
		{"product_id": "P1", "product_code": "C-001", "product_name": "Espresso Beans", "price": 120.50, "createdat": "2025-06-01T08:00:00Z"},
		{"productid": "P2", "productcode": "C-002", "productname": "Oat Milk", "price": "45"}
	]`)
	serve("/branches.json", `[
		{"branch_id": "B1", "b_name": "Asok", "location": "13.7367, 100.5612"},
		{"branchid": "B2", "branch_name": "Silom", "location": "not-a-pair"}
	]`)
	serve("/inventory.json", `[
		{"product_id": "P1", "branch_id": "B1", "quantity": 42, "updated_at": "2025-06-03T10:30:00Z"},
		{"productid": "P2", "branchid": "B1", "quantity": -3, "updatedat": "2025-06-02 09:00:00"}
	]`)
	serve("/sales.json", `[
		{"sale_id": "S1", "branch_id": "B1", "employee_id": "E1", "totalamount": 241, "createdat": "2025-06-03T11:00:00Z"}
	]`)
	serve("/saleitems.json", `[
		{"sale_id": "S1", "product_id": "P1", "quantity": 2, "price_per_unit": 120.50}
	]`)
	serve("/requests.json", `[
		{"request_id": "R1", "frombranch_id": "B1", "tobranch_id": "B2", "product_id": "P1", "quantity": 5, "status": "Pending", "createdat": "2025-06-01T12:00:00Z"},
		{"requestid": "R2", "frombranchid": "B2", "tobranchid": "B1", "productid": "P2", "quantity": 3, "status": "COMPLETE", "createdat": "2025-06-02T12:00:00Z"}
	]`)

	return httptest.NewServer(mux)
}

func TestHTTPClientNormalizesProducts(t *testing.T) {
	srv := newBackendStub(t)
	defer srv.Close()
	client := NewHTTPClient(srv.URL, time.Second)

	products, err := client.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "P1", products[0].ProductID)
	assert.Equal(t, "C-001", products[0].Code)
	assert.Equal(t, "120.5", products[0].Price.String())
	assert.Equal(t, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), products[0].CreatedAt)

	// Smashed-together keys resolve to the same canonical shape.
	assert.Equal(t, "P2", products[1].ProductID)
	assert.Equal(t, "Oat Milk", products[1].Name)
	assert.Equal(t, "45", products[1].Price.String())
}

func TestHTTPClientNormalizesBranches(t *testing.T) {
	srv := newBackendStub(t)
	defer srv.Close()
	client := NewHTTPClient(srv.URL, time.Second)

	branches, err := client.Branches(context.Background())
	require.NoError(t, err)
	require.Len(t, branches, 2)

	require.NotNil(t, branches[0].GeoLocation)
	assert.InDelta(t, 13.7367, branches[0].GeoLocation.Lat, 1e-9)
	assert.InDelta(t, 100.5612, branches[0].GeoLocation.Lng, 1e-9)

	assert.Equal(t, "Silom", branches[1].Name)
	assert.Nil(t, branches[1].GeoLocation, "unparseable location yields no geo point")
}

func TestHTTPClientClampsNegativeQuantity(t *testing.T) {
	srv := newBackendStub(t)
	defer srv.Close()
	client := NewHTTPClient(srv.URL, time.Second)

	inventory, err := client.Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, inventory, 2)

	assert.Equal(t, 42, inventory[0].Quantity)
	assert.Equal(t, 0, inventory[1].Quantity)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), inventory[1].UpdatedAt)
}

func TestHTTPClientNormalizesTransferStatus(t *testing.T) {
	srv := newBackendStub(t)
	defer srv.Close()
	client := NewHTTPClient(srv.URL, time.Second)

	requests, err := client.TransferRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 2)

	assert.Equal(t, domain.TransferPending, requests[0].Status)
	assert.Equal(t, "B1", requests[0].FromBranchID)
	assert.Equal(t, domain.TransferComplete, requests[1].Status)
	assert.Equal(t, "B1", requests[1].ToBranchID)
}

func TestHTTPClientFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	client := NewHTTPClient(srv.URL, time.Second)

	_, err := client.Sales(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, CollectionSales, fetchErr.Collection)
}

func TestHTTPClientUnreachable(t *testing.T) {
	client := NewHTTPClient("http://127.0.0.1:1", 200*time.Millisecond)

	_, err := client.Inventory(context.Background())

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, CollectionInventory, fetchErr.Collection)
}
