package factstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pos-suite/backend-go/internal/domain"
)

const defaultFetchTimeout = 10 * time.Second

// HTTPClient fetches collections from the fixed JSON endpoints of the
// backend (GET <base>/<collection>.json). Server-side filters are never
// relied on; all scoping happens after normalization.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient builds a client for the given backend base URL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// fetch retrieves one collection as loose records. No retries happen here;
// retry and backoff belong to the polling loop.
func (c *HTTPClient) fetch(ctx context.Context, collection string) ([]record, error) {
	url := fmt.Sprintf("%s/%s.json", c.baseURL, collection)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &FetchError{Collection: collection, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{
			Collection: collection,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &FetchError{Collection: collection, Err: fmt.Errorf("decode body: %w", err)}
	}

	records := make([]record, len(raw))
	for i, m := range raw {
		records[i] = newRecord(m)
	}
	return records, nil
}

func (c *HTTPClient) Products(ctx context.Context) ([]domain.Product, error) {
	records, err := c.fetch(ctx, CollectionProducts)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, domain.Product{
			ProductID:  rec.str("productid", "id"),
			Code:       rec.str("productcode", "code"),
			Name:       rec.str("productname", "name"),
			CategoryID: rec.str("categoryid"),
			Price:      rec.dec("price"),
			ImageURL:   rec.str("imageurl", "image"),
			CreatedAt:  rec.timeVal("createdat"),
		})
	}
	return products, nil
}

func (c *HTTPClient) Branches(ctx context.Context) ([]domain.Branch, error) {
	records, err := c.fetch(ctx, CollectionBranches)
	if err != nil {
		return nil, err
	}
	branches := make([]domain.Branch, 0, len(records))
	for _, rec := range records {
		branch := domain.Branch{
			BranchID: rec.str("branchid", "id"),
			Name:     rec.str("bname", "branchname", "name"),
			Address:  rec.str("baddress", "address"),
		}
		if lat, lng, ok := rec.geo("location"); ok {
			branch.GeoLocation = &domain.GeoPoint{Lat: lat, Lng: lng}
		}
		branches = append(branches, branch)
	}
	return branches, nil
}

func (c *HTTPClient) Inventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	records, err := c.fetch(ctx, CollectionInventory)
	if err != nil {
		return nil, err
	}
	inventory := make([]domain.InventoryRecord, 0, len(records))
	for _, rec := range records {
		qty := rec.intVal("quantity")
		if qty < 0 {
			qty = 0
		}
		inventory = append(inventory, domain.InventoryRecord{
			ProductID: rec.str("productid"),
			BranchID:  rec.str("branchid"),
			Quantity:  qty,
			UpdatedAt: rec.timeVal("updatedat"),
		})
	}
	return inventory, nil
}

func (c *HTTPClient) Sales(ctx context.Context) ([]domain.Sale, error) {
	records, err := c.fetch(ctx, CollectionSales)
	if err != nil {
		return nil, err
	}
	sales := make([]domain.Sale, 0, len(records))
	for _, rec := range records {
		sales = append(sales, domain.Sale{
			SaleID:      rec.str("saleid", "id"),
			BranchID:    rec.str("branchid"),
			EmployeeID:  rec.str("employeeid"),
			TotalAmount: rec.dec("totalamount", "total"),
			CreatedAt:   rec.timeVal("createdat"),
		})
	}
	return sales, nil
}

func (c *HTTPClient) SaleItems(ctx context.Context) ([]domain.SaleItem, error) {
	records, err := c.fetch(ctx, CollectionSaleItems)
	if err != nil {
		return nil, err
	}
	items := make([]domain.SaleItem, 0, len(records))
	for _, rec := range records {
		items = append(items, domain.SaleItem{
			SaleID:    rec.str("saleid"),
			ProductID: rec.str("productid"),
			Quantity:  rec.intVal("quantity"),
			UnitPrice: rec.dec("priceperunit", "unitprice", "price"),
		})
	}
	return items, nil
}

func (c *HTTPClient) TransferRequests(ctx context.Context) ([]domain.TransferRequest, error) {
	records, err := c.fetch(ctx, CollectionRequests)
	if err != nil {
		return nil, err
	}
	requests := make([]domain.TransferRequest, 0, len(records))
	for _, rec := range records {
		requests = append(requests, domain.TransferRequest{
			RequestID:    rec.str("requestid", "id"),
			FromBranchID: rec.str("frombranchid"),
			ToBranchID:   rec.str("tobranchid"),
			ProductID:    rec.str("productid"),
			Quantity:     rec.intVal("quantity"),
			Status:       domain.NormalizeTransferStatus(rec.str("status")),
			CreatedAt:    rec.timeVal("createdat"),
		})
	}
	return requests, nil
}
