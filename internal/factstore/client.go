// Package factstore fetches the raw POS collections from the document-store
// backend and normalizes them into the canonical domain shapes.
package factstore

import (
	"context"
	"fmt"

	"github.com/pos-suite/backend-go/internal/domain"
)

// Collection endpoint names as exposed by the backend.
const (
	CollectionProducts  = "products"
	CollectionBranches  = "branches"
	CollectionInventory = "inventory"
	CollectionSales     = "sales"
	CollectionSaleItems = "saleitems"
	CollectionRequests  = "requests"
)

// Client provides typed access to the six raw collections. Every call is a
// full re-fetch; the backend offers no pagination or delta queries.
type Client interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Branches(ctx context.Context) ([]domain.Branch, error)
	Inventory(ctx context.Context) ([]domain.InventoryRecord, error)
	Sales(ctx context.Context) ([]domain.Sale, error)
	SaleItems(ctx context.Context) ([]domain.SaleItem, error)
	TransferRequests(ctx context.Context) ([]domain.TransferRequest, error)
}

// FetchError reports a transport-level failure for one collection. It is
// recoverable: callers keep their last good snapshot and wait for the next
// poll.
type FetchError struct {
	Collection string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Collection, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
