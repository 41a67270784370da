// backend-go/internal/domain/models.go
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical product record after fact-store normalization.
type Product struct {
	ProductID  string          `json:"product_id"`
	Code       string          `json:"product_code"`
	Name       string          `json:"product_name"`
	CategoryID string          `json:"category_id"`
	Price      decimal.Decimal `json:"price"`
	ImageURL   string          `json:"image_url,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// GeoPoint is an optional lat/lng pair attached to a branch.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Branch is read-only reference data for a physical retail location.
type Branch struct {
	BranchID    string    `json:"branch_id"`
	Name        string    `json:"branch_name"`
	Address     string    `json:"address,omitempty"`
	GeoLocation *GeoPoint `json:"geo_location,omitempty"`
}

// InventoryRecord is the current on-hand stock for one (product, branch)
// pair. At most one live record exists per pair; a missing pair means
// quantity zero, not an error.
type InventoryRecord struct {
	ProductID string    `json:"product_id"`
	BranchID  string    `json:"branch_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sale is an append-only sales fact.
type Sale struct {
	SaleID      string          `json:"sale_id"`
	BranchID    string          `json:"branch_id"`
	EmployeeID  string          `json:"employee_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SaleItem is a line of a Sale. It carries no branch or date of its own;
// both are inherited transitively through its parent Sale.
type SaleItem struct {
	SaleID    string          `json:"sale_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price_per_unit"`
}

// TransferStatus is the lifecycle state of an inter-branch transfer request.
type TransferStatus string

const (
	TransferPending  TransferStatus = "pending"
	TransferComplete TransferStatus = "complete"
	TransferRejected TransferStatus = "rejected"
)

// NormalizeTransferStatus folds the backend's mixed-case status strings
// ("pending", "Pending", "COMPLETE", ...) into one canonical value.
func NormalizeTransferStatus(s string) TransferStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "complete", "completed":
		return TransferComplete
	case "rejected", "reject":
		return TransferRejected
	default:
		return TransferPending
	}
}

// TransferRequest is an append-only inter-branch movement fact. The engine
// only observes these; it never applies them to inventory quantities.
type TransferRequest struct {
	RequestID    string         `json:"request_id"`
	FromBranchID string         `json:"from_branch_id"`
	ToBranchID   string         `json:"to_branch_id"`
	ProductID    string         `json:"product_id"`
	Quantity     int            `json:"quantity"`
	Status       TransferStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Severity classifies a stock quantity against the configured thresholds.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityNormal   Severity = "normal"
)

// StockRow is one line of the reconciled stock table: an inventory record
// joined against product and branch reference data.
type StockRow struct {
	ProductID   string    `json:"product_id"`
	BranchID    string    `json:"branch_id"`
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	BranchName  string    `json:"branch_name"`
	Quantity    int       `json:"quantity"`
	Severity    Severity  `json:"severity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MovementPoint is one bucket of the per-branch movement series.
type MovementPoint struct {
	Period   string `json:"period"`
	Imported int    `json:"imported"`
	Sold     int    `json:"sold"`
	Exported int    `json:"exported"`
}

// SoldFilter scopes a quantity-sold aggregation. Zero values mean "no
// constraint".
type SoldFilter struct {
	BranchID  string
	ProductID string
	From      *time.Time
	To        *time.Time
}

// Scope optionally narrows a derived-view read to one branch.
type Scope struct {
	BranchID string
}
