package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pos-suite/backend-go/internal/domain"
	"github.com/pos-suite/backend-go/internal/service"
	"github.com/pos-suite/backend-go/internal/timebucket"
)

// displayTimeLayout matches the timestamp format the dashboard tables show.
const displayTimeLayout = "2/01/2006, 15:04"

type StockHandler struct {
	service *service.ReconcileService
}

func NewStockHandler(service *service.ReconcileService) *StockHandler {
	return &StockHandler{service: service}
}

// stockRowView is the table-ready presentation of a StockRow.
type stockRowView struct {
	ProductID        string          `json:"product_id"`
	BranchID         string          `json:"branch_id"`
	ProductCode      string          `json:"product_code"`
	ProductName      string          `json:"product_name"`
	BranchName       string          `json:"branch_name"`
	Quantity         int             `json:"quantity"`
	Severity         domain.Severity `json:"severity"`
	UpdatedAt        time.Time       `json:"updated_at"`
	UpdatedAtDisplay string          `json:"updated_at_display"`
}

func (h *StockHandler) GetTable(c *gin.Context) {
	scope := domain.Scope{BranchID: strings.TrimSpace(c.Query("branch_id"))}
	rows, stale := h.service.GetStockTable(sessionFrom(c), scope)

	views := make([]stockRowView, 0, len(rows))
	for _, row := range rows {
		views = append(views, stockRowView{
			ProductID:        row.ProductID,
			BranchID:         row.BranchID,
			ProductCode:      row.ProductCode,
			ProductName:      row.ProductName,
			BranchName:       row.BranchName,
			Quantity:         row.Quantity,
			Severity:         row.Severity,
			UpdatedAt:        row.UpdatedAt,
			UpdatedAtDisplay: row.UpdatedAt.UTC().Format(displayTimeLayout),
		})
	}

	setStaleHeader(c, stale)
	c.JSON(http.StatusOK, gin.H{"rows": views, "stale": stale})
}

func (h *StockHandler) GetLowStock(c *gin.Context) {
	scope := domain.Scope{BranchID: strings.TrimSpace(c.Query("branch_id"))}
	records, stale := h.service.GetLowStock(sessionFrom(c), scope)

	setStaleHeader(c, stale)
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
		"stale":   stale,
	})
}

func (h *StockHandler) GetMovement(c *gin.Context) {
	branchID := strings.TrimSpace(c.Query("branch_id"))
	if branchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "branch_id is required"})
		return
	}

	granularity := timebucket.Daily
	if raw := strings.TrimSpace(c.Query("bucket")); raw != "" {
		parsed, err := timebucket.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		granularity = parsed
	}

	series, err := h.service.GetMovementSeries(c.Request.Context(), sessionFrom(c), branchID, granularity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series, "bucket": granularity})
}

func setStaleHeader(c *gin.Context, stale bool) {
	if stale {
		c.Header("X-Data-Stale", "true")
	}
}
