package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pos-suite/backend-go/internal/domain"
	"github.com/pos-suite/backend-go/internal/service"
)

type SalesHandler struct {
	service *service.ReconcileService
}

func NewSalesHandler(service *service.ReconcileService) *SalesHandler {
	return &SalesHandler{service: service}
}

// GetSold answers quantity-sold per product under optional branch, product,
// and date-range filters. Dates are calendar days interpreted in UTC; the
// end date is inclusive.
func (h *SalesHandler) GetSold(c *gin.Context) {
	filter := domain.SoldFilter{
		BranchID:  strings.TrimSpace(c.Query("branch_id")),
		ProductID: strings.TrimSpace(c.Query("product_id")),
	}

	if raw := strings.TrimSpace(c.Query("start")); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected YYYY-MM-DD"})
			return
		}
		filter.From = &t
	}
	if raw := strings.TrimSpace(c.Query("end")); raw != "" {
		t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, expected YYYY-MM-DD"})
			return
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}

	totals := h.service.GetSoldQuantity(sessionFrom(c), filter)
	c.JSON(http.StatusOK, gin.H{"sold": totals})
}
