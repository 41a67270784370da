package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pos-suite/backend-go/internal/service"
	"github.com/pos-suite/backend-go/internal/threshold"
)

type ThresholdHandler struct {
	service *service.ReconcileService
}

func NewThresholdHandler(service *service.ReconcileService) *ThresholdHandler {
	return &ThresholdHandler{service: service}
}

func (h *ThresholdHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetThreshold())
}

// Put replaces the severity bounds. Bad bounds are a caller error and are
// rejected synchronously.
func (h *ThresholdHandler) Put(c *gin.Context) {
	var cfg threshold.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid threshold payload"})
		return
	}

	if err := h.service.SetThreshold(cfg); err != nil {
		var rangeErr *threshold.InvalidRangeError
		if errors.As(err, &rangeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": rangeErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.service.GetThreshold())
}
