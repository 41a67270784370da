package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/pos-suite/backend-go/internal/poller"
	"github.com/pos-suite/backend-go/internal/service"
)

type StreamHandler struct {
	service *service.ReconcileService
}

func NewStreamHandler(service *service.ReconcileService) *StreamHandler {
	return &StreamHandler{service: service}
}

// Ticks streams one server-sent event per successful reconciliation tick,
// turning the internal pull/poll cycle into a push hook for the UI. The
// subscription is torn down when the client disconnects.
func (h *StreamHandler) Ticks(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	events := make(chan poller.TickResult, 8)
	id := h.service.OnReconciled(func(result poller.TickResult) {
		select {
		case events <- result:
		default:
			// Slow client; drop rather than block the reconcile path.
		}
	})
	defer h.service.Unsubscribe(id)

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case result := <-events:
			c.SSEvent("tick", result)
			return true
		}
	})
}
