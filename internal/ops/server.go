// Package ops serves the operational endpoints on a second port, away from
// the dashboard API.
package ops

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pos-suite/backend-go/internal/service"
)

// StatusProvider exposes the reconciliation status to the ops endpoints.
type StatusProvider interface {
	Status() service.ServiceStatus
}

// NewServer builds the ops HTTP server.
func NewServer(addr string, provider StatusProvider) *http.Server {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(provider.Status())
	}).Methods("GET")

	return &http.Server{
		Addr:    addr,
		Handler: r,
	}
}
