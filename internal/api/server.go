package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fastprodman/playerauction/internal/services/auctions"
)

// NewServer creates and returns a configured *http.Server for the
// auction API.
func NewServer(port uint16, svc *auctions.Service) *http.Server {
	mux := NewRouter(svc)

	addr := fmt.Sprintf(":%d", port)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
