package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fastprodman/playerauction/internal/services/auctions"
)

// NewRouter constructs the HTTP router with all API endpoints registered.
func NewRouter(svc *auctions.Service) http.Handler {
	h := NewHandler(svc)
	feed := NewFeed(svc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/auction", h.InitializeHandler)
	r.Get("/auction", h.GetStateHandler)
	r.Post("/auction/rounds", h.StartRoundHandler)
	r.Post("/auction/bids", h.PlaceBidHandler)
	r.Post("/auction/sales", h.FinalizeSaleHandler)
	r.Get("/auction/sales", h.ArchivedSalesHandler)

	r.Post("/audience/join", h.JoinAudienceHandler)
	r.Post("/audience/leave", h.LeaveAudienceHandler)
	r.Get("/audience/capacity", h.CheckCapacityHandler)
	r.Get("/audience/live", feed.HandleLive)

	return r
}
