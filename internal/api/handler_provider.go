package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/fastprodman/playerauction/internal/auction"
	"github.com/fastprodman/playerauction/internal/services/auctions"
)

// HandlerProvider wraps the auction service and exposes HTTP handlers.
type HandlerProvider struct {
	svc *auctions.Service
}

// NewHandler returns a new handler provider.
func NewHandler(svc *auctions.Service) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// secretKeyHeader carries the moderator key on bid submission.
const secretKeyHeader = "X-Auction-Key"

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		return errors.New("invalid JSON")
	}

	return nil
}

// parseAmountCR converts a decimal CR string with up to 2 fractional
// digits ("10", "2.50") into exact minor units.
func parseAmountCR(s string) (auction.Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("amount required")
	}

	neg := false
	if s[0] == '+' {
		s = s[1:]
	} else if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, errors.New("invalid amount")
	}

	intPart := parts[0]
	frac := "00"
	if len(parts) == 2 {
		if len(parts[1]) > 2 {
			return 0, errors.New("amount supports up to 2 decimals")
		}

		frac = parts[1] + strings.Repeat("0", 2-len(parts[1]))
	}

	ip, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, errors.New("invalid amount integer")
	}

	fp, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, errors.New("invalid amount fractional")
	}

	// well inside int64: budgets cap at 10 CR per bidder
	if ip > 1_000_000 {
		return 0, errors.New("amount out of range")
	}

	total := auction.Amount(ip)*auction.Crore + auction.Amount(fp)*(auction.Crore/100)
	if neg {
		total = -total
	}

	return total, nil
}

func formatCR(a auction.Amount) string {
	whole := int64(a) / int64(auction.Crore)
	cents := (int64(a) % int64(auction.Crore)) / int64(auction.Crore/100)
	if cents < 0 {
		cents = -cents
	}

	return strconv.FormatInt(whole, 10) + "." + pad2(cents)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}

	return strconv.FormatInt(n, 10)
}

// emptySession is what GET /auction reports before initialization.
func emptySession() *auction.Session {
	return &auction.Session{
		Players: []auction.Player{},
		Bidders: []auction.Bidder{},
		Winners: []auction.Player{},
	}
}

// writeStateError maps engine rejections to HTTP statuses. Every
// rejection is recoverable; nothing here is fatal to the engine.
func writeStateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auction.ErrUnknownPlayer):
		writeError(w, http.StatusNotFound, "unknown player")
	case errors.Is(err, auction.ErrNotInitialized),
		errors.Is(err, auction.ErrRoundActive),
		errors.Is(err, auction.ErrNoActiveRound),
		errors.Is(err, auction.ErrWrongPlayer),
		errors.Is(err, auction.ErrPlayerAlreadySold),
		errors.Is(err, auction.ErrNoBids):
		writeError(w, http.StatusConflict, stateConflictMessage(err))
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func stateConflictMessage(err error) string {
	switch {
	case errors.Is(err, auction.ErrNotInitialized):
		return "auction not initialized"
	case errors.Is(err, auction.ErrRoundActive):
		return "a round is already active"
	case errors.Is(err, auction.ErrNoActiveRound):
		return "no round is active"
	case errors.Is(err, auction.ErrWrongPlayer):
		return "player is not the one on auction"
	case errors.Is(err, auction.ErrPlayerAlreadySold):
		return "player already sold"
	case errors.Is(err, auction.ErrNoBids):
		return "no bids placed yet"
	default:
		return "state conflict"
	}
}

// --- Handlers ---

type initializeRequest struct {
	Bidder1   string   `json:"bidder1"`
	Bidder2   string   `json:"bidder2"`
	Players   []string `json:"players"`
	SecretKey string   `json:"secretKey"`
}

// InitializeHandler handles POST /auction.
func (h *HandlerProvider) InitializeHandler(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.svc.Initialize(r.Context(), req.Bidder1, req.Bidder2, req.Players, req.SecretKey)
	if err != nil {
		var serr *auction.SetupError
		if errors.As(err, &serr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":  serr.Reason,
				"reason": "invalid-setup",
			})

			return
		}

		writeStateError(w, err)

		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// GetStateHandler handles GET /auction.
func (h *HandlerProvider) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	session := h.svc.State(r.Context())
	if session == nil {
		writeJSON(w, http.StatusOK, emptySession())
		return
	}

	writeJSON(w, http.StatusOK, session)
}

type roundRequest struct {
	PlayerName string `json:"playerName"`
}

// StartRoundHandler handles POST /auction/rounds.
func (h *HandlerProvider) StartRoundHandler(w http.ResponseWriter, r *http.Request) {
	var req roundRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.svc.StartRound(r.Context(), req.PlayerName)
	if err != nil {
		writeStateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

type bidRequest struct {
	PlayerName string `json:"playerName"`
	BidderName string `json:"bidderName"`
	Amount     string `json:"amount"`
}

type bidResponse struct {
	Bid   auction.Bid      `json:"bid"`
	State *auction.Session `json:"state"`
}

// PlaceBidHandler handles POST /auction/bids. The moderator key travels
// in the X-Auction-Key header, never in the body.
func (h *HandlerProvider) PlaceBidHandler(w http.ResponseWriter, r *http.Request) {
	providedKey := r.Header.Get(secretKeyHeader)

	var req bidRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := parseAmountCR(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bid := auction.Bid{
		PlayerName: req.PlayerName,
		BidderName: req.BidderName,
		Amount:     amount,
	}

	placed, session, err := h.svc.PlaceBid(r.Context(), bid, providedKey)
	if err != nil {
		switch {
		case errors.Is(err, auction.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "invalid secret key")
		case errors.Is(err, auction.ErrUnknownBidder):
			writeError(w, http.StatusBadRequest, "unknown bidder")
		default:
			var berr *auction.BidError
			if errors.As(err, &berr) {
				resp := map[string]any{
					"error":  berr.Error(),
					"reason": string(berr.Reason),
				}
				if berr.LimitExceeding != nil {
					resp["limitExceedingAmount"] = formatCR(*berr.LimitExceeding)
				}

				writeJSON(w, http.StatusBadRequest, resp)

				return
			}

			writeStateError(w, err)
		}

		return
	}

	writeJSON(w, http.StatusOK, bidResponse{Bid: placed, State: session})
}

// FinalizeSaleHandler handles POST /auction/sales.
func (h *HandlerProvider) FinalizeSaleHandler(w http.ResponseWriter, r *http.Request) {
	var req roundRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.svc.FinalizeSale(r.Context(), req.PlayerName)
	if err != nil {
		writeStateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

type archivedSale struct {
	PlayerName string `json:"playerName"`
	BidderName string `json:"bidderName"`
	Price      int64  `json:"price"`
	SoldAt     string `json:"soldAt"`
}

// ArchivedSalesHandler handles GET /auction/sales.
func (h *HandlerProvider) ArchivedSalesHandler(w http.ResponseWriter, r *http.Request) {
	list, totals, err := h.svc.ArchivedSales(r.Context())
	if err != nil {
		if errors.Is(err, auctions.ErrArchiveDisabled) {
			writeError(w, http.StatusNotFound, "sales archive disabled")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")

		return
	}

	out := make([]archivedSale, 0, len(list))
	for _, s := range list {
		out = append(out, archivedSale{
			PlayerName: s.PlayerName,
			BidderName: s.BidderName,
			Price:      int64(s.Price),
			SoldAt:     s.SoldAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	totalsOut := make(map[string]int64, len(totals))
	for name, spent := range totals {
		totalsOut[name] = int64(spent)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sales":  out,
		"totals": totalsOut,
	})
}

// JoinAudienceHandler handles POST /audience/join. A full gate is a
// status, not an error: the response is still 200.
func (h *HandlerProvider) JoinAudienceHandler(w http.ResponseWriter, r *http.Request) {
	joined := h.svc.JoinAudience()

	writeJSON(w, http.StatusOK, map[string]bool{"joined": joined})
}

// LeaveAudienceHandler handles POST /audience/leave.
func (h *HandlerProvider) LeaveAudienceHandler(w http.ResponseWriter, r *http.Request) {
	left := h.svc.LeaveAudience()

	writeJSON(w, http.StatusOK, map[string]bool{"left": left})
}

// CheckCapacityHandler handles GET /audience/capacity.
func (h *HandlerProvider) CheckCapacityHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CheckCapacity())
}
