package auctions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fastprodman/playerauction/internal/auction"
	"github.com/fastprodman/playerauction/internal/repos/sales"
)

// ErrArchiveDisabled is returned by archive queries when the service was
// built without a sales archive.
var ErrArchiveDisabled = errors.New("sales archive disabled")

// Service owns the auction engine, the audience gate, and the optional
// sales archive, and fans out state changes to subscribers (the live
// audience feed). The engine stays authoritative: archive failures are
// logged, never surfaced to the moderator.
type Service struct {
	engine  *auction.Engine
	gate    *auction.Gate
	archive sales.Sales

	mu        sync.Mutex
	listeners []func(*auction.Session)

	now func() time.Time
}

// New builds a service. archive may be nil to run without persistence.
func New(gate *auction.Gate, archive sales.Sales) *Service {
	return &Service{
		engine:  auction.NewEngine(),
		gate:    gate,
		archive: archive,
		now:     time.Now,
	}
}

// OnChange registers fn to be called with a fresh snapshot after every
// committed command. Callbacks must not block.
func (s *Service) OnChange(fn func(*auction.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

func (s *Service) notify(session *auction.Session) {
	s.mu.Lock()
	listeners := make([]func(*auction.Session), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(session)
	}
}

// Initialize starts a fresh auction session.
func (s *Service) Initialize(ctx context.Context, bidder1, bidder2 string, players []string, secretKey string) (*auction.Session, error) {
	session, err := s.engine.Initialize(bidder1, bidder2, players, secretKey)
	if err != nil {
		return nil, fmt.Errorf("initialize auction: %w", err)
	}

	slog.Info("auction initialized", "bidder1", session.Bidders[0].Name, "bidder2", session.Bidders[1].Name)

	s.notify(session)

	return session, nil
}

// StartRound opens bidding on the named player.
func (s *Service) StartRound(ctx context.Context, playerName string) (*auction.Session, error) {
	session, err := s.engine.StartRound(playerName)
	if err != nil {
		return nil, fmt.Errorf("start round: %w", err)
	}

	slog.Info("round started", "player", playerName)

	s.notify(session)

	return session, nil
}

// PlaceBid submits a bid for the active round on behalf of a bidder.
func (s *Service) PlaceBid(ctx context.Context, bid auction.Bid, providedKey string) (auction.Bid, *auction.Session, error) {
	placed, session, err := s.engine.PlaceBid(bid, providedKey)
	if err != nil {
		return placed, nil, fmt.Errorf("place bid: %w", err)
	}

	slog.Info("bid placed", "player", placed.PlayerName, "bidder", placed.BidderName, "amount", int64(placed.Amount))

	s.notify(session)

	return placed, session, nil
}

// FinalizeSale commits the current round's highest bid as a sale and
// exports it to the archive.
func (s *Service) FinalizeSale(ctx context.Context, playerName string) (*auction.Session, error) {
	session, err := s.engine.FinalizeSale(playerName)
	if err != nil {
		return nil, fmt.Errorf("finalize sale: %w", err)
	}

	sold := session.Winners[len(session.Winners)-1]

	slog.Info("sale finalized", "player", sold.Name, "bidder", *sold.BoughtBy, "price", int64(*sold.Price))

	if s.archive != nil {
		aerr := s.archive.Record(ctx, sales.Sale{
			PlayerName: sold.Name,
			BidderName: *sold.BoughtBy,
			Price:      *sold.Price,
			SoldAt:     s.now().UTC(),
		})
		if aerr != nil {
			slog.Error("archive sale failed", "player", sold.Name, "error", aerr)
		}
	}

	s.notify(session)

	return session, nil
}

// State returns a consistent snapshot, or nil before initialization.
func (s *Service) State(ctx context.Context) *auction.Session {
	return s.engine.Snapshot()
}

// JoinAudience takes one audience seat.
func (s *Service) JoinAudience() bool {
	return s.gate.Join()
}

// LeaveAudience releases one audience seat, best-effort.
func (s *Service) LeaveAudience() bool {
	return s.gate.Leave()
}

// CheckCapacity reports the audience admission state.
func (s *Service) CheckCapacity() auction.Limit {
	return s.gate.Capacity()
}

// ArchivedSales returns the archived sale log with per-bidder totals.
func (s *Service) ArchivedSales(ctx context.Context) ([]sales.Sale, map[string]auction.Amount, error) {
	if s.archive == nil {
		return nil, nil, ErrArchiveDisabled
	}

	list, err := s.archive.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list archived sales: %w", err)
	}

	totals, err := s.archive.Totals(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("archived totals: %w", err)
	}

	return list, totals, nil
}
