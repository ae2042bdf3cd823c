package auctions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/playerauction/internal/auction"
	"github.com/fastprodman/playerauction/internal/repos/sales"
)

type fakeArchive struct {
	recorded []sales.Sale
	failWith error
}

func (f *fakeArchive) Record(_ context.Context, sale sales.Sale) error {
	if f.failWith != nil {
		return f.failWith
	}

	f.recorded = append(f.recorded, sale)

	return nil
}

func (f *fakeArchive) List(context.Context) ([]sales.Sale, error) {
	return f.recorded, nil
}

func (f *fakeArchive) Totals(context.Context) (map[string]auction.Amount, error) {
	totals := make(map[string]auction.Amount)
	for _, s := range f.recorded {
		totals[s.BidderName] += s.Price
	}

	return totals, nil
}

func tenPlayers() []string {
	return []string{
		"Player 1", "Player 2", "Player 3", "Player 4", "Player 5",
		"Player 6", "Player 7", "Player 8", "Player 9", "Player 10",
	}
}

func runSale(t *testing.T, svc *Service, player, bidder string, amount auction.Amount) {
	t.Helper()

	ctx := t.Context()

	_, err := svc.StartRound(ctx, player)
	if err != nil {
		t.Fatalf("start round: %v", err)
	}

	_, _, err = svc.PlaceBid(ctx, auction.Bid{PlayerName: player, BidderName: bidder, Amount: amount}, "k1")
	if err != nil {
		t.Fatalf("place bid: %v", err)
	}

	_, err = svc.FinalizeSale(ctx, player)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
}

func TestService_FinalizeExportsSale(t *testing.T) {
	t.Parallel()

	archive := &fakeArchive{}
	svc := New(auction.NewGate(10), archive)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	_, err := svc.Initialize(t.Context(), "Alice", "Bob", tenPlayers(), "k1")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	runSale(t, svc, "Player 1", "Alice", 100)

	if len(archive.recorded) != 1 {
		t.Fatalf("want 1 archived sale, got %d", len(archive.recorded))
	}

	got := archive.recorded[0]
	if got.PlayerName != "Player 1" || got.BidderName != "Alice" || got.Price != 100 {
		t.Fatalf("archived sale mismatch: %+v", got)
	}

	if !got.SoldAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected SoldAt: %v", got.SoldAt)
	}
}

func TestService_ArchiveFailureDoesNotFailSale(t *testing.T) {
	t.Parallel()

	archive := &fakeArchive{failWith: errors.New("db down")}
	svc := New(auction.NewGate(10), archive)

	_, err := svc.Initialize(t.Context(), "Alice", "Bob", tenPlayers(), "k1")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	runSale(t, svc, "Player 1", "Alice", 100)

	s := svc.State(t.Context())
	if len(s.Winners) != 1 {
		t.Fatal("sale must commit even when the archive fails")
	}
}

func TestService_NilArchive(t *testing.T) {
	t.Parallel()

	svc := New(auction.NewGate(10), nil)

	_, err := svc.Initialize(t.Context(), "Alice", "Bob", tenPlayers(), "k1")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	runSale(t, svc, "Player 1", "Bob", 200)

	_, _, err = svc.ArchivedSales(t.Context())
	if !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("want ErrArchiveDisabled, got %v", err)
	}
}

func TestService_NotifiesOnEveryCommit(t *testing.T) {
	t.Parallel()

	svc := New(auction.NewGate(10), nil)

	var seen []*auction.Session
	svc.OnChange(func(s *auction.Session) { seen = append(seen, s) })

	ctx := t.Context()

	_, err := svc.Initialize(ctx, "Alice", "Bob", tenPlayers(), "k1")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	runSale(t, svc, "Player 1", "Alice", 100)

	// initialize + start + bid + finalize
	if len(seen) != 4 {
		t.Fatalf("want 4 notifications, got %d", len(seen))
	}

	last := seen[len(seen)-1]
	if len(last.Winners) != 1 {
		t.Fatalf("final notification should carry the sale, got %+v", last)
	}

	// rejected commands must not notify
	_, err = svc.FinalizeSale(ctx, "Player 1")
	if err == nil {
		t.Fatal("finalize without a round should fail")
	}

	if len(seen) != 4 {
		t.Fatalf("rejection must not notify, got %d", len(seen))
	}
}

func TestService_ArchivedSales(t *testing.T) {
	t.Parallel()

	archive := &fakeArchive{}
	svc := New(auction.NewGate(10), archive)

	_, err := svc.Initialize(t.Context(), "Alice", "Bob", tenPlayers(), "k1")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	runSale(t, svc, "Player 1", "Alice", 100)
	runSale(t, svc, "Player 2", "Bob", 300)

	list, totals, err := svc.ArchivedSales(t.Context())
	if err != nil {
		t.Fatalf("archived sales: %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("want 2 sales, got %d", len(list))
	}

	if totals["Alice"] != 100 || totals["Bob"] != 300 {
		t.Fatalf("totals mismatch: %+v", totals)
	}
}
