package sales

import (
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/playerauction/internal/auction"
	"github.com/fastprodman/playerauction/internal/infra/pgtestutil"
	"github.com/fastprodman/playerauction/internal/repos/sales"
)

func TestSales_RecordAndList(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := t.Context()

	soldAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := sales.Sale{
		PlayerName: "Player 1",
		BidderName: "Alice",
		Price:      2 * auction.Crore,
		SoldAt:     soldAt,
	}
	second := sales.Sale{
		PlayerName: "Player 2",
		BidderName: "Bob",
		Price:      auction.Crore,
		SoldAt:     soldAt.Add(time.Minute),
	}

	err := repo.Record(ctx, first)
	if err != nil {
		t.Fatalf("record first: %v", err)
	}

	err = repo.Record(ctx, second)
	if err != nil {
		t.Fatalf("record second: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("want 2 sales, got %d", len(got))
	}

	if got[0].PlayerName != "Player 1" || got[1].PlayerName != "Player 2" {
		t.Fatalf("want recording order, got %q then %q", got[0].PlayerName, got[1].PlayerName)
	}

	if got[0].Price != first.Price || got[0].BidderName != "Alice" {
		t.Fatalf("first sale mismatch: %+v", got[0])
	}
}

func TestSales_RecordDuplicatePlayer(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := t.Context()

	sale := sales.Sale{
		PlayerName: "Player 1",
		BidderName: "Alice",
		Price:      auction.Crore,
		SoldAt:     time.Now().UTC(),
	}

	err := repo.Record(ctx, sale)
	if err != nil {
		t.Fatalf("first record: %v", err)
	}

	err = repo.Record(ctx, sale)
	if !errors.Is(err, sales.ErrDuplicateSale) {
		t.Fatalf("want ErrDuplicateSale, got %v", err)
	}

	// the rolled-back duplicate must not have bumped the total
	totals, err := repo.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	if totals["Alice"] != auction.Crore {
		t.Fatalf("Alice total: want %d, got %d", auction.Crore, totals["Alice"])
	}
}

func TestSales_TotalsAccumulate(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	ctx := t.Context()

	now := time.Now().UTC()

	for i, s := range []sales.Sale{
		{PlayerName: "Player 1", BidderName: "Alice", Price: 100, SoldAt: now},
		{PlayerName: "Player 2", BidderName: "Alice", Price: 250, SoldAt: now.Add(time.Second)},
		{PlayerName: "Player 3", BidderName: "Bob", Price: 400, SoldAt: now.Add(2 * time.Second)},
	} {
		err := repo.Record(ctx, s)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	totals, err := repo.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	if totals["Alice"] != 350 {
		t.Fatalf("Alice total: want 350, got %d", totals["Alice"])
	}

	if totals["Bob"] != 400 {
		t.Fatalf("Bob total: want 400, got %d", totals["Bob"])
	}
}
