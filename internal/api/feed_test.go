package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fastprodman/playerauction/internal/auction"
	"github.com/fastprodman/playerauction/internal/services/auctions"
)

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestFeed_PushesSnapshots(t *testing.T) {
	t.Parallel()

	svc := auctions.New(auction.NewGate(5), nil)
	srv := httptest.NewServer(NewRouter(svc))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/audience/live"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// first frame is the current (empty) state
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first auction.Session
	err = conn.ReadJSON(&first)
	if err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}

	if first.InProgress {
		t.Fatalf("want uninitialized snapshot, got %+v", first)
	}

	// spectator occupies a seat
	if got := svc.CheckCapacity().CurrentCount; got != 1 {
		t.Fatalf("want 1 occupied seat, got %d", got)
	}

	_, err = svc.Initialize(t.Context(), "Alice", "Bob", tenPlayers(), "k1")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var update auction.Session
	err = conn.ReadJSON(&update)
	if err != nil {
		t.Fatalf("read update: %v", err)
	}

	if !update.InProgress || len(update.Bidders) != 2 {
		t.Fatalf("want initialized snapshot pushed, got %+v", update)
	}
}

func TestFeed_RefusesWhenFull(t *testing.T) {
	t.Parallel()

	svc := auctions.New(auction.NewGate(1), nil)
	srv := httptest.NewServer(NewRouter(svc))
	defer srv.Close()

	first, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/audience/live"), nil)
	if err != nil {
		t.Fatalf("dial first: %v", err)
	}
	defer first.Close()

	// drain the initial snapshot so the seat is definitely taken
	first.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snap auction.Session
	err = first.ReadJSON(&snap)
	if err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}

	second, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/audience/live"), nil)
	if err != nil {
		t.Fatalf("dial second: %v", err)
	}
	defer second.Close()

	// the over-capacity connection is closed with a policy violation
	second.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, _, err = second.ReadMessage()
	if err == nil {
		t.Fatal("over-capacity connection should be closed")
	}

	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("want policy violation close, got %v", err)
	}
}

func TestFeed_ReleasesSeatOnDisconnect(t *testing.T) {
	t.Parallel()

	svc := auctions.New(auction.NewGate(1), nil)
	srv := httptest.NewServer(NewRouter(svc))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/audience/live"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snap auction.Session
	err = conn.ReadJSON(&snap)
	if err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}

	conn.Close()

	// the seat is released asynchronously after the disconnect
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if svc.CheckCapacity().CurrentCount == 0 {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("seat not released, count %d", svc.CheckCapacity().CurrentCount)
}
