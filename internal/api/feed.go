package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fastprodman/playerauction/internal/auction"
	"github.com/fastprodman/playerauction/internal/services/auctions"
)

// Feed pushes auction snapshots to audience websocket connections. Each
// connection occupies one audience seat for its lifetime; the seat is
// released on disconnect, silently.
type Feed struct {
	svc      *auctions.Service
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[chan *auction.Session]struct{}
}

// NewFeed builds a feed subscribed to the service's state changes.
func NewFeed(svc *auctions.Service) *Feed {
	f := &Feed{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[chan *auction.Session]struct{}),
	}

	svc.OnChange(f.broadcast)

	return f
}

// broadcast fans a snapshot out to every connected spectator. Slow
// consumers skip updates rather than block the auction.
func (f *Feed) broadcast(s *auction.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for ch := range f.clients {
		select {
		case ch <- s:
		default:
		}
	}
}

func (f *Feed) addClient(ch chan *auction.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.clients[ch] = struct{}{}
}

func (f *Feed) removeClient(ch chan *auction.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.clients, ch)
}

// HandleLive handles GET /audience/live.
func (f *Feed) HandleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("audience upgrade failed", "error", err)
		return
	}

	if !f.svc.JoinAudience() {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "audience capacity reached")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.Close()

		return
	}

	defer func() {
		f.svc.LeaveAudience()
		_ = conn.Close()
	}()

	ch := make(chan *auction.Session, 8)
	f.addClient(ch)
	defer f.removeClient(ch)

	// current state first, so a joiner never starts blind
	state := f.svc.State(r.Context())
	if state == nil {
		state = emptySession()
	}

	err = conn.WriteJSON(state)
	if err != nil {
		return
	}

	// reader only detects disconnects; spectators never send commands
	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			_, _, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case s := <-ch:
			err = conn.WriteJSON(s)
			if err != nil {
				return
			}
		}
	}
}
