package auction

import (
	"strings"
	"sync"
	"time"
)

// Engine owns the single mutable auction session. Every command takes the
// lock, validates against current state, and either commits atomically or
// leaves the session untouched. Rejection is always side-effect-free.
type Engine struct {
	mu      sync.RWMutex
	session *Session

	now func() time.Time
}

// NewEngine returns an uninitialized engine.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// Initialize runs setup validation and installs a fresh session with both
// bidders at InitialBudget and all players unsold.
//
// Policy: re-initialization is allowed from idle or completed sessions as
// an explicit reset, but refused with ErrRoundActive while a round is
// live, so a running auction cannot be discarded by accident.
func (e *Engine) Initialize(bidder1, bidder2 string, players []string, secretKey string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil && e.session.RoundActive() {
		return nil, ErrRoundActive
	}

	err := ValidateSetup(bidder1, bidder2, players, secretKey)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Players: make([]Player, len(players)),
		Bidders: []Bidder{
			{Name: strings.TrimSpace(bidder1), RemainingAmount: InitialBudget, IsPlaying: true},
			{Name: strings.TrimSpace(bidder2), RemainingAmount: InitialBudget, IsPlaying: true},
		},
		InProgress: true,
		Winners:    make([]Player, 0, len(players)),
		secretKey:  secretKey,
	}

	for i, name := range players {
		session.Players[i] = Player{Name: strings.TrimSpace(name)}
	}

	e.session = session

	return session.clone(), nil
}

// StartRound opens bidding on the named player.
func (e *Engine) StartRound(playerName string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil {
		return nil, ErrNotInitialized
	}

	if s.RoundActive() {
		return nil, ErrRoundActive
	}

	player := s.player(playerName)
	if player == nil {
		return nil, ErrUnknownPlayer
	}

	if player.Sold() {
		return nil, ErrPlayerAlreadySold
	}

	name := player.Name
	s.CurrentAuctionedPlayer = &name
	s.HighestBid = 0
	s.HighestBidder = nil
	s.RoundStartTime = e.now()

	return s.clone(), nil
}

// PlaceBid records a new highest bid for the active round. Budgets are
// not debited here; only finalization commits money. On a budget
// rejection the returned error carries the exceeding amount.
func (e *Engine) PlaceBid(bid Bid, providedKey string) (Bid, *Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil {
		return Bid{}, nil, ErrNotInitialized
	}

	if !keyMatches(providedKey, s.secretKey) {
		return Bid{}, nil, ErrUnauthorized
	}

	if !s.RoundActive() {
		return Bid{}, nil, ErrNoActiveRound
	}

	if bid.PlayerName != *s.CurrentAuctionedPlayer {
		return Bid{}, nil, ErrWrongPlayer
	}

	bidder := s.bidder(bid.BidderName)
	if bidder == nil {
		return Bid{}, nil, ErrUnknownBidder
	}

	berr := ValidateBid(bid.Amount, s.HighestBid, bidder.RemainingAmount)
	if berr != nil {
		bid.LimitExceedingAmount = berr.LimitExceeding

		return bid, nil, berr
	}

	s.HighestBid = bid.Amount
	leader := bidder.Name
	s.HighestBidder = &leader

	return bid, s.clone(), nil
}

// FinalizeSale commits the round's highest bid as a completed sale: the
// player is marked sold, the winning bidder is debited, the sale is
// appended to the winners log, and the round is cleared. All of it
// happens under the one lock so no reader can observe a half-done sale.
func (e *Engine) FinalizeSale(playerName string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session
	if s == nil {
		return nil, ErrNotInitialized
	}

	if !s.RoundActive() {
		return nil, ErrNoActiveRound
	}

	if playerName != *s.CurrentAuctionedPlayer {
		return nil, ErrWrongPlayer
	}

	if s.HighestBid == 0 || s.HighestBidder == nil {
		return nil, ErrNoBids
	}

	player := s.player(playerName)
	if player == nil {
		return nil, ErrUnknownPlayer
	}

	winner := s.bidder(*s.HighestBidder)
	if winner == nil {
		return nil, ErrUnknownBidder
	}

	by := winner.Name
	price := s.HighestBid
	player.BoughtBy = &by
	player.Price = &price
	winner.RemainingAmount -= price
	s.Winners = append(s.Winners, copyPlayer(*player))

	s.CurrentAuctionedPlayer = nil
	s.HighestBid = 0
	s.HighestBidder = nil

	return s.clone(), nil
}

// Snapshot returns a consistent deep copy of the session, or nil when
// the engine has not been initialized.
func (e *Engine) Snapshot() *Session {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.session.clone()
}
