package auction

import "time"

// Player is one auctionable roster entry. BoughtBy and Price are set
// together by sale finalization and never individually.
type Player struct {
	Name     string  `json:"name"`
	BoughtBy *string `json:"boughtBy,omitempty"`
	Price    *Amount `json:"price,omitempty"`
}

// Sold reports whether the player has been bought.
func (p Player) Sold() bool {
	return p.BoughtBy != nil
}

// Bidder is one of the two competing parties. RemainingAmount reflects
// committed purchases only; a leading in-flight bid is not deducted.
type Bidder struct {
	Name            string `json:"name"`
	RemainingAmount Amount `json:"remainingAmount"`
	IsPlaying       bool   `json:"isPlaying"`
}

// Bid is one proposed action against the current round. It is ephemeral,
// never stored. LimitExceedingAmount is a diagnostic filled in only when
// the bid was rejected for exceeding the bidder's remaining budget.
type Bid struct {
	PlayerName           string  `json:"playerName"`
	BidderName           string  `json:"bidderName"`
	Amount               Amount  `json:"amount"`
	LimitExceedingAmount *Amount `json:"limitExceedingAmount,omitempty"`
}

// Session is the full auction aggregate for one run. The secret key is
// unexported so snapshots marshal without it.
type Session struct {
	Players                []Player  `json:"players"`
	Bidders                []Bidder  `json:"bidders"`
	CurrentAuctionedPlayer *string   `json:"currentAuctionedPlayer,omitempty"`
	HighestBid             Amount    `json:"highestBid"`
	HighestBidder          *string   `json:"highestBidder,omitempty"`
	RoundStartTime         time.Time `json:"roundStartTime"`
	InProgress             bool      `json:"inProgress"`
	Winners                []Player  `json:"winners"`

	secretKey string
}

// RoundActive reports whether a player is currently open for bidding.
func (s *Session) RoundActive() bool {
	return s.CurrentAuctionedPlayer != nil
}

// Complete reports whether every player has been sold.
func (s *Session) Complete() bool {
	for _, p := range s.Players {
		if !p.Sold() {
			return false
		}
	}

	return true
}

// player returns a pointer into Players for the given exact name.
func (s *Session) player(name string) *Player {
	for i := range s.Players {
		if s.Players[i].Name == name {
			return &s.Players[i]
		}
	}

	return nil
}

// bidder returns a pointer into Bidders for the given exact name.
func (s *Session) bidder(name string) *Bidder {
	for i := range s.Bidders {
		if s.Bidders[i].Name == name {
			return &s.Bidders[i]
		}
	}

	return nil
}

// clone deep-copies the session so callers never alias engine-owned
// memory. The secret key is not carried into copies.
func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}

	out := &Session{
		Players:        make([]Player, len(s.Players)),
		Bidders:        make([]Bidder, len(s.Bidders)),
		HighestBid:     s.HighestBid,
		RoundStartTime: s.RoundStartTime,
		InProgress:     s.InProgress,
		Winners:        make([]Player, len(s.Winners)),
	}

	for i, p := range s.Players {
		out.Players[i] = copyPlayer(p)
	}

	copy(out.Bidders, s.Bidders)

	for i, w := range s.Winners {
		out.Winners[i] = copyPlayer(w)
	}

	if s.CurrentAuctionedPlayer != nil {
		name := *s.CurrentAuctionedPlayer
		out.CurrentAuctionedPlayer = &name
	}

	if s.HighestBidder != nil {
		name := *s.HighestBidder
		out.HighestBidder = &name
	}

	return out
}

func copyPlayer(p Player) Player {
	out := Player{Name: p.Name}

	if p.BoughtBy != nil {
		by := *p.BoughtBy
		out.BoughtBy = &by
	}

	if p.Price != nil {
		price := *p.Price
		out.Price = &price
	}

	return out
}
