package auction

import (
	"errors"
	"fmt"
)

// State conflicts: the command is legal, just not in the current state.
var (
	ErrNotInitialized    = errors.New("auction not initialized")
	ErrRoundActive       = errors.New("a round is already active")
	ErrNoActiveRound     = errors.New("no round is active")
	ErrWrongPlayer       = errors.New("player is not the one on auction")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrPlayerAlreadySold = errors.New("player already sold")
	ErrUnknownBidder     = errors.New("unknown bidder")
	ErrNoBids            = errors.New("no bids placed yet")
)

// ErrUnauthorized is returned when the provided key does not match the
// session's secret key. Deliberately carries no further detail.
var ErrUnauthorized = errors.New("invalid secret key")

// SetupError reports the first failing setup check.
type SetupError struct {
	Reason string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("invalid setup: %s", e.Reason)
}

// BidReason is a machine-readable bid rejection cause.
type BidReason string

const (
	BidNonPositive   BidReason = "non-positive"
	BidNotHigher     BidReason = "not-higher"
	BidExceedsBudget BidReason = "exceeds-budget"
)

// BidError reports why a bid was rejected. LimitExceeding is set only
// for BidExceedsBudget and holds amount − remaining budget.
type BidError struct {
	Reason         BidReason
	LimitExceeding *Amount
}

func (e *BidError) Error() string {
	switch e.Reason {
	case BidNonPositive:
		return "bid amount must be greater than 0"
	case BidNotHigher:
		return "bid must be higher than the current highest bid"
	case BidExceedsBudget:
		return "bid exceeds the bidder's remaining budget"
	default:
		return fmt.Sprintf("invalid bid: %s", string(e.Reason))
	}
}
