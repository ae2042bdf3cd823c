package auction

import (
	"crypto/subtle"
	"strings"
)

// PlayerCount is the fixed roster size an auction runs on.
const PlayerCount = 10

// ValidateSetup checks initialization input. Checks run in a fixed order
// and the first failure wins, so callers always get one specific reason.
func ValidateSetup(bidder1, bidder2 string, players []string, secretKey string) error {
	if strings.TrimSpace(bidder1) == "" {
		return &SetupError{Reason: "bidder 1 name is required"}
	}

	if strings.TrimSpace(bidder2) == "" {
		return &SetupError{Reason: "bidder 2 name is required"}
	}

	if strings.TrimSpace(bidder1) == strings.TrimSpace(bidder2) {
		return &SetupError{Reason: "bidder names must be different"}
	}

	if len(players) != PlayerCount {
		return &SetupError{Reason: "must have exactly 10 players"}
	}

	for _, p := range players {
		if strings.TrimSpace(p) == "" {
			return &SetupError{Reason: "all player names must be filled"}
		}
	}

	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		key := strings.ToLower(strings.TrimSpace(p))
		if _, dup := seen[key]; dup {
			return &SetupError{Reason: "player names must be unique"}
		}

		seen[key] = struct{}{}
	}

	if strings.TrimSpace(secretKey) == "" {
		return &SetupError{Reason: "secret key is required"}
	}

	return nil
}

// ValidateBid checks a proposed amount against the round's current
// highest bid and the bidder's remaining budget. Returns nil when valid.
func ValidateBid(amount, currentHighest, remaining Amount) *BidError {
	if amount <= 0 {
		return &BidError{Reason: BidNonPositive}
	}

	if amount <= currentHighest {
		return &BidError{Reason: BidNotHigher}
	}

	if amount > remaining {
		over := amount - remaining

		return &BidError{Reason: BidExceedsBudget, LimitExceeding: &over}
	}

	return nil
}

// keyMatches compares the provided key against the session key in
// constant time. Sessions are low stakes, but the comparison is cheap.
func keyMatches(provided, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(stored)) == 1
}
