package sales

import (
	"context"
	"errors"
	"time"

	"github.com/fastprodman/playerauction/internal/auction"
)

var ErrDuplicateSale = errors.New("duplicate sale")

// Sale is one finalized purchase exported to the archive.
type Sale struct {
	PlayerName string
	BidderName string
	Price      auction.Amount
	SoldAt     time.Time
}

// Sales is the archive of finalized purchases. The in-memory session
// stays authoritative; the archive is an export, so implementations may
// fail without affecting the auction itself.
type Sales interface {
	Record(ctx context.Context, sale Sale) error
	List(ctx context.Context) ([]Sale, error)
	Totals(ctx context.Context) (map[string]auction.Amount, error)
}
