package sales

import (
	"context"
	"fmt"

	"github.com/fastprodman/playerauction/internal/auction"
)

// Totals returns the archived amount spent per bidder.
func (r *salesRepo) Totals(ctx context.Context) (map[string]auction.Amount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT bidder_name, total_spent
		FROM bidder_totals
	`)
	if err != nil {
		return nil, fmt.Errorf("query bidder totals: %w", err)
	}
	defer rows.Close()

	out := make(map[string]auction.Amount)

	for rows.Next() {
		var name string
		var spent int64

		err = rows.Scan(&name, &spent)
		if err != nil {
			return nil, fmt.Errorf("scan bidder total: %w", err)
		}

		out[name] = auction.Amount(spent)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate bidder totals: %w", err)
	}

	return out, nil
}
