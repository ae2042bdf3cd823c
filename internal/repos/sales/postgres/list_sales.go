package sales

import (
	"context"
	"fmt"

	"github.com/fastprodman/playerauction/internal/auction"
	"github.com/fastprodman/playerauction/internal/repos/sales"
)

// List returns every archived sale in the order it was recorded.
func (r *salesRepo) List(ctx context.Context) ([]sales.Sale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT player_name, bidder_name, price, sold_at
		FROM sales
		ORDER BY sold_at, player_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var out []sales.Sale

	for rows.Next() {
		var s sales.Sale
		var price int64

		err = rows.Scan(&s.PlayerName, &s.BidderName, &price, &s.SoldAt)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}

		s.Price = auction.Amount(price)
		out = append(out, s)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	return out, nil
}
