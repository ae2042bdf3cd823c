package sales

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastprodman/playerauction/internal/infra/pgutils"
	"github.com/fastprodman/playerauction/internal/repos/sales"
)

// Record writes the sale row and bumps the bidder's running total in one
// transaction, so the archive never shows a sale without its total.
func (r *salesRepo) Record(ctx context.Context, sale sales.Sale) error {
	err := pgutils.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO sales (player_name, bidder_name, price, sold_at)
			VALUES ($1, $2, $3, $4)
		`, sale.PlayerName, sale.BidderName, int64(sale.Price), sale.SoldAt)
		if err != nil {
			if isUniqueViolation(err) {
				return sales.ErrDuplicateSale
			}

			return fmt.Errorf("insert sale: %w", err)
		}

		_, err = tx.Exec(`
			INSERT INTO bidder_totals (bidder_name, total_spent)
			VALUES ($1, $2)
			ON CONFLICT (bidder_name)
			DO UPDATE SET total_spent = bidder_totals.total_spent + EXCLUDED.total_spent
		`, sale.BidderName, int64(sale.Price))
		if err != nil {
			return fmt.Errorf("bump bidder total: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("record sale: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	return false
}
