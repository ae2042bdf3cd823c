package sales

import (
	"database/sql"
)

type salesRepo struct{ db *sql.DB }

func New(db *sql.DB) *salesRepo {
	return &salesRepo{db: db}
}
