package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/quantora/fund-management-backend/internal/model"
)

// PriceHistoryRepository provides data access methods for the price_history table.
type PriceHistoryRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPriceHistoryRepository creates a new PriceHistoryRepository with the provided database connection.
func NewPriceHistoryRepository(db *sql.DB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PriceHistoryRepository) WithTx(tx *sql.Tx) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: r.db, tx: tx}
}

func (r *PriceHistoryRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// UpsertQuote records a closing price, replacing any earlier quote for the
// same (ticker, date).
func (r *PriceHistoryRepository) UpsertQuote(ctx context.Context, q model.PriceQuote) error {
	query := `
		INSERT INTO price_history (id, ticker, close_price, price_date, source)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (ticker, price_date) DO UPDATE SET
			close_price = excluded.close_price,
			source = excluded.source,
			created_at = CURRENT_TIMESTAMP
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		uuid.New().String(),
		q.Ticker,
		q.ClosePrice,
		FormatDate(q.PriceDate),
		q.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price history for %s: %w", q.Ticker, err)
	}

	return nil
}

// GetHistory retrieves a ticker's price history, oldest first.
func (r *PriceHistoryRepository) GetHistory(ctx context.Context, ticker string) ([]model.PriceQuote, error) {
	query := `
		SELECT ticker, close_price, price_date, source
		FROM price_history
		WHERE ticker = ?
		ORDER BY price_date ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to query price_history table: %w", err)
	}
	defer rows.Close()

	quotes := []model.PriceQuote{}
	for rows.Next() {
		var q model.PriceQuote
		var dateStr string

		if err := rows.Scan(&q.Ticker, &q.ClosePrice, &dateStr, &q.Source); err != nil {
			return nil, fmt.Errorf("failed to scan price_history table results: %w", err)
		}

		q.PriceDate, err = ParseTime(dateStr)
		if err != nil {
			return nil, err
		}

		quotes = append(quotes, q)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price_history table: %w", err)
	}

	return quotes, nil
}
