package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quantora/fund-management-backend/internal/model"
)

// AssetTradeRepository provides data access methods for the append-only
// asset_trade journal.
type AssetTradeRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewAssetTradeRepository creates a new AssetTradeRepository with the provided database connection.
func NewAssetTradeRepository(db *sql.DB) *AssetTradeRepository {
	return &AssetTradeRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AssetTradeRepository) WithTx(tx *sql.Tx) *AssetTradeRepository {
	return &AssetTradeRepository{db: r.db, tx: tx}
}

func (r *AssetTradeRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertTrade appends one trade to the journal.
func (r *AssetTradeRepository) InsertTrade(ctx context.Context, t model.AssetTrade) error {
	query := `
		INSERT INTO asset_trade (id, trade_date, ticker, side, quantity, price, cash_flow)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		FormatDate(t.TradeDate),
		t.Ticker,
		t.Side,
		t.Quantity,
		t.Price,
		t.CashFlow,
	)
	if err != nil {
		return fmt.Errorf("failed to insert asset trade: %w", err)
	}

	return nil
}

// GetTrades retrieves all trades, newest first.
func (r *AssetTradeRepository) GetTrades(ctx context.Context) ([]model.AssetTrade, error) {
	query := `
		SELECT id, trade_date, ticker, side, quantity, price, cash_flow, created_at
		FROM asset_trade
		ORDER BY trade_date DESC, created_at DESC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_trade table: %w", err)
	}
	defer rows.Close()

	trades := []model.AssetTrade{}
	for rows.Next() {
		var t model.AssetTrade
		var tradeDateStr, createdAtStr string

		err := rows.Scan(
			&t.ID,
			&tradeDateStr,
			&t.Ticker,
			&t.Side,
			&t.Quantity,
			&t.Price,
			&t.CashFlow,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset_trade table results: %w", err)
		}

		t.TradeDate, err = ParseTime(tradeDateStr)
		if err != nil {
			return nil, err
		}
		t.CreatedAt, _ = ParseTimestamp(createdAtStr)

		trades = append(trades, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset_trade table: %w", err)
	}

	return trades, nil
}

// AggregateSince sums buy quantity, sell quantity, and buy value per ticker
// for trades dated on or after the given settlement watermark.
func (r *AssetTradeRepository) AggregateSince(ctx context.Context, since time.Time) ([]model.TradeAggregate, error) {
	query := `
		SELECT
			ticker,
			COALESCE(SUM(CASE WHEN side = ? THEN quantity ELSE 0 END), 0) AS buy_qty,
			COALESCE(SUM(CASE WHEN side = ? THEN quantity ELSE 0 END), 0) AS sell_qty,
			COALESCE(SUM(CASE WHEN side = ? THEN quantity * price ELSE 0 END), 0) AS buy_value
		FROM asset_trade
		WHERE trade_date >= ?
		GROUP BY ticker
	`

	rows, err := r.getQuerier().QueryContext(ctx, query,
		model.SideBuy, model.SideSell, model.SideBuy, FormatDate(since))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate asset trades: %w", err)
	}
	defer rows.Close()

	aggregates := []model.TradeAggregate{}
	for rows.Next() {
		var a model.TradeAggregate
		if err := rows.Scan(&a.Ticker, &a.BuyQty, &a.SellQty, &a.BuyValue); err != nil {
			return nil, fmt.Errorf("failed to scan trade aggregate: %w", err)
		}
		aggregates = append(aggregates, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade aggregates: %w", err)
	}

	return aggregates, nil
}
