package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quantora/fund-management-backend/internal/model"
)

// FundShareTradeRepository provides data access methods for the append-only
// fundshare_trade journal.
type FundShareTradeRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewFundShareTradeRepository creates a new FundShareTradeRepository with the provided database connection.
func NewFundShareTradeRepository(db *sql.DB) *FundShareTradeRepository {
	return &FundShareTradeRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *FundShareTradeRepository) WithTx(tx *sql.Tx) *FundShareTradeRepository {
	return &FundShareTradeRepository{db: r.db, tx: tx}
}

func (r *FundShareTradeRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertTrade appends one settled subscribe/redeem to the journal.
func (r *FundShareTradeRepository) InsertTrade(ctx context.Context, t model.FundShareTrade) error {
	query := `
		INSERT INTO fundshare_trade (id, trade_date, investor_id, side, units, price, fee, cash_flow, unit_balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		FormatDate(t.TradeDate),
		t.InvestorID,
		t.Side,
		t.Units,
		t.Price,
		t.Fee,
		t.CashFlow,
		t.UnitBalance,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fund-share trade: %w", err)
	}

	return nil
}

// GetUnitsOutstanding returns net units in circulation (buys minus sells)
// across all fund-share trades dated on or before asOf.
func (r *FundShareTradeRepository) GetUnitsOutstanding(ctx context.Context, asOf time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE
				WHEN side = ? THEN units
				WHEN side = ? THEN -units
				ELSE 0
			END
		), 0)
		FROM fundshare_trade
		WHERE trade_date <= ?
	`

	var units float64
	err := r.getQuerier().QueryRowContext(ctx, query,
		model.SideBuy, model.SideSell, FormatDate(asOf)).Scan(&units)
	if err != nil {
		return 0, fmt.Errorf("failed to compute units outstanding: %w", err)
	}

	return units, nil
}

// GetAbsoluteCashFlowForDate sums |cash flow| over trades dated exactly on
// the given date, the base for the transaction fee.
func (r *FundShareTradeRepository) GetAbsoluteCashFlowForDate(ctx context.Context, date time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(ABS(cash_flow)), 0)
		FROM fundshare_trade
		WHERE trade_date = ?
	`

	var total float64
	if err := r.getQuerier().QueryRowContext(ctx, query, FormatDate(date)).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum fund-share cash flows: %w", err)
	}

	return total, nil
}

// GetTrades retrieves fund-share trades, newest first. An empty investorID
// returns the whole journal.
func (r *FundShareTradeRepository) GetTrades(ctx context.Context, investorID string) ([]model.FundShareTrade, error) {
	query := `
		SELECT id, trade_date, investor_id, side, units, price, fee, cash_flow, unit_balance, created_at
		FROM fundshare_trade
	`

	var args []any
	if investorID != "" {
		query += ` WHERE investor_id = ?`
		args = append(args, investorID)
	}
	query += ` ORDER BY trade_date DESC, created_at DESC`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fundshare_trade table: %w", err)
	}
	defer rows.Close()

	trades := []model.FundShareTrade{}
	for rows.Next() {
		var t model.FundShareTrade
		var tradeDateStr, createdAtStr string

		err := rows.Scan(
			&t.ID,
			&tradeDateStr,
			&t.InvestorID,
			&t.Side,
			&t.Units,
			&t.Price,
			&t.Fee,
			&t.CashFlow,
			&t.UnitBalance,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fundshare_trade table results: %w", err)
		}

		t.TradeDate, err = ParseTime(tradeDateStr)
		if err != nil {
			return nil, err
		}
		t.CreatedAt, _ = ParseTimestamp(createdAtStr)

		trades = append(trades, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fundshare_trade table: %w", err)
	}

	return trades, nil
}
