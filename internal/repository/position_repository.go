package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/model"
)

// PositionRepository provides data access methods for the position table.
type PositionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{db: r.db, tx: tx}
}

func (r *PositionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const positionColumns = `ticker, asset_name, asset_type, quantity, avg_cost, market_price, net_value, unrealized_return, price_date`

func scanPosition(scan func(dest ...any) error) (model.Position, error) {
	var p model.Position
	var assetName sql.NullString
	var dateStr string

	err := scan(
		&p.Ticker,
		&assetName,
		&p.AssetType,
		&p.Quantity,
		&p.AvgCost,
		&p.MarketPrice,
		&p.NetValue,
		&p.UnrealizedReturn,
		&dateStr,
	)
	if err != nil {
		return model.Position{}, err
	}

	if assetName.Valid {
		p.AssetName = assetName.String
	}

	p.PriceDate, err = ParseTime(dateStr)
	if err != nil {
		return model.Position{}, err
	}

	return p, nil
}

// GetAllPositions retrieves every position held by the fund.
func (r *PositionRepository) GetAllPositions(ctx context.Context) ([]model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position ORDER BY ticker ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}
	for rows.Next() {
		p, err := scanPosition(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// GetPosition retrieves a single position by ticker.
// Returns apperrors.ErrPositionNotFound if no row exists.
func (r *PositionRepository) GetPosition(ctx context.Context, ticker string) (model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE ticker = ?`

	row := r.getQuerier().QueryRowContext(ctx, query, ticker)
	p, err := scanPosition(row.Scan)
	if err == sql.ErrNoRows {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to query position %s: %w", ticker, err)
	}

	return p, nil
}

// GetCashPosition retrieves the fund's cash line.
// Returns apperrors.ErrCashPositionNotFound if no row exists.
func (r *PositionRepository) GetCashPosition(ctx context.Context, cashTicker string) (model.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM position WHERE ticker = ? OR asset_type = ? ORDER BY CASE WHEN ticker = ? THEN 0 ELSE 1 END LIMIT 1`

	row := r.getQuerier().QueryRowContext(ctx, query, cashTicker, model.AssetTypeCash, cashTicker)
	p, err := scanPosition(row.Scan)
	if err == sql.ErrNoRows {
		return model.Position{}, apperrors.ErrCashPositionNotFound
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to query cash position: %w", err)
	}

	return p, nil
}

// InsertPosition creates a new position row. Used when a buy trade arrives
// for a ticker the fund has never held.
func (r *PositionRepository) InsertPosition(ctx context.Context, p model.Position) error {
	query := `
		INSERT INTO position (` + positionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.Ticker,
		p.AssetName,
		p.AssetType,
		p.Quantity,
		p.AvgCost,
		p.MarketPrice,
		p.NetValue,
		p.UnrealizedReturn,
		FormatDate(p.PriceDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert position %s: %w", p.Ticker, err)
	}

	return nil
}

// UpdatePosition overwrites the mutable fields of one position row.
func (r *PositionRepository) UpdatePosition(ctx context.Context, p model.Position) error {
	query := `
		UPDATE position
		SET quantity = ?, avg_cost = ?, market_price = ?, net_value = ?, unrealized_return = ?, price_date = ?
		WHERE ticker = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		p.Quantity,
		p.AvgCost,
		p.MarketPrice,
		p.NetValue,
		p.UnrealizedReturn,
		FormatDate(p.PriceDate),
		p.Ticker,
	)
	if err != nil {
		return fmt.Errorf("failed to update position %s: %w", p.Ticker, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrPositionNotFound
	}

	return nil
}

// UpdateMarketPrice sets a position's market price and revalues it.
// Cash positions keep their net value; the market price of cash is 1.
func (r *PositionRepository) UpdateMarketPrice(ctx context.Context, ticker string, price float64, priceDate time.Time) error {
	query := `
		UPDATE position
		SET market_price = ?,
		    net_value = quantity * ?,
		    unrealized_return = CASE WHEN avg_cost > 0 THEN (? - avg_cost) / avg_cost ELSE 0 END,
		    price_date = ?
		WHERE ticker = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query, price, price, price, FormatDate(priceDate), ticker)
	if err != nil {
		return fmt.Errorf("failed to update market price for %s: %w", ticker, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrPositionNotFound
	}

	return nil
}

// AdjustCashValue applies a cash flow to the fund's cash line.
func (r *PositionRepository) AdjustCashValue(ctx context.Context, ticker string, delta float64) error {
	query := `UPDATE position SET net_value = net_value + ? WHERE ticker = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, delta, ticker)
	if err != nil {
		return fmt.Errorf("failed to adjust cash position: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrCashPositionNotFound
	}

	return nil
}

// GetStockTickers retrieves the distinct tickers of all stock positions,
// the set refreshed by the market price provider.
func (r *PositionRepository) GetStockTickers(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT ticker FROM position WHERE asset_type = ? ORDER BY ticker ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, model.AssetTypeStock)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock tickers: %w", err)
	}

	return tickers, nil
}

// GetLastSettlementDate returns the most recent price_date across all
// positions, the watermark for which trades are still unsettled.
// Returns the zero time when the portfolio is empty.
func (r *PositionRepository) GetLastSettlementDate(ctx context.Context) (time.Time, error) {
	query := `SELECT MAX(price_date) FROM position`

	var dateStr sql.NullString
	if err := r.getQuerier().QueryRowContext(ctx, query).Scan(&dateStr); err != nil {
		return time.Time{}, fmt.Errorf("failed to query last settlement date: %w", err)
	}

	if !dateStr.Valid {
		return time.Time{}, nil
	}

	return ParseTime(dateStr.String)
}

// GetGrossValue sums quantity * market_price over all non-cash positions
// and adds cash balances through net_value, since cash rows carry quantity 1
// with no market price.
func (r *PositionRepository) GetGrossValue(ctx context.Context) (float64, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE WHEN asset_type = ? THEN net_value ELSE quantity * market_price END
		), 0)
		FROM position
	`

	var gross float64
	if err := r.getQuerier().QueryRowContext(ctx, query, model.AssetTypeCash).Scan(&gross); err != nil {
		return 0, fmt.Errorf("failed to compute gross value: %w", err)
	}

	return gross, nil
}
