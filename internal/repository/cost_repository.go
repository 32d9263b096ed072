package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quantora/fund-management-backend/internal/model"
)

// CostRepository provides data access methods for the cost_entry table.
type CostRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewCostRepository creates a new CostRepository with the provided database connection.
func NewCostRepository(db *sql.DB) *CostRepository {
	return &CostRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *CostRepository) WithTx(tx *sql.Tx) *CostRepository {
	return &CostRepository{db: r.db, tx: tx}
}

func (r *CostRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertIfAbsent writes a cost entry unless one already exists for the same
// (date, type). A duplicate accrual is a no-op, never a second row.
func (r *CostRepository) InsertIfAbsent(ctx context.Context, e model.CostEntry) error {
	query := `
		INSERT INTO cost_entry (id, cost_date, cost_type, amount, rate)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (cost_date, cost_type) DO NOTHING
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		e.ID, FormatDate(e.CostDate), e.CostType, e.Amount, e.Rate)
	if err != nil {
		return fmt.Errorf("failed to insert cost entry: %w", err)
	}

	return nil
}

// Upsert writes a cost entry, replacing the same-date same-type entry when
// present. Entries for other dates are never touched.
func (r *CostRepository) Upsert(ctx context.Context, e model.CostEntry) error {
	query := `
		INSERT INTO cost_entry (id, cost_date, cost_type, amount, rate)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (cost_date, cost_type) DO UPDATE SET
			amount = excluded.amount,
			rate = excluded.rate
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		e.ID, FormatDate(e.CostDate), e.CostType, e.Amount, e.Rate)
	if err != nil {
		return fmt.Errorf("failed to upsert cost entry: %w", err)
	}

	return nil
}

// GetTotalForDate sums all cost amounts accrued on the given date.
func (r *CostRepository) GetTotalForDate(ctx context.Context, date time.Time) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM cost_entry WHERE cost_date = ?`

	var total float64
	if err := r.getQuerier().QueryRowContext(ctx, query, FormatDate(date)).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum cost entries: %w", err)
	}

	return total, nil
}

// GetEntries retrieves all cost entries, newest first.
func (r *CostRepository) GetEntries(ctx context.Context) ([]model.CostEntry, error) {
	query := `
		SELECT id, cost_date, cost_type, amount, rate, created_at
		FROM cost_entry
		ORDER BY cost_date DESC, cost_type ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost_entry table: %w", err)
	}
	defer rows.Close()

	entries := []model.CostEntry{}
	for rows.Next() {
		var e model.CostEntry
		var dateStr, createdAtStr string

		err := rows.Scan(&e.ID, &dateStr, &e.CostType, &e.Amount, &e.Rate, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cost_entry table results: %w", err)
		}

		e.CostDate, err = ParseTime(dateStr)
		if err != nil {
			return nil, err
		}
		e.CreatedAt, _ = ParseTimestamp(createdAtStr)

		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cost_entry table: %w", err)
	}

	return entries, nil
}

// CountForDate counts entries of one type on one date. Used by tests to
// assert accrual idempotence.
func (r *CostRepository) CountForDate(ctx context.Context, date time.Time, costType string) (int, error) {
	query := `SELECT COUNT(*) FROM cost_entry WHERE cost_date = ? AND cost_type = ?`

	var count int
	if err := r.getQuerier().QueryRowContext(ctx, query, FormatDate(date), costType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cost entries: %w", err)
	}

	return count, nil
}
