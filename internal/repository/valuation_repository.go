package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/model"
)

// ValuationRepository provides data access methods for the valuation table.
type ValuationRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewValuationRepository creates a new ValuationRepository with the provided database connection.
func NewValuationRepository(db *sql.DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ValuationRepository) WithTx(tx *sql.Tx) *ValuationRepository {
	return &ValuationRepository{db: r.db, tx: tx}
}

func (r *ValuationRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func scanValuation(scan func(dest ...any) error) (model.Valuation, error) {
	var v model.Valuation
	var dateStr, createdAtStr string
	var netValue, totalUnits, navPerUnit sql.NullFloat64

	err := scan(
		&v.ID,
		&dateStr,
		&v.GrossValue,
		&v.TotalCost,
		&netValue,
		&totalUnits,
		&navPerUnit,
		&createdAtStr,
	)
	if err != nil {
		return model.Valuation{}, err
	}

	v.NetValue = netValue.Float64
	v.TotalUnits = totalUnits.Float64
	v.NavPerUnit = navPerUnit.Float64

	v.NavDate, err = ParseTime(dateStr)
	if err != nil {
		return model.Valuation{}, err
	}
	v.CreatedAt, _ = ParseTimestamp(createdAtStr)

	return v, nil
}

const valuationColumns = `id, nav_date, gross_value, total_cost, net_value, total_units, nav_per_unit, created_at`

// InsertGross creates the valuation row for a date with its gross value.
// Returns apperrors.ErrValuationExists when the date already has a record.
func (r *ValuationRepository) InsertGross(ctx context.Context, v model.Valuation) error {
	query := `
		INSERT INTO valuation (id, nav_date, gross_value)
		VALUES (?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query, v.ID, FormatDate(v.NavDate), v.GrossValue)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperrors.ErrValuationExists
		}
		return fmt.Errorf("failed to insert valuation: %w", err)
	}

	return nil
}

// CompleteValuation writes the derived fields back into the date's record.
func (r *ValuationRepository) CompleteValuation(ctx context.Context, v model.Valuation) error {
	query := `
		UPDATE valuation
		SET total_cost = ?, net_value = ?, total_units = ?, nav_per_unit = ?
		WHERE nav_date = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		v.TotalCost,
		v.NetValue,
		v.TotalUnits,
		v.NavPerUnit,
		FormatDate(v.NavDate),
	)
	if err != nil {
		return fmt.Errorf("failed to complete valuation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrValuationNotFound
	}

	return nil
}

// GetLatestValuation retrieves the most recent valuation record.
// Returns apperrors.ErrNoValuation when the table is empty.
func (r *ValuationRepository) GetLatestValuation(ctx context.Context) (model.Valuation, error) {
	query := `SELECT ` + valuationColumns + ` FROM valuation ORDER BY nav_date DESC LIMIT 1`

	row := r.getQuerier().QueryRowContext(ctx, query)
	v, err := scanValuation(row.Scan)
	if err == sql.ErrNoRows {
		return model.Valuation{}, apperrors.ErrNoValuation
	}
	if err != nil {
		return model.Valuation{}, fmt.Errorf("failed to query latest valuation: %w", err)
	}

	return v, nil
}

// GetHistory retrieves all valuation records, oldest first.
func (r *ValuationRepository) GetHistory(ctx context.Context) ([]model.Valuation, error) {
	query := `SELECT ` + valuationColumns + ` FROM valuation ORDER BY nav_date ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation table: %w", err)
	}
	defer rows.Close()

	valuations := []model.Valuation{}
	for rows.Next() {
		v, err := scanValuation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan valuation table results: %w", err)
		}
		valuations = append(valuations, v)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating valuation table: %w", err)
	}

	return valuations, nil
}
