package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/model"
)

// InvestorRepository provides data access methods for the investor table.
type InvestorRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewInvestorRepository creates a new InvestorRepository with the provided database connection.
func NewInvestorRepository(db *sql.DB) *InvestorRepository {
	return &InvestorRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *InvestorRepository) WithTx(tx *sql.Tx) *InvestorRepository {
	return &InvestorRepository{db: r.db, tx: tx}
}

func (r *InvestorRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func scanInvestor(scan func(dest ...any) error) (model.Investor, error) {
	var inv model.Investor
	var email sql.NullString
	var openDateStr string

	err := scan(
		&inv.ID,
		&inv.Name,
		&email,
		&inv.Units,
		&inv.Capital,
		&inv.Status,
		&openDateStr,
	)
	if err != nil {
		return model.Investor{}, err
	}

	if email.Valid {
		inv.Email = email.String
	}

	inv.OpenDate, err = ParseTime(openDateStr)
	if err != nil {
		return model.Investor{}, err
	}

	return inv, nil
}

const investorColumns = `id, name, email, units, capital, status, open_date`

// GetInvestor retrieves a single investor by ID.
// Returns apperrors.ErrInvestorNotFound if no row exists.
func (r *InvestorRepository) GetInvestor(ctx context.Context, investorID string) (model.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investor WHERE id = ?`

	row := r.getQuerier().QueryRowContext(ctx, query, investorID)
	inv, err := scanInvestor(row.Scan)
	if err == sql.ErrNoRows {
		return model.Investor{}, apperrors.ErrInvestorNotFound
	}
	if err != nil {
		return model.Investor{}, fmt.Errorf("failed to query investor %s: %w", investorID, err)
	}

	return inv, nil
}

// GetAllInvestors retrieves every investor, ordered by name.
func (r *InvestorRepository) GetAllInvestors(ctx context.Context) ([]model.Investor, error) {
	query := `SELECT ` + investorColumns + ` FROM investor ORDER BY name ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query investor table: %w", err)
	}
	defer rows.Close()

	investors := []model.Investor{}
	for rows.Next() {
		inv, err := scanInvestor(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investor table results: %w", err)
		}
		investors = append(investors, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investor table: %w", err)
	}

	return investors, nil
}

// InsertInvestor creates a new investor account.
func (r *InvestorRepository) InsertInvestor(ctx context.Context, inv model.Investor) error {
	query := `
		INSERT INTO investor (` + investorColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		inv.ID,
		inv.Name,
		inv.Email,
		inv.Units,
		inv.Capital,
		inv.Status,
		FormatDate(inv.OpenDate),
	)
	if err != nil {
		return fmt.Errorf("failed to insert investor: %w", err)
	}

	return nil
}

// UpdateBalances overwrites an investor's unit and capital balances.
// Callers must hold the investor's lock for the full read-compute-write.
func (r *InvestorRepository) UpdateBalances(ctx context.Context, investorID string, units, capital float64) error {
	query := `UPDATE investor SET units = ?, capital = ? WHERE id = ?`

	result, err := r.getQuerier().ExecContext(ctx, query, units, capital, investorID)
	if err != nil {
		return fmt.Errorf("failed to update investor balances: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrInvestorNotFound
	}

	return nil
}

// GetTotalUnits sums unit balances across all investors. Used to check unit
// conservation against the latest valuation record.
func (r *InvestorRepository) GetTotalUnits(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(SUM(units), 0) FROM investor`

	var total float64
	if err := r.getQuerier().QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum investor units: %w", err)
	}

	return total, nil
}
