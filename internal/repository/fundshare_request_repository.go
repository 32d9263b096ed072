package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/model"
)

// FundShareRequestRepository provides data access methods for the
// fundshare_request approval queue.
type FundShareRequestRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewFundShareRequestRepository creates a new FundShareRequestRepository with the provided database connection.
func NewFundShareRequestRepository(db *sql.DB) *FundShareRequestRepository {
	return &FundShareRequestRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *FundShareRequestRepository) WithTx(tx *sql.Tx) *FundShareRequestRepository {
	return &FundShareRequestRepository{db: r.db, tx: tx}
}

func (r *FundShareRequestRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func scanRequest(scan func(dest ...any) error) (model.FundShareRequest, error) {
	var req model.FundShareRequest
	var amount, units sql.NullFloat64
	var createdAtStr string
	var processedAtStr sql.NullString

	err := scan(
		&req.ID,
		&req.InvestorID,
		&req.Side,
		&amount,
		&units,
		&req.Price,
		&req.Fee,
		&req.Status,
		&createdAtStr,
		&processedAtStr,
	)
	if err != nil {
		return model.FundShareRequest{}, err
	}

	req.Amount = amount.Float64
	req.Units = units.Float64
	req.CreatedAt, _ = ParseTimestamp(createdAtStr)

	if processedAtStr.Valid {
		processedAt, err := ParseTimestamp(processedAtStr.String)
		if err == nil {
			req.ProcessedAt = &processedAt
		}
	}

	return req, nil
}

const requestColumns = `id, investor_id, side, amount, units, price, fee, status, created_at, processed_at`

// InsertRequest files a new pending request.
func (r *FundShareRequestRepository) InsertRequest(ctx context.Context, req model.FundShareRequest) error {
	query := `
		INSERT INTO fundshare_request (id, investor_id, side, amount, units, price, fee, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		req.ID,
		req.InvestorID,
		req.Side,
		req.Amount,
		req.Units,
		req.Price,
		req.Fee,
		req.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fund-share request: %w", err)
	}

	return nil
}

// GetRequest retrieves a single request by ID.
// Returns apperrors.ErrRequestNotFound if no row exists.
func (r *FundShareRequestRepository) GetRequest(ctx context.Context, requestID string) (model.FundShareRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM fundshare_request WHERE id = ?`

	row := r.getQuerier().QueryRowContext(ctx, query, requestID)
	req, err := scanRequest(row.Scan)
	if err == sql.ErrNoRows {
		return model.FundShareRequest{}, apperrors.ErrRequestNotFound
	}
	if err != nil {
		return model.FundShareRequest{}, fmt.Errorf("failed to query fund-share request %s: %w", requestID, err)
	}

	return req, nil
}

// GetRequests retrieves requests filtered by status, newest first.
// An empty status returns all requests.
func (r *FundShareRequestRepository) GetRequests(ctx context.Context, status string) ([]model.FundShareRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM fundshare_request`

	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fundshare_request table: %w", err)
	}
	defer rows.Close()

	requests := []model.FundShareRequest{}
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fundshare_request table results: %w", err)
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fundshare_request table: %w", err)
	}

	return requests, nil
}

// UpdateStatus marks a request processed. Only pending requests transition;
// a request that was already approved or rejected stays as it is.
func (r *FundShareRequestRepository) UpdateStatus(ctx context.Context, requestID, status string, processedAt time.Time) error {
	query := `
		UPDATE fundshare_request
		SET status = ?, processed_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		status, processedAt.UTC().Format(time.RFC3339), requestID, model.RequestStatusPending)
	if err != nil {
		return fmt.Errorf("failed to update fund-share request status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperrors.ErrRequestAlreadyProcessed
	}

	return nil
}
