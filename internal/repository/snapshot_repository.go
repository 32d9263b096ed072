package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quantora/fund-management-backend/internal/model"
)

// SnapshotRepository provides data access methods for the snapshot table.
// The table is replace-all: every aggregation run clears it and reinserts.
type SnapshotRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *SnapshotRepository) WithTx(tx *sql.Tx) *SnapshotRepository {
	return &SnapshotRepository{db: r.db, tx: tx}
}

func (r *SnapshotRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// DeleteAll clears the snapshot table ahead of a rebuild.
func (r *SnapshotRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM snapshot`); err != nil {
		return fmt.Errorf("failed to clear snapshot table: %w", err)
	}
	return nil
}

// InsertSnapshot writes one rollup row.
func (r *SnapshotRepository) InsertSnapshot(ctx context.Context, s model.Snapshot) error {
	query := `
		INSERT INTO snapshot (id, category, invested_value, market_value, profit, return_rate, weight, snapshot_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		s.ID,
		s.Category,
		s.InvestedValue,
		s.MarketValue,
		s.Profit,
		s.ReturnRate,
		s.Weight,
		s.SnapshotTime.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot row: %w", err)
	}

	return nil
}

// GetSnapshots retrieves the current rollup, Total row first.
func (r *SnapshotRepository) GetSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	query := `
		SELECT id, category, invested_value, market_value, profit, return_rate, weight, snapshot_time
		FROM snapshot
		ORDER BY CASE WHEN category = ? THEN 0 ELSE 1 END, category ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, model.SnapshotCategoryTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.Snapshot{}
	for rows.Next() {
		var s model.Snapshot
		var timeStr string

		err := rows.Scan(
			&s.ID,
			&s.Category,
			&s.InvestedValue,
			&s.MarketValue,
			&s.Profit,
			&s.ReturnRate,
			&s.Weight,
			&timeStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot table results: %w", err)
		}

		s.SnapshotTime, err = ParseTimestamp(timeStr)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot table: %w", err)
	}

	return snapshots, nil
}
