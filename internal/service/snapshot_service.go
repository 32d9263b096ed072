package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quantora/fund-management-backend/internal/model"
	"github.com/quantora/fund-management-backend/internal/repository"
)

// SnapshotService maintains the category-level rollup of the fund's
// holdings. The rollup is derived data: each rebuild clears the table and
// reinserts every row inside one transaction, so readers see either the old
// rollup or the new one, never a mix.
type SnapshotService struct {
	db           *sql.DB
	positionRepo *repository.PositionRepository
	snapshotRepo *repository.SnapshotRepository
}

// NewSnapshotService creates a new SnapshotService with the provided repository dependencies.
func NewSnapshotService(
	db *sql.DB,
	positionRepo *repository.PositionRepository,
	snapshotRepo *repository.SnapshotRepository,
) *SnapshotService {
	return &SnapshotService{
		db:           db,
		positionRepo: positionRepo,
		snapshotRepo: snapshotRepo,
	}
}

// Rebuild recomputes the rollup from the current position table.
func (s *SnapshotService) Rebuild(ctx context.Context) ([]model.Snapshot, error) {
	positions, err := s.positionRepo.GetAllPositions(ctx)
	if err != nil {
		return nil, err
	}

	snapshots := buildSnapshots(positions, time.Now().UTC())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	snapshotRepo := s.snapshotRepo.WithTx(tx)

	if err := snapshotRepo.DeleteAll(ctx); err != nil {
		return nil, err
	}
	for _, snap := range snapshots {
		if err := snapshotRepo.InsertSnapshot(ctx, snap); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot transaction: %w", err)
	}

	return snapshots, nil
}

// GetSnapshots returns the stored rollup, Total row first.
func (s *SnapshotService) GetSnapshots(ctx context.Context) ([]model.Snapshot, error) {
	return s.snapshotRepo.GetSnapshots(ctx)
}
