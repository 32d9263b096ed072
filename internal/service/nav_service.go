package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/model"
	"github.com/quantora/fund-management-backend/internal/repository"
)

// Pipeline step names, reported in order in PipelineResult.Steps.
const (
	StepGross   = "gross value"
	StepCosts   = "cost accrual"
	StepPerUnit = "per-unit price"
)

// PipelineResult reports a NAV pipeline run: the steps that completed, in
// order, and the finished valuation when the run succeeded.
type PipelineResult struct {
	Steps     []string         `json:"steps"`
	Valuation *model.Valuation `json:"valuation,omitempty"`
}

// PipelineError wraps the failure of one pipeline step together with the
// steps that completed before it, so partial progress is diagnosable even
// though the transaction has been rolled back.
type PipelineError struct {
	Step      string
	Completed []string
	Err       error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("nav pipeline failed at %s: %v", e.Step, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NavService runs the daily valuation pipeline:
// gross asset value -> cost deduction -> per-unit price.
type NavService struct {
	db            *sql.DB
	positionRepo  *repository.PositionRepository
	valuationRepo *repository.ValuationRepository
	costRepo      *repository.CostRepository
	fsTradeRepo   *repository.FundShareTradeRepository
	costService   *CostService
}

// NewNavService creates a new NavService with the provided repository dependencies.
func NewNavService(
	db *sql.DB,
	positionRepo *repository.PositionRepository,
	valuationRepo *repository.ValuationRepository,
	costRepo *repository.CostRepository,
	fsTradeRepo *repository.FundShareTradeRepository,
	costService *CostService,
) *NavService {
	return &NavService{
		db:            db,
		positionRepo:  positionRepo,
		valuationRepo: valuationRepo,
		costRepo:      costRepo,
		fsTradeRepo:   fsTradeRepo,
		costService:   costService,
	}
}

// perUnitPrice derives the per-unit price from a completed gross valuation.
// Pure: (gross - costs) / units, undefined when no units are outstanding.
func perUnitPrice(gross, costs, units float64) (float64, error) {
	if units == 0 {
		return 0, apperrors.ErrNoUnitsOutstanding
	}
	return (gross - costs) / units, nil
}

// Run executes the three pipeline steps for today's date as one atomic unit
// of work. If any step fails the transaction rolls back, so no partial
// valuation record is ever visible to readers; the returned PipelineError
// names the failing step and the steps that had completed.
func (s *NavService) Run(ctx context.Context) (PipelineResult, error) {
	return s.RunForDate(ctx, time.Now().UTC())
}

// RunForDate is Run pinned to an explicit valuation date.
func (s *NavService) RunForDate(ctx context.Context, navDate time.Time) (PipelineResult, error) {
	result := PipelineResult{Steps: []string{}}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin valuation transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	fail := func(step string, err error) (PipelineResult, error) {
		return result, &PipelineError{Step: step, Completed: result.Steps, Err: err}
	}

	valuationRepo := s.valuationRepo.WithTx(tx)
	costRepo := s.costRepo.WithTx(tx)
	fsTradeRepo := s.fsTradeRepo.WithTx(tx)

	// Step 1: gross asset value.
	gross, err := s.positionRepo.WithTx(tx).GetGrossValue(ctx)
	if err != nil {
		return fail(StepGross, err)
	}

	valuation := model.Valuation{
		ID:         uuid.New().String(),
		NavDate:    navDate,
		GrossValue: gross,
	}
	if err := valuationRepo.InsertGross(ctx, valuation); err != nil {
		return fail(StepGross, err)
	}
	result.Steps = append(result.Steps, StepGross)

	// Step 2: cost accrual for the valuation date.
	if err := s.costService.WithTx(tx).AccrueAll(ctx, navDate); err != nil {
		return fail(StepCosts, err)
	}
	result.Steps = append(result.Steps, StepCosts)

	// Step 3: per-unit price. Re-read the latest record rather than trusting
	// in-memory state, matching what an independent rerun would see.
	latest, err := valuationRepo.GetLatestValuation(ctx)
	if err != nil {
		return fail(StepPerUnit, err)
	}

	costs, err := costRepo.GetTotalForDate(ctx, latest.NavDate)
	if err != nil {
		return fail(StepPerUnit, err)
	}

	units, err := fsTradeRepo.GetUnitsOutstanding(ctx, latest.NavDate)
	if err != nil {
		return fail(StepPerUnit, err)
	}

	perUnit, err := perUnitPrice(latest.GrossValue, costs, units)
	if err != nil {
		return fail(StepPerUnit, err)
	}

	latest.TotalCost = costs
	latest.NetValue = latest.GrossValue - costs
	latest.TotalUnits = units
	latest.NavPerUnit = perUnit

	if err := valuationRepo.CompleteValuation(ctx, latest); err != nil {
		return fail(StepPerUnit, err)
	}
	result.Steps = append(result.Steps, StepPerUnit)

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit valuation transaction: %w", err)
	}

	result.Valuation = &latest
	return result, nil
}

// GetHistory returns all valuation records, oldest first.
func (s *NavService) GetHistory(ctx context.Context) ([]model.Valuation, error) {
	return s.valuationRepo.GetHistory(ctx)
}

// GetLatest returns the most recent valuation record.
func (s *NavService) GetLatest(ctx context.Context) (model.Valuation, error) {
	return s.valuationRepo.GetLatestValuation(ctx)
}
