package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/config"
	"github.com/quantora/fund-management-backend/internal/model"
	"github.com/quantora/fund-management-backend/internal/repository"
)

// CostService accrues the fund's periodic costs. Accrual is idempotent per
// (date, type): rerunning a day's accrual never duplicates an entry and
// never touches entries for other dates.
type CostService struct {
	costRepo      *repository.CostRepository
	valuationRepo *repository.ValuationRepository
	fsTradeRepo   *repository.FundShareTradeRepository
	fund          config.FundConfig
}

// NewCostService creates a new CostService with the provided repository dependencies.
func NewCostService(
	costRepo *repository.CostRepository,
	valuationRepo *repository.ValuationRepository,
	fsTradeRepo *repository.FundShareTradeRepository,
	fund config.FundConfig,
) *CostService {
	return &CostService{
		costRepo:      costRepo,
		valuationRepo: valuationRepo,
		fsTradeRepo:   fsTradeRepo,
		fund:          fund,
	}
}

// WithTx returns a copy of the service whose repositories run inside the
// given transaction. Used by the NAV pipeline to make cost accrual part of
// its atomic unit of work.
func (s *CostService) WithTx(tx *sql.Tx) *CostService {
	return &CostService{
		costRepo:      s.costRepo.WithTx(tx),
		valuationRepo: s.valuationRepo.WithTx(tx),
		fsTradeRepo:   s.fsTradeRepo.WithTx(tx),
		fund:          s.fund,
	}
}

// AccrueManagementFee books one day of management fee against the latest
// gross NAV: gross * annual rate / 365. A second call for the same date is
// a no-op. When no valuation exists yet there is nothing to charge against
// and the call succeeds without writing.
func (s *CostService) AccrueManagementFee(ctx context.Context, date time.Time) error {
	latest, err := s.valuationRepo.GetLatestValuation(ctx)
	if err == apperrors.ErrNoValuation {
		return nil
	}
	if err != nil {
		return err
	}

	entry := model.CostEntry{
		ID:       uuid.New().String(),
		CostDate: date,
		CostType: model.CostTypeManagement,
		Amount:   latest.GrossValue * s.fund.ManagementFeeRate / 365,
		Rate:     s.fund.ManagementFeeRate,
	}

	return s.costRepo.InsertIfAbsent(ctx, entry)
}

// AccrueTransactionFee books the day's fund-share trading fee:
// sum of |cash flow| over trades dated exactly asOf, times the rate.
// Recomputation replaces the same-date entry in place.
func (s *CostService) AccrueTransactionFee(ctx context.Context, asOf time.Time) error {
	turnover, err := s.fsTradeRepo.GetAbsoluteCashFlowForDate(ctx, asOf)
	if err != nil {
		return err
	}

	entry := model.CostEntry{
		ID:       uuid.New().String(),
		CostDate: asOf,
		CostType: model.CostTypeTransaction,
		Amount:   turnover * s.fund.TransactionFeeRate,
		Rate:     s.fund.TransactionFeeRate,
	}

	return s.costRepo.Upsert(ctx, entry)
}

// AccrueAll runs both accruals for the given date.
func (s *CostService) AccrueAll(ctx context.Context, date time.Time) error {
	if err := s.AccrueManagementFee(ctx, date); err != nil {
		return err
	}
	return s.AccrueTransactionFee(ctx, date)
}

// GetEntries returns the cost history, newest first.
func (s *CostService) GetEntries(ctx context.Context) ([]model.CostEntry, error) {
	return s.costRepo.GetEntries(ctx)
}
