package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/config"
	"github.com/quantora/fund-management-backend/internal/model"
	"github.com/quantora/fund-management-backend/internal/repository"
)

// InvestorService handles investor accounts and the read-side views built on
// top of the fund-share ledger.
type InvestorService struct {
	investorRepo  *repository.InvestorRepository
	positionRepo  *repository.PositionRepository
	valuationRepo *repository.ValuationRepository
	fund          config.FundConfig
}

// NewInvestorService creates a new InvestorService with the provided repository dependencies.
func NewInvestorService(
	investorRepo *repository.InvestorRepository,
	positionRepo *repository.PositionRepository,
	valuationRepo *repository.ValuationRepository,
	fund config.FundConfig,
) *InvestorService {
	return &InvestorService{
		investorRepo:  investorRepo,
		positionRepo:  positionRepo,
		valuationRepo: valuationRepo,
		fund:          fund,
	}
}

// GetInvestor retrieves a single investor account.
func (s *InvestorService) GetInvestor(ctx context.Context, investorID string) (model.Investor, error) {
	return s.investorRepo.GetInvestor(ctx, investorID)
}

// GetAllInvestors retrieves every investor account.
func (s *InvestorService) GetAllInvestors(ctx context.Context) ([]model.Investor, error) {
	return s.investorRepo.GetAllInvestors(ctx)
}

// CreateInvestor opens a new investor account with zero balances.
func (s *InvestorService) CreateInvestor(ctx context.Context, name, email string) (*model.Investor, error) {
	inv := model.Investor{
		ID:       uuid.New().String(),
		Name:     name,
		Email:    email,
		Status:   "active",
		OpenDate: time.Now().UTC(),
	}

	if err := s.investorRepo.InsertInvestor(ctx, inv); err != nil {
		return nil, err
	}

	return &inv, nil
}

// summarize values an investor's units at the given per-unit price.
func summarize(inv model.Investor, navPerUnit float64) model.InvestorSummary {
	marketValue := inv.Units * navPerUnit
	profit := marketValue - inv.Capital

	roi := 0.0
	if inv.Capital > 0 {
		roi = profit / inv.Capital
	}

	return model.InvestorSummary{
		InvestorID:  inv.ID,
		Name:        inv.Name,
		Units:       inv.Units,
		Capital:     inv.Capital,
		NavPerUnit:  navPerUnit,
		MarketValue: marketValue,
		Profit:      profit,
		ROI:         roi,
	}
}

// GetSummary values one investor's stake at the latest per-unit price.
// Before the first completed valuation, units are valued at zero.
func (s *InvestorService) GetSummary(ctx context.Context, investorID string) (model.InvestorSummary, error) {
	inv, err := s.investorRepo.GetInvestor(ctx, investorID)
	if err != nil {
		return model.InvestorSummary{}, err
	}

	navPerUnit, err := s.latestNav(ctx)
	if err != nil {
		return model.InvestorSummary{}, err
	}

	return summarize(inv, navPerUnit), nil
}

// GetAllSummaries values every investor's stake at the latest per-unit price.
func (s *InvestorService) GetAllSummaries(ctx context.Context) ([]model.InvestorSummary, error) {
	investors, err := s.investorRepo.GetAllInvestors(ctx)
	if err != nil {
		return nil, err
	}

	navPerUnit, err := s.latestNav(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.InvestorSummary, 0, len(investors))
	for _, inv := range investors {
		summaries = append(summaries, summarize(inv, navPerUnit))
	}

	return summaries, nil
}

func (s *InvestorService) latestNav(ctx context.Context) (float64, error) {
	latest, err := s.valuationRepo.GetLatestValuation(ctx)
	if errors.Is(err, apperrors.ErrNoValuation) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return latest.NavPerUnit, nil
}

// GetFundInfo assembles the admin-facing fund overview: cash on hand, units
// in circulation, and the latest valuation's headline numbers.
func (s *InvestorService) GetFundInfo(ctx context.Context) (model.FundInfo, error) {
	cash, err := s.positionRepo.GetCashPosition(ctx, s.fund.CashTicker)
	if err != nil {
		return model.FundInfo{}, err
	}

	totalUnits, err := s.investorRepo.GetTotalUnits(ctx)
	if err != nil {
		return model.FundInfo{}, err
	}

	info := model.FundInfo{
		CashBalance: cash.NetValue,
		TotalUnits:  totalUnits,
	}

	latest, err := s.valuationRepo.GetLatestValuation(ctx)
	if errors.Is(err, apperrors.ErrNoValuation) {
		return info, nil
	}
	if err != nil {
		return model.FundInfo{}, err
	}

	investors, err := s.investorRepo.GetAllInvestors(ctx)
	if err != nil {
		return model.FundInfo{}, err
	}

	var invested float64
	for _, inv := range investors {
		invested += inv.Capital
	}

	info.InvestedValue = invested
	info.MarketValue = totalUnits * latest.NavPerUnit
	info.Profit = info.MarketValue - invested
	if invested > 0 {
		info.Return = info.Profit / invested
	}

	return info, nil
}
