package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/quantora/fund-management-backend/internal/config"
	"github.com/quantora/fund-management-backend/internal/marketdata"
	"github.com/quantora/fund-management-backend/internal/repository"
	"github.com/quantora/fund-management-backend/internal/service"
)

// MakeID returns a fresh UUID string for test fixtures.
func MakeID() string {
	return uuid.New().String()
}

// TestFundConfig returns the fund parameters used across tests: the standard
// 0.15% fee rates and the YTM cash ticker.
func TestFundConfig() config.FundConfig {
	return config.FundConfig{
		CashTicker:         "YTM",
		ManagementFeeRate:  0.0015,
		TransactionFeeRate: 0.0015,
	}
}

func NewTestPositionService(t *testing.T, db *sql.DB) *service.PositionService {
	t.Helper()

	positionRepo := repository.NewPositionRepository(db)
	tradeRepo := repository.NewAssetTradeRepository(db)

	return service.NewPositionService(
		db,
		positionRepo,
		tradeRepo,
		TestFundConfig().CashTicker,
	)
}

func NewTestCostService(t *testing.T, db *sql.DB) *service.CostService {
	t.Helper()

	costRepo := repository.NewCostRepository(db)
	valuationRepo := repository.NewValuationRepository(db)
	fsTradeRepo := repository.NewFundShareTradeRepository(db)

	return service.NewCostService(
		costRepo,
		valuationRepo,
		fsTradeRepo,
		TestFundConfig(),
	)
}

func NewTestNavService(t *testing.T, db *sql.DB) *service.NavService {
	t.Helper()

	positionRepo := repository.NewPositionRepository(db)
	valuationRepo := repository.NewValuationRepository(db)
	costRepo := repository.NewCostRepository(db)
	fsTradeRepo := repository.NewFundShareTradeRepository(db)

	return service.NewNavService(
		db,
		positionRepo,
		valuationRepo,
		costRepo,
		fsTradeRepo,
		NewTestCostService(t, db),
	)
}

func NewTestFundShareService(t *testing.T, db *sql.DB) *service.FundShareService {
	t.Helper()

	investorRepo := repository.NewInvestorRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	fsTradeRepo := repository.NewFundShareTradeRepository(db)
	requestRepo := repository.NewFundShareRequestRepository(db)
	valuationRepo := repository.NewValuationRepository(db)

	return service.NewFundShareService(
		db,
		investorRepo,
		positionRepo,
		fsTradeRepo,
		requestRepo,
		valuationRepo,
		TestFundConfig(),
	)
}

func NewTestInvestorService(t *testing.T, db *sql.DB) *service.InvestorService {
	t.Helper()

	investorRepo := repository.NewInvestorRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	valuationRepo := repository.NewValuationRepository(db)

	return service.NewInvestorService(
		investorRepo,
		positionRepo,
		valuationRepo,
		TestFundConfig(),
	)
}

func NewTestSnapshotService(t *testing.T, db *sql.DB) *service.SnapshotService {
	t.Helper()

	positionRepo := repository.NewPositionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	return service.NewSnapshotService(db, positionRepo, snapshotRepo)
}

func NewTestPriceService(t *testing.T, db *sql.DB, provider marketdata.Provider) *service.PriceService {
	t.Helper()

	positionRepo := repository.NewPositionRepository(db)
	priceRepo := repository.NewPriceHistoryRepository(db)

	return service.NewPriceService(db, positionRepo, priceRepo, provider)
}
