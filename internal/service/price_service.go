package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/quantora/fund-management-backend/internal/marketdata"
	"github.com/quantora/fund-management-backend/internal/model"
	"github.com/quantora/fund-management-backend/internal/repository"
)

// PriceService refreshes the market prices of the fund's stock positions
// from the external price provider.
type PriceService struct {
	db           *sql.DB
	positionRepo *repository.PositionRepository
	priceRepo    *repository.PriceHistoryRepository
	provider     marketdata.Provider
}

// NewPriceService creates a new PriceService with the provided dependencies.
func NewPriceService(
	db *sql.DB,
	positionRepo *repository.PositionRepository,
	priceRepo *repository.PriceHistoryRepository,
	provider marketdata.Provider,
) *PriceService {
	return &PriceService{
		db:           db,
		positionRepo: positionRepo,
		priceRepo:    priceRepo,
		provider:     provider,
	}
}

// RefreshAll fetches the latest close for every stock ticker, one at a time,
// committing each success independently. A failed fetch is recorded in the
// result and the batch continues, so one dead symbol never blocks the rest
// of the portfolio from revaluing.
func (s *PriceService) RefreshAll(ctx context.Context) (model.PriceUpdateResult, error) {
	result := model.PriceUpdateResult{
		Updated: []model.PriceQuote{},
		Failed:  []model.PriceUpdateFailure{},
	}

	tickers, err := s.positionRepo.GetStockTickers(ctx)
	if err != nil {
		return result, err
	}

	for _, ticker := range tickers {
		quote, err := s.provider.FetchClose(ctx, ticker)
		if err != nil {
			log.Printf("price refresh failed for %s: %v", ticker, err)
			result.Failed = append(result.Failed, model.PriceUpdateFailure{
				Ticker: ticker,
				Reason: err.Error(),
			})
			continue
		}

		if err := s.applyQuote(ctx, quote); err != nil {
			log.Printf("price update failed for %s: %v", ticker, err)
			result.Failed = append(result.Failed, model.PriceUpdateFailure{
				Ticker: ticker,
				Reason: err.Error(),
			})
			continue
		}

		result.Updated = append(result.Updated, quote)
	}

	return result, nil
}

// applyQuote writes one quote to the price history and revalues the position
// in a single transaction.
func (s *PriceService) applyQuote(ctx context.Context, quote model.PriceQuote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin price update transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := s.priceRepo.WithTx(tx).UpsertQuote(ctx, quote); err != nil {
		return err
	}
	if err := s.positionRepo.WithTx(tx).UpdateMarketPrice(ctx, quote.Ticker, quote.ClosePrice, quote.PriceDate); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price update transaction: %w", err)
	}
	return nil
}

// GetHistory returns a ticker's stored price history, oldest first.
func (s *PriceService) GetHistory(ctx context.Context, ticker string) ([]model.PriceQuote, error) {
	return s.priceRepo.GetHistory(ctx, ticker)
}
