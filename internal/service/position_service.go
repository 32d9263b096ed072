package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quantora/fund-management-backend/internal/api/request"
	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/model"
	"github.com/quantora/fund-management-backend/internal/repository"
)

// PositionService owns the position ledger: it records executed asset
// trades and settles them into weighted-average-cost holdings.
type PositionService struct {
	db           *sql.DB
	positionRepo *repository.PositionRepository
	tradeRepo    *repository.AssetTradeRepository
	cashTicker   string
}

// NewPositionService creates a new PositionService with the provided repository dependencies.
func NewPositionService(
	db *sql.DB,
	positionRepo *repository.PositionRepository,
	tradeRepo *repository.AssetTradeRepository,
	cashTicker string,
) *PositionService {
	return &PositionService{
		db:           db,
		positionRepo: positionRepo,
		tradeRepo:    tradeRepo,
		cashTicker:   cashTicker,
	}
}

// GetAllPositions returns every position held by the fund.
func (s *PositionService) GetAllPositions(ctx context.Context) ([]model.Position, error) {
	return s.positionRepo.GetAllPositions(ctx)
}

// GetTrades returns the asset trade journal, newest first.
func (s *PositionService) GetTrades(ctx context.Context) ([]model.AssetTrade, error) {
	return s.tradeRepo.GetTrades(ctx)
}

// RecordTrade validates and journals one executed trade, applying its cash
// flow to the fund's cash line in the same transaction. A buy for a ticker
// the fund has never held creates an empty Stock position first, so the
// next settlement run can fold the trade in.
//
// Oversells are rejected here, before any mutation: quantity held (plus
// nothing, since unsettled sells are not netted against unsettled buys of
// the same run) must cover the sale.
func (s *PositionService) RecordTrade(ctx context.Context, req request.CreateAssetTradeRequest) (*model.AssetTrade, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return nil, apperrors.ErrEmptyTicker
	}
	if req.Quantity <= 0 {
		return nil, apperrors.ErrInvalidQuantity
	}
	if req.Price <= 0 {
		return nil, apperrors.ErrInvalidPrice
	}

	side := req.Side
	if side != model.SideBuy && side != model.SideSell {
		return nil, apperrors.ErrInvalidSide
	}

	tradeDate := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid trade date: %w", err)
		}
		tradeDate = parsed
	}

	needSeed := false
	pos, err := s.positionRepo.GetPosition(ctx, ticker)
	switch {
	case err == apperrors.ErrPositionNotFound:
		if side == model.SideSell {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrInsufficientHoldings, ticker)
		}
		needSeed = true
	case err != nil:
		return nil, err
	case side == model.SideSell && req.Quantity > pos.Quantity:
		return nil, fmt.Errorf("%w: %s (held %.4f, requested %.4f)",
			apperrors.ErrInsufficientHoldings, ticker, pos.Quantity, req.Quantity)
	}

	trade := model.AssetTrade{
		ID:        uuid.New().String(),
		TradeDate: tradeDate,
		Ticker:    ticker,
		Side:      side,
		Quantity:  req.Quantity,
		Price:     req.Price,
		CashFlow:  tradeCashFlow(side, req.Quantity, req.Price),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin trade transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if needSeed {
		// First acquisition of a new ticker seeds an empty position row.
		seed := model.Position{
			Ticker:    ticker,
			AssetType: model.AssetTypeStock,
			PriceDate: tradeDate,
		}
		if err := s.positionRepo.WithTx(tx).InsertPosition(ctx, seed); err != nil {
			return nil, err
		}
	}

	if err := s.tradeRepo.WithTx(tx).InsertTrade(ctx, trade); err != nil {
		return nil, err
	}

	if err := s.positionRepo.WithTx(tx).AdjustCashValue(ctx, s.cashTicker, trade.CashFlow); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit trade transaction: %w", err)
	}

	return &trade, nil
}

// Settle folds all trades dated on or after the last settlement watermark
// into their positions. Only touched tickers are rewritten; everything else
// is left alone. The whole run is one transaction: an oversell anywhere
// rolls back the entire settlement.
//
// The watermark is max(position.price_date), which only moves when the
// daily price refresh runs. Settlement assumes the daily flow (refresh
// prices, then settle, once per day): rerunning it before the next refresh
// re-applies the same trades.
func (s *PositionService) Settle(ctx context.Context) ([]model.Position, error) {
	since, err := s.positionRepo.GetLastSettlementDate(ctx)
	if err != nil {
		return nil, err
	}

	aggregates, err := s.tradeRepo.AggregateSince(ctx, since)
	if err != nil {
		return nil, err
	}

	if len(aggregates) == 0 {
		return []model.Position{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	positionRepo := s.positionRepo.WithTx(tx)

	updated := []model.Position{}
	for _, agg := range aggregates {
		pos, err := positionRepo.GetPosition(ctx, agg.Ticker)
		if err != nil {
			return nil, fmt.Errorf("settlement aggregate for unknown position %s: %w", agg.Ticker, err)
		}

		// The cash line is moved at trade time, not settled.
		if pos.AssetType == model.AssetTypeCash {
			continue
		}

		settled, err := applySettlement(pos, agg)
		if err != nil {
			return nil, err
		}

		if err := positionRepo.UpdatePosition(ctx, settled); err != nil {
			return nil, err
		}
		updated = append(updated, settled)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement transaction: %w", err)
	}

	return updated, nil
}
