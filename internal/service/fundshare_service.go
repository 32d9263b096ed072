package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/config"
	"github.com/quantora/fund-management-backend/internal/model"
	"github.com/quantora/fund-management-backend/internal/repository"
)

// FundShareService is the fund-share ledger: it converts investor money
// into fund units (and back) at the latest per-unit price.
//
// Every subscribe/redeem runs inside a locked scope covering the investor
// row and the fund's cash line for the full read-compute-write, so two
// concurrent trades can never double-spend the same unit balance or cash
// balance. The price lookup happens before the locks are taken; no
// external call is ever made while they are held.
type FundShareService struct {
	db            *sql.DB
	investorRepo  *repository.InvestorRepository
	positionRepo  *repository.PositionRepository
	fsTradeRepo   *repository.FundShareTradeRepository
	requestRepo   *repository.FundShareRequestRepository
	valuationRepo *repository.ValuationRepository
	locks         *lockRegistry
	fund          config.FundConfig
}

// NewFundShareService creates a new FundShareService with the provided repository dependencies.
func NewFundShareService(
	db *sql.DB,
	investorRepo *repository.InvestorRepository,
	positionRepo *repository.PositionRepository,
	fsTradeRepo *repository.FundShareTradeRepository,
	requestRepo *repository.FundShareRequestRepository,
	valuationRepo *repository.ValuationRepository,
	fund config.FundConfig,
) *FundShareService {
	return &FundShareService{
		db:            db,
		investorRepo:  investorRepo,
		positionRepo:  positionRepo,
		fsTradeRepo:   fsTradeRepo,
		requestRepo:   requestRepo,
		valuationRepo: valuationRepo,
		locks:         newLockRegistry(),
		fund:          fund,
	}
}

// latestPrice returns the most recent per-unit price. A valuation whose
// pipeline never completed step 3 carries no price and cannot be traded on.
func (s *FundShareService) latestPrice(ctx context.Context) (float64, error) {
	latest, err := s.valuationRepo.GetLatestValuation(ctx)
	if err != nil {
		return 0, err
	}
	if latest.NavPerUnit <= 0 {
		return 0, apperrors.ErrNoValuation
	}
	return latest.NavPerUnit, nil
}

// Subscribe converts an investor's payment into fund units at the latest
// per-unit price. The fee is withheld up front; the net amount is credited
// to contributed capital and to the fund's cash line, and the issue is
// journaled as a Buy trade.
func (s *FundShareService) Subscribe(ctx context.Context, investorID string, amount float64) (*model.FundShareTrade, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	price, err := s.latestPrice(ctx)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.acquire(ctx, "investor/"+investorID, "cash/"+s.fund.CashTicker)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire ledger locks: %w", err)
	}
	defer release()

	fee, net, units := subscribeQuote(amount, s.fund.TransactionFeeRate, price)

	var trade *model.FundShareTrade
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		investor, err := s.investorRepo.WithTx(tx).GetInvestor(ctx, investorID)
		if err != nil {
			return err
		}

		newUnits := investor.Units + units
		newCapital := investor.Capital + net

		if err := s.investorRepo.WithTx(tx).UpdateBalances(ctx, investorID, newUnits, newCapital); err != nil {
			return err
		}
		if err := s.positionRepo.WithTx(tx).AdjustCashValue(ctx, s.fund.CashTicker, net); err != nil {
			return err
		}

		t := model.FundShareTrade{
			ID:          uuid.New().String(),
			TradeDate:   time.Now().UTC(),
			InvestorID:  investorID,
			Side:        model.SideBuy,
			Units:       units,
			Price:       price,
			Fee:         fee,
			CashFlow:    net,
			UnitBalance: newUnits,
		}
		if err := s.fsTradeRepo.WithTx(tx).InsertTrade(ctx, t); err != nil {
			return err
		}

		trade = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return trade, nil
}

// Redeem retires an investor's units at the latest per-unit price and pays
// the net proceeds out of fund cash. Both the unit balance and the fund's
// cash cover are checked inside the locked scope, before any mutation.
func (s *FundShareService) Redeem(ctx context.Context, investorID string, units float64) (*model.FundShareTrade, error) {
	if units <= 0 {
		return nil, apperrors.ErrInvalidUnits
	}

	price, err := s.latestPrice(ctx)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.acquire(ctx, "investor/"+investorID, "cash/"+s.fund.CashTicker)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire ledger locks: %w", err)
	}
	defer release()

	gross, fee, net := redeemQuote(units, s.fund.TransactionFeeRate, price)

	var trade *model.FundShareTrade
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		investor, err := s.investorRepo.WithTx(tx).GetInvestor(ctx, investorID)
		if err != nil {
			return err
		}

		if units > investor.Units {
			return fmt.Errorf("%w: held %.4f, requested %.4f",
				apperrors.ErrInsufficientUnits, investor.Units, units)
		}

		cash, err := s.positionRepo.WithTx(tx).GetCashPosition(ctx, s.fund.CashTicker)
		if err != nil {
			return err
		}
		if cash.NetValue < net {
			return fmt.Errorf("%w: need %.2f, have %.2f",
				apperrors.ErrInsufficientFundCash, net, cash.NetValue)
		}

		newUnits := investor.Units - units
		newCapital := investor.Capital - gross

		if err := s.investorRepo.WithTx(tx).UpdateBalances(ctx, investorID, newUnits, newCapital); err != nil {
			return err
		}
		if err := s.positionRepo.WithTx(tx).AdjustCashValue(ctx, s.fund.CashTicker, -net); err != nil {
			return err
		}

		t := model.FundShareTrade{
			ID:          uuid.New().String(),
			TradeDate:   time.Now().UTC(),
			InvestorID:  investorID,
			Side:        model.SideSell,
			Units:       units,
			Price:       price,
			Fee:         fee,
			CashFlow:    -net,
			UnitBalance: newUnits,
		}
		if err := s.fsTradeRepo.WithTx(tx).InsertTrade(ctx, t); err != nil {
			return err
		}

		trade = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return trade, nil
}

// inTx runs fn inside a transaction, committing on success.
func (s *FundShareService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger transaction: %w", err)
	}
	return nil
}

// GetTrades returns the fund-share journal, optionally filtered to one investor.
func (s *FundShareService) GetTrades(ctx context.Context, investorID string) ([]model.FundShareTrade, error) {
	return s.fsTradeRepo.GetTrades(ctx, investorID)
}

// FileRequest records a pending subscribe/redeem request quoted at the
// current per-unit price, for an admin to approve or reject.
func (s *FundShareService) FileRequest(ctx context.Context, investorID, side string, amount, units float64) (*model.FundShareRequest, error) {
	if side != model.SideBuy && side != model.SideSell {
		return nil, apperrors.ErrInvalidSide
	}

	if _, err := s.investorRepo.GetInvestor(ctx, investorID); err != nil {
		return nil, err
	}

	price, err := s.latestPrice(ctx)
	if err != nil {
		return nil, err
	}

	req := model.FundShareRequest{
		ID:         uuid.New().String(),
		InvestorID: investorID,
		Side:       side,
		Price:      price,
		Status:     model.RequestStatusPending,
	}

	switch side {
	case model.SideBuy:
		if amount <= 0 {
			return nil, apperrors.ErrInvalidAmount
		}
		req.Amount = amount
		req.Fee, _, _ = subscribeQuote(amount, s.fund.TransactionFeeRate, price)
	case model.SideSell:
		if units <= 0 {
			return nil, apperrors.ErrInvalidUnits
		}
		req.Units = units
		_, req.Fee, _ = redeemQuote(units, s.fund.TransactionFeeRate, price)
	}

	if err := s.requestRepo.InsertRequest(ctx, req); err != nil {
		return nil, err
	}

	return &req, nil
}

// GetPendingRequests returns all requests awaiting a decision.
func (s *FundShareService) GetPendingRequests(ctx context.Context) ([]model.FundShareRequest, error) {
	return s.requestRepo.GetRequests(ctx, model.RequestStatusPending)
}

// ApproveRequest settles a pending request through the ledger and marks it
// SUCCESS. The trade executes at the latest per-unit price, not the price
// quoted when the request was filed.
func (s *FundShareService) ApproveRequest(ctx context.Context, requestID string) (*model.FundShareTrade, error) {
	req, err := s.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestStatusPending {
		return nil, apperrors.ErrRequestAlreadyProcessed
	}

	var trade *model.FundShareTrade
	if req.Side == model.SideBuy {
		trade, err = s.Subscribe(ctx, req.InvestorID, req.Amount)
	} else {
		trade, err = s.Redeem(ctx, req.InvestorID, req.Units)
	}
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.UpdateStatus(ctx, requestID, model.RequestStatusSuccess, time.Now()); err != nil {
		return nil, err
	}

	return trade, nil
}

// RejectRequest marks a pending request REJECTED without touching balances.
func (s *FundShareService) RejectRequest(ctx context.Context, requestID string) error {
	req, err := s.requestRepo.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != model.RequestStatusPending {
		return apperrors.ErrRequestAlreadyProcessed
	}

	return s.requestRepo.UpdateStatus(ctx, requestID, model.RequestStatusRejected, time.Now())
}
