package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrInvestorNotFound indicates that an investor with the given ID does not exist.
	ErrInvestorNotFound = errors.New("investor not found")

	// ErrPositionNotFound indicates that a position with the given ticker does not exist.
	ErrPositionNotFound = errors.New("position not found")

	// ErrCashPositionNotFound indicates that the fund's cash position row is missing.
	ErrCashPositionNotFound = errors.New("cash position not found")

	// ErrRequestNotFound indicates that a fund-share request with the given ID does not exist.
	ErrRequestNotFound = errors.New("fund-share request not found")

	// ErrValuationNotFound indicates that a valuation record for the given date does not exist.
	ErrValuationNotFound = errors.New("valuation not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidAmount indicates a non-positive subscription amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidUnits indicates a non-positive unit quantity.
	ErrInvalidUnits = errors.New("units must be positive")

	// ErrInvalidQuantity indicates a non-positive trade quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidPrice indicates a non-positive trade price.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrEmptyTicker indicates that a required ticker parameter is empty.
	ErrEmptyTicker = errors.New("ticker cannot be empty")

	// ErrInvalidSide indicates a trade side other than Buy or Sell.
	ErrInvalidSide = errors.New("side must be Buy or Sell")

	// ErrInsufficientHoldings indicates that a sell trade exceeds the held quantity.
	ErrInsufficientHoldings = errors.New("insufficient holdings for sale")

	// ErrInsufficientUnits indicates that a redemption exceeds the investor's unit balance.
	ErrInsufficientUnits = errors.New("insufficient fund units for redemption")

	// ErrInsufficientFundCash indicates that the fund cannot cover a redemption payout.
	ErrInsufficientFundCash = errors.New("fund does not have enough cash")

	// ErrNegativeQuantity indicates that settlement would drive a position below zero.
	ErrNegativeQuantity = errors.New("settlement would produce a negative quantity")

	// ErrNoValuation indicates that no valuation record exists to price fund shares.
	ErrNoValuation = errors.New("no valuation available")

	// ErrNoUnitsOutstanding indicates that the per-unit price is undefined
	// because no fund units are outstanding.
	ErrNoUnitsOutstanding = errors.New("no fund units outstanding")

	// ErrValuationExists indicates that a valuation record already exists for the date.
	ErrValuationExists = errors.New("valuation already exists for date")

	// ErrRequestAlreadyProcessed indicates that a fund-share request is no longer pending.
	ErrRequestAlreadyProcessed = errors.New("request already processed")

	// ErrForbidden indicates that the caller's role does not permit the operation.
	ErrForbidden = errors.New("operation not permitted for caller")
)

// External source errors represent failures of collaborators outside the core.
var (
	// ErrPriceSourceUnavailable indicates that the market price provider
	// returned no usable data for an instrument.
	ErrPriceSourceUnavailable = errors.New("price source unavailable")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrievePositions  = errors.New("failed to retrieve positions")
	ErrFailedToRetrieveValuations = errors.New("failed to retrieve valuations")
	ErrFailedToRetrieveCosts      = errors.New("failed to retrieve cost entries")
	ErrFailedToRetrieveInvestors  = errors.New("failed to retrieve investors")
	ErrFailedToRetrieveTrades     = errors.New("failed to retrieve trades")
	ErrFailedToRetrieveSnapshots  = errors.New("failed to retrieve snapshots")
	ErrFailedToRetrieveRequests   = errors.New("failed to retrieve fund-share requests")
)
