package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/quantora/fund-management-backend/internal/model"
)

// PositionBuilder provides a fluent interface for creating test positions.
//
// Example usage:
//
//	// Simple creation with defaults
//	position := testutil.NewPosition("VNM").Build(t, db)
//
//	// Customized position
//	position := testutil.NewPosition("VNM").
//	    WithQuantity(100).
//	    WithAvgCost(50).
//	    WithMarketPrice(55).
//	    Build(t, db)
type PositionBuilder struct {
	Ticker      string
	AssetName   string
	AssetType   string
	Quantity    float64
	AvgCost     float64
	MarketPrice float64
	NetValue    float64
	PriceDate   time.Time
}

// NewPosition creates a PositionBuilder with sensible defaults.
func NewPosition(ticker string) *PositionBuilder {
	return &PositionBuilder{
		Ticker:    ticker,
		AssetName: ticker + " Test Asset",
		AssetType: model.AssetTypeStock,
		PriceDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WithAssetType sets a custom asset type.
func (b *PositionBuilder) WithAssetType(assetType string) *PositionBuilder {
	b.AssetType = assetType
	return b
}

// WithQuantity sets a custom quantity.
func (b *PositionBuilder) WithQuantity(qty float64) *PositionBuilder {
	b.Quantity = qty
	return b
}

// WithAvgCost sets a custom weighted-average cost.
func (b *PositionBuilder) WithAvgCost(cost float64) *PositionBuilder {
	b.AvgCost = cost
	return b
}

// WithMarketPrice sets a custom market price.
func (b *PositionBuilder) WithMarketPrice(price float64) *PositionBuilder {
	b.MarketPrice = price
	return b
}

// WithNetValue sets a custom net value. For cash positions this is the balance.
func (b *PositionBuilder) WithNetValue(value float64) *PositionBuilder {
	b.NetValue = value
	return b
}

// WithPriceDate sets a custom price date.
func (b *PositionBuilder) WithPriceDate(date time.Time) *PositionBuilder {
	b.PriceDate = date
	return b
}

// Build creates the position in the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	netValue := b.NetValue
	if netValue == 0 && b.AssetType != model.AssetTypeCash {
		netValue = b.Quantity * b.MarketPrice
	}

	unrealized := 0.0
	if b.AvgCost > 0 {
		unrealized = (b.MarketPrice - b.AvgCost) / b.AvgCost
	}

	query := `
		INSERT INTO position (ticker, asset_name, asset_type, quantity, avg_cost, market_price, net_value, unrealized_return, price_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.Ticker, b.AssetName, b.AssetType, b.Quantity, b.AvgCost,
		b.MarketPrice, netValue, unrealized, b.PriceDate.Format("2006-01-02"),
	)
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return model.Position{
		Ticker:           b.Ticker,
		AssetName:        b.AssetName,
		AssetType:        b.AssetType,
		Quantity:         b.Quantity,
		AvgCost:          b.AvgCost,
		MarketPrice:      b.MarketPrice,
		NetValue:         netValue,
		UnrealizedReturn: unrealized,
		PriceDate:        b.PriceDate,
	}
}

// CreateCashPosition creates the fund's cash line with the given balance.
func CreateCashPosition(t *testing.T, db *sql.DB, ticker string, balance float64) model.Position {
	t.Helper()
	return NewPosition(ticker).
		WithAssetType(model.AssetTypeCash).
		WithQuantity(1).
		WithNetValue(balance).
		Build(t, db)
}

// InvestorBuilder provides a fluent interface for creating test investors.
type InvestorBuilder struct {
	ID       string
	Name     string
	Email    string
	Units    float64
	Capital  float64
	Status   string
	OpenDate time.Time
}

// NewInvestor creates an InvestorBuilder with sensible defaults.
func NewInvestor() *InvestorBuilder {
	return &InvestorBuilder{
		ID:       MakeID(),
		Name:     "Test Investor",
		Email:    "investor@example.com",
		Status:   "active",
		OpenDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// WithID sets a custom ID.
func (b *InvestorBuilder) WithID(id string) *InvestorBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *InvestorBuilder) WithName(name string) *InvestorBuilder {
	b.Name = name
	return b
}

// WithUnits sets a custom unit balance.
func (b *InvestorBuilder) WithUnits(units float64) *InvestorBuilder {
	b.Units = units
	return b
}

// WithCapital sets a custom contributed capital balance.
func (b *InvestorBuilder) WithCapital(capital float64) *InvestorBuilder {
	b.Capital = capital
	return b
}

// Build creates the investor in the database and returns it.
func (b *InvestorBuilder) Build(t *testing.T, db *sql.DB) model.Investor {
	t.Helper()

	query := `
		INSERT INTO investor (id, name, email, units, capital, status, open_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.Name, b.Email, b.Units, b.Capital, b.Status, b.OpenDate.Format("2006-01-02"),
	)
	if err != nil {
		t.Fatalf("Failed to create test investor: %v", err)
	}

	return model.Investor{
		ID:       b.ID,
		Name:     b.Name,
		Email:    b.Email,
		Units:    b.Units,
		Capital:  b.Capital,
		Status:   b.Status,
		OpenDate: b.OpenDate,
	}
}

// ValuationBuilder provides a fluent interface for creating test valuations.
type ValuationBuilder struct {
	ID         string
	NavDate    time.Time
	GrossValue float64
	TotalCost  float64
	NetValue   float64
	TotalUnits float64
	NavPerUnit float64
}

// NewValuation creates a ValuationBuilder with sensible defaults:
// a completed valuation pricing units at 1000.
func NewValuation(navDate time.Time) *ValuationBuilder {
	return &ValuationBuilder{
		ID:         MakeID(),
		NavDate:    navDate,
		GrossValue: 1_000_000,
		NetValue:   1_000_000,
		TotalUnits: 1_000,
		NavPerUnit: 1_000,
	}
}

// WithGrossValue sets a custom gross value.
func (b *ValuationBuilder) WithGrossValue(gross float64) *ValuationBuilder {
	b.GrossValue = gross
	return b
}

// WithNavPerUnit sets a custom per-unit price.
func (b *ValuationBuilder) WithNavPerUnit(nav float64) *ValuationBuilder {
	b.NavPerUnit = nav
	return b
}

// WithTotalUnits sets a custom units-outstanding count.
func (b *ValuationBuilder) WithTotalUnits(units float64) *ValuationBuilder {
	b.TotalUnits = units
	return b
}

// Incomplete clears the step-3 fields, modeling a valuation whose pipeline
// never finished.
func (b *ValuationBuilder) Incomplete() *ValuationBuilder {
	b.TotalCost = 0
	b.NetValue = 0
	b.TotalUnits = 0
	b.NavPerUnit = 0
	return b
}

// Build creates the valuation in the database and returns it.
func (b *ValuationBuilder) Build(t *testing.T, db *sql.DB) model.Valuation {
	t.Helper()

	query := `
		INSERT INTO valuation (id, nav_date, gross_value, total_cost, net_value, total_units, nav_per_unit)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.NavDate.Format("2006-01-02"), b.GrossValue, b.TotalCost,
		b.NetValue, b.TotalUnits, b.NavPerUnit,
	)
	if err != nil {
		t.Fatalf("Failed to create test valuation: %v", err)
	}

	return model.Valuation{
		ID:         b.ID,
		NavDate:    b.NavDate,
		GrossValue: b.GrossValue,
		TotalCost:  b.TotalCost,
		NetValue:   b.NetValue,
		TotalUnits: b.TotalUnits,
		NavPerUnit: b.NavPerUnit,
	}
}

// CreateAssetTrade inserts one asset trade row directly.
func CreateAssetTrade(t *testing.T, db *sql.DB, ticker, side string, qty, price float64, date time.Time) model.AssetTrade {
	t.Helper()

	cashFlow := -qty * price
	if side == model.SideSell {
		cashFlow = qty * price
	}

	trade := model.AssetTrade{
		ID:        MakeID(),
		TradeDate: date,
		Ticker:    ticker,
		Side:      side,
		Quantity:  qty,
		Price:     price,
		CashFlow:  cashFlow,
	}

	query := `
		INSERT INTO asset_trade (id, trade_date, ticker, side, quantity, price, cash_flow)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		trade.ID, trade.TradeDate.Format("2006-01-02"), trade.Ticker,
		trade.Side, trade.Quantity, trade.Price, trade.CashFlow,
	)
	if err != nil {
		t.Fatalf("Failed to create test asset trade: %v", err)
	}

	return trade
}

// CreateFundShareTrade inserts one fund-share trade row directly.
func CreateFundShareTrade(t *testing.T, db *sql.DB, investorID, side string, units, price, cashFlow float64, date time.Time) model.FundShareTrade {
	t.Helper()

	trade := model.FundShareTrade{
		ID:         MakeID(),
		TradeDate:  date,
		InvestorID: investorID,
		Side:       side,
		Units:      units,
		Price:      price,
		CashFlow:   cashFlow,
	}

	query := `
		INSERT INTO fundshare_trade (id, trade_date, investor_id, side, units, price, fee, cash_flow, unit_balance)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`

	_, err := db.Exec(query,
		trade.ID, trade.TradeDate.Format("2006-01-02"), trade.InvestorID,
		trade.Side, trade.Units, trade.Price, trade.CashFlow, trade.Units,
	)
	if err != nil {
		t.Fatalf("Failed to create test fund-share trade: %v", err)
	}

	return trade
}
