package model

import "time"

// Trade side values shared by asset trades and fund-share trades.
const (
	SideBuy  = "Buy"
	SideSell = "Sell"
)

// AssetTrade is an immutable record of one executed trade against the
// fund's portfolio. Cash flow is negative for buys and positive for sells.
type AssetTrade struct {
	ID        string    `json:"id"`
	TradeDate time.Time `json:"tradeDate"`
	Ticker    string    `json:"ticker"`
	Side      string    `json:"side"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price"`
	CashFlow  float64   `json:"cashFlow"`
	CreatedAt time.Time `json:"createdAt"`
}

// TradeAggregate sums a ticker's unsettled trades for position settlement.
type TradeAggregate struct {
	Ticker   string
	BuyQty   float64
	SellQty  float64
	BuyValue float64
}
