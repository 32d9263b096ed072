package model

import "time"

// FundShareTrade is the append-only audit record of one settled subscribe
// or redeem. Cash flow is positive when the fund receives money (Buy) and
// negative when it pays out (Sell).
type FundShareTrade struct {
	ID          string    `json:"id"`
	TradeDate   time.Time `json:"tradeDate"`
	InvestorID  string    `json:"investorId"`
	Side        string    `json:"side"`
	Units       float64   `json:"units"`
	Price       float64   `json:"price"` // NAV per unit applied to the trade
	Fee         float64   `json:"fee"`
	CashFlow    float64   `json:"cashFlow"`
	UnitBalance float64   `json:"unitBalance"` // Investor's unit balance after the trade
	CreatedAt   time.Time `json:"createdAt"`
}

// Fund-share request status values.
const (
	RequestStatusPending  = "PENDING"
	RequestStatusSuccess  = "SUCCESS"
	RequestStatusRejected = "REJECTED"
)

// FundShareRequest is a subscribe/redeem request filed by an investor and
// settled (or rejected) by an admin. Amount is set for Buy requests, Units
// for Sell requests; price and fee are the quote shown at filing time.
type FundShareRequest struct {
	ID          string     `json:"id"`
	InvestorID  string     `json:"investorId"`
	Side        string     `json:"side"`
	Amount      float64    `json:"amount"`
	Units       float64    `json:"units"`
	Price       float64    `json:"price"`
	Fee         float64    `json:"fee"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}
