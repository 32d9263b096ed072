package model

import "time"

// Investor is a capital account in the fund-share ledger. Units and capital
// are mutated only inside a locked fund-share transaction.
type Investor struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Units    float64   `json:"units"`
	Capital  float64   `json:"capital"` // Contributed capital, net of fees
	Status   string    `json:"status"`
	OpenDate time.Time `json:"openDate"`
}

// InvestorSummary is the read-side view of one investor's stake:
// current unit balance valued at the latest NAV, against contributed capital.
type InvestorSummary struct {
	InvestorID  string  `json:"investorId"`
	Name        string  `json:"name"`
	Units       float64 `json:"units"`
	Capital     float64 `json:"capital"`
	NavPerUnit  float64 `json:"navPerUnit"`
	MarketValue float64 `json:"marketValue"`
	Profit      float64 `json:"profit"`
	ROI         float64 `json:"roi"`
}
