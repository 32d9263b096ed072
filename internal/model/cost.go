package model

import "time"

// Cost entry type values.
const (
	CostTypeManagement  = "management_fee"
	CostTypeTransaction = "transaction_fee"
)

// CostEntry is one accrued cost, unique per (date, type). Recomputing fees
// for a date replaces at most the same-date entry; other dates are never
// touched.
type CostEntry struct {
	ID        string    `json:"id"`
	CostDate  time.Time `json:"costDate"`
	CostType  string    `json:"costType"`
	Amount    float64   `json:"amount"`
	Rate      float64   `json:"rate"`
	CreatedAt time.Time `json:"createdAt"`
}
