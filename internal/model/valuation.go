package model

import "time"

// Valuation is the fund's NAV record for a single date. Step 1 of the
// pipeline creates the row with the gross value; step 3 completes it in
// place with costs, units outstanding, and the per-unit price.
type Valuation struct {
	ID         string    `json:"id"`
	NavDate    time.Time `json:"navDate"`
	GrossValue float64   `json:"grossValue"`
	TotalCost  float64   `json:"totalCost"`
	NetValue   float64   `json:"netValue"`
	TotalUnits float64   `json:"totalUnits"`
	NavPerUnit float64   `json:"navPerUnit"`
	CreatedAt  time.Time `json:"createdAt"`
}
