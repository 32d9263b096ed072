package model

import "time"

// Snapshot category for the aggregate row.
const SnapshotCategoryTotal = "Total"

// Snapshot is one category-level rollup row. The snapshot table is fully
// recomputed on every aggregation run, not maintained incrementally.
type Snapshot struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	InvestedValue float64   `json:"investedValue"`
	MarketValue   float64   `json:"marketValue"`
	Profit        float64   `json:"profit"`
	ReturnRate    float64   `json:"returnRate"` // marketValue/investedValue - 1
	Weight        float64   `json:"weight"`     // category market value / total market value
	SnapshotTime  time.Time `json:"snapshotTime"`
}

// FundInfo is the admin-facing fund overview: cash on hand, units in
// circulation, and overall invested/market value.
type FundInfo struct {
	CashBalance   float64 `json:"cashBalance"`
	TotalUnits    float64 `json:"totalUnits"`
	InvestedValue float64 `json:"investedValue"`
	MarketValue   float64 `json:"marketValue"`
	Profit        float64 `json:"profit"`
	Return        float64 `json:"return"`
}
