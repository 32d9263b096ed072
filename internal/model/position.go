package model

import "time"

// Asset type values used in the position table.
const (
	AssetTypeStock     = "Stock"
	AssetTypeBond      = "Bond"
	AssetTypeFundShare = "Fund share"
	AssetTypeCash      = "Cash"
)

// Position represents one instrument held by the fund. A position row is
// created on first acquisition and never deleted; settlement overwrites the
// quantity, cost basis, and derived values in place.
type Position struct {
	Ticker           string    `json:"ticker"`
	AssetName        string    `json:"assetName"`
	AssetType        string    `json:"assetType"`
	Quantity         float64   `json:"quantity"`
	AvgCost          float64   `json:"avgCost"` // Weighted-average cost basis
	MarketPrice      float64   `json:"marketPrice"`
	NetValue         float64   `json:"netValue"`          // quantity * marketPrice (cash: the cash balance)
	UnrealizedReturn float64   `json:"unrealizedReturn"`  // (marketPrice - avgCost) / avgCost
	PriceDate        time.Time `json:"priceDate"`
}
