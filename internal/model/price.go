package model

import "time"

// PriceQuote is a closing price delivered by the market price provider.
type PriceQuote struct {
	Ticker     string    `json:"ticker"`
	ClosePrice float64   `json:"closePrice"`
	PriceDate  time.Time `json:"priceDate"`
	Source     string    `json:"source"`
}

// PriceUpdateFailure records one instrument whose price refresh failed.
type PriceUpdateFailure struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// PriceUpdateResult is the structured partial result of a batch price
// refresh: successes are committed individually, failures are collected
// and reported without aborting the batch.
type PriceUpdateResult struct {
	Updated []PriceQuote         `json:"updated"`
	Failed  []PriceUpdateFailure `json:"failed"`
}
