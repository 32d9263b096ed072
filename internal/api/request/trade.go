package request

// CreateAssetTradeRequest is the body for recording an executed asset trade.
// Date is optional; when empty the trade is stamped with the current date.
type CreateAssetTradeRequest struct {
	Ticker   string  `json:"ticker"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Date     string  `json:"date,omitempty"`
}
