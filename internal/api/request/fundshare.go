package request

// SubscribeRequest is the body for a direct fund-share subscription.
type SubscribeRequest struct {
	InvestorID string  `json:"investorId"`
	Amount     float64 `json:"amount"`
}

// RedeemRequest is the body for a direct fund-share redemption.
type RedeemRequest struct {
	InvestorID string  `json:"investorId"`
	Units      float64 `json:"units"`
}

// CreateFundShareRequest is the body for filing a subscribe/redeem request
// for admin approval. Amount is required for Buy, Units for Sell.
type CreateFundShareRequest struct {
	InvestorID string  `json:"investorId"`
	Side       string  `json:"side"`
	Amount     float64 `json:"amount,omitempty"`
	Units      float64 `json:"units,omitempty"`
}
