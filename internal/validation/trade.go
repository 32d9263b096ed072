package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantora/fund-management-backend/internal/api/request"
	"github.com/quantora/fund-management-backend/internal/model"
)

// ValidTradeSide contains the allowed trade side values.
var ValidTradeSide = map[string]bool{
	model.SideBuy: true, model.SideSell: true,
}

// ValidateCreateAssetTrade validates an asset trade creation request.
//
// Required fields:
//   - ticker: Must be non-empty
//   - side: Must be Buy or Sell
//   - quantity: Must be positive
//   - price: Must be positive
//   - date: Must be in YYYY-MM-DD format if provided
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateAssetTrade(req request.CreateAssetTradeRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required"
	}

	if strings.TrimSpace(req.Side) == "" {
		errors["side"] = "side is required"
	} else if !ValidTradeSide[req.Side] {
		errors["side"] = fmt.Sprintf("invalid side: %s", req.Side)
	}

	if req.Quantity <= 0.0 {
		errors["quantity"] = "quantity must be positive"
	}

	if req.Price <= 0.0 {
		errors["price"] = "price must be positive"
	}

	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			errors["date"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
