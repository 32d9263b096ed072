package validation

import (
	"fmt"
	"strings"

	"github.com/quantora/fund-management-backend/internal/api/request"
	"github.com/quantora/fund-management-backend/internal/model"
)

// ValidateSubscribe validates a direct subscription request.
func ValidateSubscribe(req request.SubscribeRequest) error {
	if err := ValidateUUID(req.InvestorID); err != nil {
		return err
	}

	errors := make(map[string]string)
	if req.Amount <= 0.0 {
		errors["amount"] = "amount must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateRedeem validates a direct redemption request.
func ValidateRedeem(req request.RedeemRequest) error {
	if err := ValidateUUID(req.InvestorID); err != nil {
		return err
	}

	errors := make(map[string]string)
	if req.Units <= 0.0 {
		errors["units"] = "units must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateCreateFundShareRequest validates a request filed for admin
// approval: Buy requests must carry an amount, Sell requests a unit count.
func ValidateCreateFundShareRequest(req request.CreateFundShareRequest) error {
	if err := ValidateUUID(req.InvestorID); err != nil {
		return err
	}

	errors := make(map[string]string)

	switch {
	case strings.TrimSpace(req.Side) == "":
		errors["side"] = "side is required"
	case !ValidTradeSide[req.Side]:
		errors["side"] = fmt.Sprintf("invalid side: %s", req.Side)
	case req.Side == model.SideBuy && req.Amount <= 0.0:
		errors["amount"] = "amount must be positive"
	case req.Side == model.SideSell && req.Units <= 0.0:
		errors["units"] = "units must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
