package service

import (
	"fmt"

	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/model"
)

// applySettlement folds one ticker's aggregated unsettled trades into its
// position row and returns the updated row. The calculation is pure so the
// arithmetic can be tested without a store.
//
// Rules:
//   - new quantity = quantity + buys - sells; a negative result is an
//     oversell that should have been rejected upstream and fails here
//     rather than being clamped.
//   - cost basis is a quantity-weighted blend of the prior basis and the
//     buy value; sells never move the cost basis.
//   - net value and unrealized return are re-derived from the current
//     market price.
func applySettlement(pos model.Position, agg model.TradeAggregate) (model.Position, error) {
	newQty := pos.Quantity + agg.BuyQty - agg.SellQty
	if newQty < 0 {
		return model.Position{}, fmt.Errorf("%w: %s (held %.4f, sold %.4f)",
			apperrors.ErrNegativeQuantity, pos.Ticker, pos.Quantity+agg.BuyQty, agg.SellQty)
	}

	newCost := pos.AvgCost
	if agg.BuyQty > 0 {
		newCost = (pos.AvgCost*pos.Quantity + agg.BuyValue) / (pos.Quantity + agg.BuyQty)
	}

	pos.Quantity = newQty
	pos.AvgCost = newCost
	pos.NetValue = newQty * pos.MarketPrice
	if newCost > 0 {
		pos.UnrealizedReturn = (pos.MarketPrice - newCost) / newCost
	} else {
		pos.UnrealizedReturn = 0
	}

	return pos, nil
}

// tradeCashFlow is the signed cash movement of one asset trade:
// buys consume cash, sells release it.
func tradeCashFlow(side string, quantity, price float64) float64 {
	if side == model.SideBuy {
		return -quantity * price
	}
	return quantity * price
}
