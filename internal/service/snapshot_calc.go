package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/quantora/fund-management-backend/internal/model"
)

// buildSnapshots rolls positions up into category rows: one Total row, one
// row per non-cash asset class, and one Cash row.
//
// Cash contributes its net value to both invested and market value, and
// carries no profit; every other position contributes cost-basis value to
// invested and market-price value to market value. The Total row's weight
// is 1 by construction; category weights are shares of total market value.
func buildSnapshots(positions []model.Position, now time.Time) []model.Snapshot {
	type bucket struct {
		invested float64
		market   float64
	}

	total := bucket{}
	cash := bucket{}
	byClass := map[string]bucket{}

	for _, p := range positions {
		if p.AssetType == model.AssetTypeCash {
			cash.invested += p.NetValue
			cash.market += p.NetValue
			total.invested += p.NetValue
			total.market += p.NetValue
			continue
		}

		b := byClass[p.AssetType]
		b.invested += p.AvgCost * p.Quantity
		b.market += p.MarketPrice * p.Quantity
		byClass[p.AssetType] = b

		total.invested += p.AvgCost * p.Quantity
		total.market += p.MarketPrice * p.Quantity
	}

	returnRate := func(b bucket) float64 {
		if b.invested == 0 {
			return 0
		}
		return b.market/b.invested - 1
	}
	weight := func(b bucket) float64 {
		if total.market == 0 {
			return 0
		}
		return b.market / total.market
	}

	snapshots := []model.Snapshot{{
		ID:            uuid.New().String(),
		Category:      model.SnapshotCategoryTotal,
		InvestedValue: total.invested,
		MarketValue:   total.market,
		Profit:        total.market - total.invested,
		ReturnRate:    returnRate(total),
		Weight:        1.0,
		SnapshotTime:  now,
	}}

	// Deterministic category order keeps the rollup stable across runs.
	for _, class := range []string{model.AssetTypeStock, model.AssetTypeBond, model.AssetTypeFundShare} {
		b, ok := byClass[class]
		if !ok {
			continue
		}
		snapshots = append(snapshots, model.Snapshot{
			ID:            uuid.New().String(),
			Category:      class,
			InvestedValue: b.invested,
			MarketValue:   b.market,
			Profit:        b.market - b.invested,
			ReturnRate:    returnRate(b),
			Weight:        weight(b),
			SnapshotTime:  now,
		})
	}

	snapshots = append(snapshots, model.Snapshot{
		ID:            uuid.New().String(),
		Category:      model.AssetTypeCash,
		InvestedValue: cash.invested,
		MarketValue:   cash.market,
		Profit:        0,
		ReturnRate:    0,
		Weight:        weight(cash),
		SnapshotTime:  now,
	})

	return snapshots
}
