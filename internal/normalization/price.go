package normalization

import (
	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/domain"
)

// PriceChoice is the outcome of choosing a leg's usable price.
type PriceChoice struct {
	Price    decimal.Decimal // zero when no price is usable
	Deviated bool            // unit and nearest prices disagreed beyond the ratio
}

// Usable reports whether a positive price was found.
func (c PriceChoice) Usable() bool {
	return c.Price.IsPositive()
}

// ChoosePrice picks a leg's price from its unit and nearest quotes.
// When both are positive and max/min exceeds ratio, the nearest quote wins.
// Otherwise the unit price is preferred, then the nearest price.
func ChoosePrice(leg *domain.AssetLeg, ratio decimal.Decimal) PriceChoice {
	unit, nearest := leg.UnitPrice, leg.NearestPrice

	if unit.IsPositive() && nearest.IsPositive() {
		hi, lo := decimal.Max(unit, nearest), decimal.Min(unit, nearest)
		if hi.Div(lo).GreaterThan(ratio) {
			return PriceChoice{Price: nearest, Deviated: true}
		}
		return PriceChoice{Price: unit}
	}
	if nearest.IsPositive() {
		return PriceChoice{Price: nearest}
	}
	if unit.IsPositive() {
		return PriceChoice{Price: unit}
	}
	return PriceChoice{Price: decimal.Zero}
}
