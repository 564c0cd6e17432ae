// Package events converts direction-resolved trades into BUY/SELL accounting
// events valued in the settlement currency.
package events

import (
	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/config"
	"solana-wallet-pnl/internal/diagnostics"
	"solana-wallet-pnl/internal/domain"
)

// Generator emits financial events for resolved trades.
type Generator struct {
	cfg  config.Config
	diag diagnostics.Recorder
}

// NewGenerator creates a generator bound to an immutable config.
// A nil recorder discards diagnostics.
func NewGenerator(cfg config.Config, diag diagnostics.Recorder) *Generator {
	if diag == nil {
		diag = diagnostics.Discard
	}
	return &Generator{cfg: cfg, diag: diag}
}

// leg is one asset of a trade side with its market value, if known.
type leg struct {
	domain.AssetAmount
	value     decimal.Decimal
	priced    bool
	numeraire bool
}

// GenerateAll converts every trade and returns the events in ledger order.
func (g *Generator) GenerateAll(trades []domain.ResolvedTrade) []domain.FinancialEvent {
	var out []domain.FinancialEvent
	for i := range trades {
		out = append(out, g.Generate(&trades[i])...)
	}
	SortEvents(out)
	return out
}

// Generate converts one resolved trade into events.
//
// The trade's settlement value is fixed once:
//   - the numeraire amount times the numeraire price, when the numeraire is
//     alone on its side
//   - otherwise the given-up side at market prices, when all are known
//   - otherwise the received side at market prices, when all are known
//   - otherwise zero, flagged as unknown
//
// Each side then shares that value among its assets by market value, and the
// numeraire itself never produces an event. Sells are sequenced before buys.
func (g *Generator) Generate(trade *domain.ResolvedTrade) []domain.FinancialEvent {
	givenUp := g.legs(trade, trade.GivenUp)
	received := g.legs(trade, trade.Received)

	total, source := g.settlementValue(givenUp, received)
	unknown := source == domain.ValueSourceNone
	if unknown {
		g.diag.Record(domain.DiagMissingPrice, trade.TxID, "",
			"no usable price on either side, events valued at zero")
	}

	events := make([]domain.FinancialEvent, 0, len(givenUp)+len(received))
	events = g.emit(events, trade, domain.EventTypeSell, givenUp, total, source, unknown)
	events = g.emit(events, trade, domain.EventTypeBuy, received, total, source, unknown)
	return events
}

// legs prices each asset of a side.
func (g *Generator) legs(trade *domain.ResolvedTrade, side []domain.AssetAmount) []leg {
	out := make([]leg, 0, len(side))
	for _, a := range side {
		l := leg{AssetAmount: a, numeraire: g.cfg.IsNumeraire(a.AssetID)}
		if p, ok := g.price(trade, a.AssetID, l.numeraire); ok {
			l.value = a.Amount.Mul(p)
			l.priced = true
		}
		out = append(out, l)
	}
	return out
}

// price returns the asset's own price from the trade or the configured
// fallback for that same asset.
func (g *Generator) price(trade *domain.ResolvedTrade, assetID string, numeraire bool) (decimal.Decimal, bool) {
	if numeraire && g.cfg.NumeraireFixedPrice.Valid {
		return g.cfg.NumeraireFixedPrice.Decimal, true
	}
	if p, ok := trade.Price(assetID); ok {
		return p, true
	}
	return g.cfg.FallbackPrice(assetID)
}

func (g *Generator) settlementValue(givenUp, received []leg) (decimal.Decimal, domain.ValueSource) {
	for _, side := range [][]leg{givenUp, received} {
		if len(side) == 1 && side[0].numeraire && side[0].priced {
			return side[0].value, domain.ValueSourceNumeraire
		}
	}
	if v, ok := sideValue(givenUp); ok {
		return v, domain.ValueSourceGivenUp
	}
	if v, ok := sideValue(received); ok {
		return v, domain.ValueSourceReceived
	}
	return decimal.Zero, domain.ValueSourceNone
}

// sideValue sums a side's market value when every asset on it is priced.
func sideValue(side []leg) (decimal.Decimal, bool) {
	if len(side) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, l := range side {
		if !l.priced {
			return decimal.Zero, false
		}
		sum = sum.Add(l.value)
	}
	return sum, true
}

// emit appends one event per non-numeraire asset of a side.
func (g *Generator) emit(
	events []domain.FinancialEvent,
	trade *domain.ResolvedTrade,
	typ domain.EventType,
	side []leg,
	total decimal.Decimal,
	source domain.ValueSource,
	unknown bool,
) []domain.FinancialEvent {
	shares := g.allocate(trade.TxID, side, total)
	for i, l := range side {
		if l.numeraire {
			continue
		}
		ev := domain.FinancialEvent{
			Type:         typ,
			AssetID:      l.AssetID,
			Symbol:       l.Symbol,
			AssetAmount:  l.Amount,
			Value:        shares[i],
			UnitPrice:    decimal.Zero,
			Timestamp:    trade.Timestamp,
			TxID:         trade.TxID,
			Sequence:     len(events),
			ValueSource:  source,
			PriceUnknown: unknown,
		}
		if l.Amount.IsPositive() {
			ev.UnitPrice = shares[i].Div(l.Amount)
		}
		events = append(events, ev)
	}
	return events
}

// allocate splits total across a side by market-value share. The last asset
// takes the remainder so the shares sum to total exactly. Without a full set
// of prices the split is even.
func (g *Generator) allocate(txID string, side []leg, total decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(side))
	if len(side) == 0 {
		return shares
	}
	if len(side) == 1 {
		shares[0] = total
		return shares
	}

	weights := make([]decimal.Decimal, len(side))
	sum, ok := sideValue(side)
	if ok && sum.IsPositive() {
		for i, l := range side {
			weights[i] = l.value
		}
	} else {
		if total.IsPositive() {
			g.diag.Record(domain.DiagMissingPrice, txID, "",
				"side of %d assets lacks prices, value split evenly", len(side))
		}
		sum = decimal.NewFromInt(int64(len(side)))
		for i := range side {
			weights[i] = decimal.NewFromInt(1)
		}
	}

	allocated := decimal.Zero
	last := len(side) - 1
	for i := 0; i < last; i++ {
		shares[i] = total.Mul(weights[i]).Div(sum)
		allocated = allocated.Add(shares[i])
	}
	shares[last] = total.Sub(allocated)
	return shares
}
