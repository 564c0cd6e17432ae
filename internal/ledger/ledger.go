// Package ledger maintains per-asset FIFO lot queues and realizes P&L on
// disposal.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/diagnostics"
	"solana-wallet-pnl/internal/domain"
)

var (
	// ErrNonChronological is returned when an event's timestamp is missing or
	// earlier than the previous event of the same asset. The asset is halted.
	ErrNonChronological = errors.New("non-chronological event")
	// ErrHalted is returned for events of an asset whose ledger has halted.
	ErrHalted = errors.New("asset ledger halted")
	// ErrZeroQuantity is returned for buys and sells without a positive quantity.
	ErrZeroQuantity = errors.New("quantity must be positive")
)

// book is the state of a single asset.
type book struct {
	assetID       string
	symbol        string
	queue         lotQueue
	realized      decimal.Decimal // known fractions only
	realizedGaps  int             // fractions whose proceeds or cost was unpriced
	matched       []domain.MatchedTrade
	lastTimestamp int64
	halted        bool
	applied       int
}

// Ledger holds one FIFO book per asset. Not safe for concurrent use; see Run
// for the per-asset fan-out.
type Ledger struct {
	books map[string]*book
	diag  diagnostics.Recorder
}

// New creates an empty ledger. A nil recorder discards diagnostics.
func New(diag diagnostics.Recorder) *Ledger {
	if diag == nil {
		diag = diagnostics.Discard
	}
	return &Ledger{
		books: make(map[string]*book),
		diag:  diag,
	}
}

func (l *Ledger) book(assetID, symbol string) *book {
	b, ok := l.books[assetID]
	if !ok {
		b = &book{assetID: assetID, symbol: symbol}
		l.books[assetID] = b
	}
	if (b.symbol == "" || b.symbol == domain.UnknownSymbol) && symbol != "" {
		b.symbol = symbol
	}
	return b
}

// Apply feeds one event to its asset's book. Events must arrive sorted by
// (timestamp, tx_id, sequence). Errors are per-event and never leave the
// ledger in an inconsistent state.
func (l *Ledger) Apply(ev *domain.FinancialEvent) error {
	b := l.book(ev.AssetID, ev.Symbol)
	if err := l.checkOrder(b, ev.Timestamp, ev.TxID); err != nil {
		return err
	}

	var err error
	switch ev.Type {
	case domain.EventTypeBuy:
		err = l.applyBuy(b, ev.AssetAmount, ev.Value, ev.Timestamp, ev.TxID, ev.PriceUnknown)
	case domain.EventTypeSell:
		_, err = l.applySell(b, ev.AssetAmount, ev.Value, ev.Timestamp, ev.TxID, ev.PriceUnknown)
	default:
		err = fmt.Errorf("unknown event type %q", ev.Type)
	}
	if err == nil {
		b.applied++
	}
	return err
}

// ApplyBuy pushes a new lot of qty acquired for cost.
func (l *Ledger) ApplyBuy(assetID, symbol string, qty, cost decimal.Decimal, at int64, txID string) error {
	b := l.book(assetID, symbol)
	if err := l.checkOrder(b, at, txID); err != nil {
		return err
	}
	if err := l.applyBuy(b, qty, cost, at, txID, false); err != nil {
		return err
	}
	b.applied++
	return nil
}

// ApplySell consumes qty from the oldest lots and returns the realized P&L of
// the fractions whose cost is known.
func (l *Ledger) ApplySell(assetID, symbol string, qty, proceeds decimal.Decimal, at int64, txID string) (decimal.Decimal, error) {
	b := l.book(assetID, symbol)
	if err := l.checkOrder(b, at, txID); err != nil {
		return decimal.Zero, err
	}
	realized, err := l.applySell(b, qty, proceeds, at, txID, false)
	if err != nil {
		return decimal.Zero, err
	}
	b.applied++
	return realized, nil
}

// checkOrder halts the asset on a missing or decreasing timestamp.
func (l *Ledger) checkOrder(b *book, at int64, txID string) error {
	if b.halted {
		return fmt.Errorf("%w: %s", ErrHalted, b.assetID)
	}
	if at <= 0 || at < b.lastTimestamp {
		b.halted = true
		l.diag.Record(domain.DiagNonChronological, txID, b.assetID,
			"timestamp %d after %d, halting ledger for %s", at, b.lastTimestamp, b.assetID)
		return fmt.Errorf("%w: %s at %d", ErrNonChronological, b.assetID, at)
	}
	b.lastTimestamp = at
	return nil
}

func (l *Ledger) applyBuy(b *book, qty, cost decimal.Decimal, at int64, txID string, costUnknown bool) error {
	if !qty.IsPositive() {
		l.diag.Record(domain.DiagZeroQuantity, txID, b.assetID, "buy of %s %s rejected", qty, b.assetID)
		return fmt.Errorf("%w: buy %s", ErrZeroQuantity, b.assetID)
	}
	b.queue.push(domain.Lot{
		Quantity:    qty,
		UnitCost:    cost.Div(qty),
		Cost:        cost,
		AcquiredAt:  at,
		TxID:        txID,
		CostUnknown: costUnknown,
	})
	return nil
}

// applySell consumes lots oldest first. A fraction is unpriced when the sell's
// proceeds or the lot's cost is unknown; its P&L is kept on the matched trade
// but left out of the realized total.
func (l *Ledger) applySell(b *book, qty, proceeds decimal.Decimal, at int64, txID string, proceedsUnknown bool) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		l.diag.Record(domain.DiagZeroQuantity, txID, b.assetID, "sell of %s %s rejected", qty, b.assetID)
		return decimal.Zero, fmt.Errorf("%w: sell %s", ErrZeroQuantity, b.assetID)
	}

	remaining := qty
	realized := decimal.Zero
	proceedsLeft := proceeds

	for remaining.IsPositive() && b.queue.len() > 0 {
		lot := b.queue.front()
		buyTxID, acquiredAt := lot.TxID, lot.AcquiredAt
		unknown := proceedsUnknown || lot.CostUnknown

		var take, cost decimal.Decimal
		if lot.Quantity.LessThanOrEqual(remaining) {
			take, cost = lot.Quantity, lot.Cost
			b.queue.pop()
		} else {
			take = remaining
			cost = lot.UnitCost.Mul(take)
			lot.Quantity = lot.Quantity.Sub(take)
			lot.Cost = lot.Cost.Sub(cost)
		}
		remaining = remaining.Sub(take)

		share := proceedsLeft
		if remaining.IsPositive() {
			share = proceeds.Mul(take).Div(qty)
		}
		proceedsLeft = proceedsLeft.Sub(share)

		pnl := share.Sub(cost)
		if unknown {
			b.realizedGaps++
		} else {
			realized = realized.Add(pnl)
		}
		b.matched = append(b.matched, domain.MatchedTrade{
			AssetID:      b.assetID,
			BuyTxID:      buyTxID,
			SellTxID:     txID,
			Quantity:     take,
			CostBasis:    cost,
			Proceeds:     share,
			RealizedPnL:  pnl,
			AcquiredAt:   acquiredAt,
			DisposedAt:   at,
			ValueUnknown: unknown,
		})
	}

	if remaining.IsPositive() {
		l.diag.Record(domain.DiagInsufficientLotQuantity, txID, b.assetID,
			"insufficient lot quantity for %s: short %s", b.assetID, remaining)
		if proceedsUnknown {
			b.realizedGaps++
		} else {
			realized = realized.Add(proceedsLeft)
		}
		b.matched = append(b.matched, domain.MatchedTrade{
			AssetID:      b.assetID,
			SellTxID:     txID,
			Quantity:     remaining,
			CostBasis:    decimal.Zero,
			Proceeds:     proceedsLeft,
			RealizedPnL:  proceedsLeft,
			DisposedAt:   at,
			Unmatched:    true,
			ValueUnknown: proceedsUnknown,
		})
	}

	b.realized = b.realized.Add(realized)
	return realized, nil
}

// AssetResult is the final state of one asset's book.
type AssetResult struct {
	AssetID       string
	Symbol        string
	Lots          []domain.Lot    // open lots, oldest first
	RealizedPnL   decimal.Decimal // sum over priced fractions
	RealizedGaps  int             // unpriced fractions excluded from RealizedPnL
	Matched       []domain.MatchedTrade
	Halted        bool
	EventsApplied int
}

// Position summarises the open lots.
func (r *AssetResult) Position() domain.Position {
	pos := domain.Position{
		AssetID:        r.AssetID,
		Symbol:         r.Symbol,
		TotalQuantity:  decimal.Zero,
		TotalCostBasis: decimal.Zero,
		OpenLots:       len(r.Lots),
	}
	for _, lot := range r.Lots {
		pos.TotalQuantity = pos.TotalQuantity.Add(lot.Quantity)
		pos.TotalCostBasis = pos.TotalCostBasis.Add(lot.Cost)
		if lot.CostUnknown {
			pos.CostUnknown = true
		}
	}
	if pos.TotalQuantity.IsPositive() {
		pos.WeightedAverageCost = pos.TotalCostBasis.Div(pos.TotalQuantity)
	}
	return pos
}

// RealizedComplete reports whether every disposal had a known value.
func (r *AssetResult) RealizedComplete() bool {
	return r.RealizedGaps == 0
}

// HasOpenLots reports whether any quantity remains.
func (r *AssetResult) HasOpenLots() bool {
	return len(r.Lots) > 0
}

// Results returns every asset's state sorted by asset ID.
func (l *Ledger) Results() []AssetResult {
	ids := make([]string, 0, len(l.books))
	for id := range l.books {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]AssetResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.books[id].result())
	}
	return out
}

// Lots returns a copy of an asset's open lots.
func (l *Ledger) Lots(assetID string) []domain.Lot {
	b, ok := l.books[assetID]
	if !ok {
		return nil
	}
	return b.queue.snapshot()
}

// RealizedPnL returns the running realized P&L across all assets.
func (l *Ledger) RealizedPnL() decimal.Decimal {
	total := decimal.Zero
	for _, b := range l.books {
		total = total.Add(b.realized)
	}
	return total
}

func (b *book) result() AssetResult {
	matched := make([]domain.MatchedTrade, len(b.matched))
	copy(matched, b.matched)
	return AssetResult{
		AssetID:       b.assetID,
		Symbol:        b.symbol,
		Lots:          b.queue.snapshot(),
		RealizedPnL:   b.realized,
		RealizedGaps:  b.realizedGaps,
		Matched:       matched,
		Halted:        b.halted,
		EventsApplied: b.applied,
	}
}
