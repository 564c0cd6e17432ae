package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-pnl/internal/diagnostics"
	"solana-wallet-pnl/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedger_PartialConsumption(t *testing.T) {
	l := New(nil)

	require.NoError(t, l.ApplyBuy("A", "A", d("100"), d("1000"), 10, "buy"))
	realized, err := l.ApplySell("A", "A", d("40"), d("600"), 20, "sell")
	require.NoError(t, err)

	assert.True(t, realized.Equal(d("200")), "realized %s", realized)
	lots := l.Lots("A")
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Equal(d("60")))
	assert.True(t, lots[0].UnitCost.Equal(d("10")))
	assert.True(t, lots[0].Cost.Equal(d("600")))
}

func TestLedger_FifoExactness(t *testing.T) {
	l := New(nil)

	// unrelated asset activity must not influence A
	require.NoError(t, l.ApplyBuy("B", "B", d("3"), d("77"), 5, "b1"))
	require.NoError(t, l.ApplyBuy("A", "A", d("7"), d("1"), 10, "a1"))
	_, err := l.ApplySell("B", "B", d("1"), d("50"), 11, "b2")
	require.NoError(t, err)

	realized, err := l.ApplySell("A", "A", d("7"), d("3"), 12, "a2")
	require.NoError(t, err)

	assert.True(t, realized.Equal(d("2")))
	assert.Empty(t, l.Lots("A"))
}

func TestLedger_FullConsumptionReturnsExactCost(t *testing.T) {
	l := New(nil)

	require.NoError(t, l.ApplyBuy("A", "A", d("3"), d("10"), 1, "b"))
	first, err := l.ApplySell("A", "A", d("1"), d("0"), 2, "s1")
	require.NoError(t, err)
	second, err := l.ApplySell("A", "A", d("2"), d("0"), 3, "s2")
	require.NoError(t, err)

	// the two cost bases add back to exactly 10
	assert.True(t, first.Add(second).Equal(d("-10")), "total %s", first.Add(second))
}

func TestLedger_SellSpansLots(t *testing.T) {
	l := New(nil)

	require.NoError(t, l.ApplyBuy("A", "A", d("10"), d("100"), 1, "b1"))
	require.NoError(t, l.ApplyBuy("A", "A", d("10"), d("200"), 2, "b2"))
	realized, err := l.ApplySell("A", "A", d("15"), d("300"), 3, "s")
	require.NoError(t, err)

	// cost = 100 + 5*20
	assert.True(t, realized.Equal(d("100")))

	results := l.Results()
	require.Len(t, results, 1)
	matched := results[0].Matched
	require.Len(t, matched, 2)
	assert.Equal(t, "b1", matched[0].BuyTxID)
	assert.Equal(t, int64(1), matched[0].AcquiredAt)
	assert.True(t, matched[0].Quantity.Equal(d("10")))
	assert.True(t, matched[0].Proceeds.Equal(d("200")))
	assert.Equal(t, "b2", matched[1].BuyTxID)
	assert.True(t, matched[1].CostBasis.Equal(d("100")))
	assert.True(t, matched[0].Proceeds.Add(matched[1].Proceeds).Equal(d("300")))

	pos := results[0].Position()
	assert.True(t, pos.TotalQuantity.Equal(d("5")))
	assert.True(t, pos.TotalCostBasis.Equal(d("100")))
	assert.True(t, pos.WeightedAverageCost.Equal(d("20")))
	assert.Equal(t, 1, pos.OpenLots)
}

func TestLedger_Oversell(t *testing.T) {
	diag := diagnostics.NewCollector(10, nil, nil)
	l := New(diag)

	realized, err := l.ApplySell("Z", "Z", d("50"), d("500"), 1, "s")
	require.NoError(t, err)

	assert.True(t, realized.Equal(d("500")))
	assert.Equal(t, 1, diag.Count(domain.DiagInsufficientLotQuantity))
	require.Len(t, diag.Snapshot().Samples, 1)
	assert.Contains(t, diag.Snapshot().Samples[0].Message, "insufficient lot quantity for Z")

	matched := l.Results()[0].Matched
	require.Len(t, matched, 1)
	assert.True(t, matched[0].Unmatched)
	assert.True(t, matched[0].CostBasis.IsZero())
}

func TestLedger_PartialOversell(t *testing.T) {
	diag := diagnostics.NewCollector(10, nil, nil)
	l := New(diag)

	require.NoError(t, l.ApplyBuy("A", "A", d("10"), d("50"), 1, "b"))
	realized, err := l.ApplySell("A", "A", d("20"), d("400"), 2, "s")
	require.NoError(t, err)

	assert.True(t, realized.Equal(d("350")))
	assert.Equal(t, 1, diag.Count(domain.DiagInsufficientLotQuantity))

	matched := l.Results()[0].Matched
	require.Len(t, matched, 2)
	assert.True(t, matched[0].Proceeds.Equal(d("200")))
	assert.True(t, matched[1].Unmatched)
	assert.True(t, matched[1].Proceeds.Equal(d("200")))
}

func TestLedger_ZeroQuantityRejected(t *testing.T) {
	diag := diagnostics.NewCollector(10, nil, nil)
	l := New(diag)

	err := l.ApplyBuy("A", "A", d("0"), d("10"), 1, "b")
	assert.ErrorIs(t, err, ErrZeroQuantity)
	_, err = l.ApplySell("A", "A", d("0"), d("10"), 2, "s")
	assert.ErrorIs(t, err, ErrZeroQuantity)

	assert.Equal(t, 2, diag.Count(domain.DiagZeroQuantity))
	assert.Empty(t, l.Lots("A"))
}

func TestLedger_NonChronologicalHaltsAssetOnly(t *testing.T) {
	diag := diagnostics.NewCollector(10, nil, nil)
	l := New(diag)

	require.NoError(t, l.ApplyBuy("A", "A", d("1"), d("1"), 100, "a1"))
	require.NoError(t, l.ApplyBuy("B", "B", d("1"), d("1"), 100, "b1"))

	err := l.ApplyBuy("A", "A", d("1"), d("1"), 50, "a2")
	assert.ErrorIs(t, err, ErrNonChronological)
	err = l.ApplyBuy("A", "A", d("1"), d("1"), 200, "a3")
	assert.ErrorIs(t, err, ErrHalted)

	require.NoError(t, l.ApplyBuy("B", "B", d("1"), d("1"), 150, "b2"))

	results := l.Results()
	require.Len(t, results, 2)
	assert.True(t, results[0].Halted)
	assert.Len(t, results[0].Lots, 1)
	assert.False(t, results[1].Halted)
	assert.Len(t, results[1].Lots, 2)
	assert.Equal(t, 1, diag.Count(domain.DiagNonChronological))
}

func TestLedger_MissingTimestampHalts(t *testing.T) {
	l := New(nil)
	err := l.ApplyBuy("A", "A", d("1"), d("1"), 0, "a1")
	assert.ErrorIs(t, err, ErrNonChronological)
	assert.True(t, l.Results()[0].Halted)
}

func TestLedger_ApplyEvent(t *testing.T) {
	l := New(nil)

	buy := domain.FinancialEvent{Type: domain.EventTypeBuy, AssetID: "A", Symbol: "AAA", AssetAmount: d("2"), Value: d("0"), Timestamp: 1, TxID: "t1", PriceUnknown: true}
	sell := domain.FinancialEvent{Type: domain.EventTypeSell, AssetID: "A", Symbol: "AAA", AssetAmount: d("1"), Value: d("5"), Timestamp: 2, TxID: "t2"}

	require.NoError(t, l.Apply(&buy))
	require.NoError(t, l.Apply(&sell))

	res := l.Results()[0]
	assert.Equal(t, "AAA", res.Symbol)
	assert.Equal(t, 2, res.EventsApplied)
	require.Len(t, res.Lots, 1)
	assert.True(t, res.Lots[0].CostUnknown)
	assert.True(t, res.RealizedPnL.IsZero())
	assert.Equal(t, 1, res.RealizedGaps)
	assert.False(t, res.RealizedComplete())
	require.Len(t, res.Matched, 1)
	assert.True(t, res.Matched[0].ValueUnknown)
	assert.True(t, res.Position().CostUnknown)
}

func TestLedger_UnpricedSellLeavesRealizedUnknown(t *testing.T) {
	l := New(nil)

	buy := domain.FinancialEvent{Type: domain.EventTypeBuy, AssetID: "A", Symbol: "A", AssetAmount: d("10"), Value: d("1000"), Timestamp: 1, TxID: "t1"}
	sell := domain.FinancialEvent{Type: domain.EventTypeSell, AssetID: "A", Symbol: "A", AssetAmount: d("4"), Value: d("0"), Timestamp: 2, TxID: "t2", PriceUnknown: true}
	later := domain.FinancialEvent{Type: domain.EventTypeSell, AssetID: "A", Symbol: "A", AssetAmount: d("6"), Value: d("900"), Timestamp: 3, TxID: "t3"}

	require.NoError(t, l.Apply(&buy))
	require.NoError(t, l.Apply(&sell))
	require.NoError(t, l.Apply(&later))

	res := l.Results()[0]
	// only the priced 6 units count: 900 - 600
	assert.True(t, res.RealizedPnL.Equal(d("300")), "realized %s", res.RealizedPnL)
	assert.Equal(t, 1, res.RealizedGaps)
	require.Len(t, res.Matched, 2)
	assert.True(t, res.Matched[0].ValueUnknown)
	assert.False(t, res.Matched[1].ValueUnknown)
	assert.False(t, res.HasOpenLots())
}

func TestLedger_UnpricedShortfallNotRealized(t *testing.T) {
	l := New(nil)

	sell := domain.FinancialEvent{Type: domain.EventTypeSell, AssetID: "A", Symbol: "A", AssetAmount: d("5"), Value: d("0"), Timestamp: 1, TxID: "t1", PriceUnknown: true}
	require.NoError(t, l.Apply(&sell))

	res := l.Results()[0]
	assert.True(t, res.RealizedPnL.IsZero())
	assert.Equal(t, 1, res.RealizedGaps)
	require.Len(t, res.Matched, 1)
	assert.True(t, res.Matched[0].Unmatched)
	assert.True(t, res.Matched[0].ValueUnknown)
}

func TestLotQueue_Compaction(t *testing.T) {
	var q lotQueue
	for i := 0; i < 10; i++ {
		q.push(domain.Lot{Quantity: decimal.NewFromInt(int64(i)), TxID: string(rune('a' + i))})
	}
	for i := 0; i < 6; i++ {
		q.pop()
	}

	assert.Equal(t, 4, q.len())
	assert.Equal(t, "g", q.front().TxID)
	snap := q.snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, "j", snap[3].TxID)

	for i := 0; i < 4; i++ {
		q.pop()
	}
	assert.Equal(t, 0, q.len())
	assert.Empty(t, q.snapshot())
}
