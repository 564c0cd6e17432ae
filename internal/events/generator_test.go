package events

import (
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-pnl/internal/config"
	"solana-wallet-pnl/internal/diagnostics"
	"solana-wallet-pnl/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.NumeraireAssetID = "NUM"
	return cfg
}

type side map[string]string

// trade builds a resolved trade from given-up and received magnitudes and prices.
func trade(txID string, givenUp, received side, prices side) domain.ResolvedTrade {
	rt := domain.ResolvedTrade{
		TxID:       txID,
		Timestamp:  1000,
		UnitPrices: make(map[string]decimal.Decimal),
	}
	for _, id := range sortedIDs(givenUp) {
		rt.GivenUp = append(rt.GivenUp, domain.AssetAmount{AssetID: id, Symbol: id, Amount: d(givenUp[id])})
	}
	for _, id := range sortedIDs(received) {
		rt.Received = append(rt.Received, domain.AssetAmount{AssetID: id, Symbol: id, Amount: d(received[id])})
	}
	for id, p := range prices {
		rt.UnitPrices[id] = d(p)
	}
	return rt
}

func sortedIDs(s side) []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sum(events []domain.FinancialEvent, typ domain.EventType) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		if e.Type == typ {
			total = total.Add(e.Value)
		}
	}
	return total
}

func TestGenerate_NumeraireGivenUp(t *testing.T) {
	g := NewGenerator(testConfig(), nil)
	rt := trade("S1", side{"NUM": "10"}, side{"B": "500"}, side{"NUM": "150", "B": "3"})

	events := g.Generate(&rt)

	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, domain.EventTypeBuy, ev.Type)
	assert.Equal(t, "B", ev.AssetID)
	assert.True(t, ev.AssetAmount.Equal(d("500")))
	assert.True(t, ev.Value.Equal(d("1500")), "value %s", ev.Value)
	assert.True(t, ev.UnitPrice.Equal(d("3")))
	assert.Equal(t, domain.ValueSourceNumeraire, ev.ValueSource)
	assert.False(t, ev.PriceUnknown)
}

func TestGenerate_NumeraireReceived(t *testing.T) {
	g := NewGenerator(testConfig(), nil)
	rt := trade("S2", side{"B": "500"}, side{"NUM": "12"}, side{"NUM": "150", "B": "3"})

	events := g.Generate(&rt)

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeSell, events[0].Type)
	assert.Equal(t, "B", events[0].AssetID)
	assert.True(t, events[0].Value.Equal(d("1800")))
}

func TestGenerate_FixedNumerairePrice(t *testing.T) {
	cfg := testConfig()
	cfg.NumeraireFixedPrice = decimal.NewNullDecimal(d("1"))
	g := NewGenerator(cfg, nil)
	rt := trade("S3", side{"NUM": "250"}, side{"B": "100"}, side{"NUM": "0.98"})

	events := g.Generate(&rt)

	require.Len(t, events, 1)
	assert.True(t, events[0].Value.Equal(d("250")))
}

func TestGenerate_NumerairePriceMissingFallsBackToCounterpart(t *testing.T) {
	g := NewGenerator(testConfig(), nil)
	rt := trade("S4", side{"NUM": "10"}, side{"B": "500"}, side{"B": "3"})

	events := g.Generate(&rt)

	require.Len(t, events, 1)
	assert.True(t, events[0].Value.Equal(d("1500")))
	assert.Equal(t, domain.ValueSourceReceived, events[0].ValueSource)
}

func TestGenerate_DualSidedValueConservation(t *testing.T) {
	g := NewGenerator(testConfig(), nil)
	rt := trade("D1", side{"C": "1000"}, side{"D": "999.5"}, side{"C": "0.9999", "D": "1.0002"})

	events := g.Generate(&rt)

	require.Len(t, events, 2)
	sell, buy := events[0], events[1]
	assert.Equal(t, domain.EventTypeSell, sell.Type)
	assert.Equal(t, "C", sell.AssetID)
	assert.Equal(t, domain.EventTypeBuy, buy.Type)
	assert.Equal(t, "D", buy.AssetID)
	assert.True(t, sell.Value.Equal(d("999.9")), "sell %s", sell.Value)
	assert.True(t, buy.Value.Equal(sell.Value))
	assert.Equal(t, 0, sell.Sequence)
	assert.Equal(t, 1, buy.Sequence)
	assert.Equal(t, domain.ValueSourceGivenUp, buy.ValueSource)
}

func TestGenerate_DualSidedReceivedPriceOnly(t *testing.T) {
	g := NewGenerator(testConfig(), nil)
	rt := trade("D2", side{"C": "1000"}, side{"D": "500"}, side{"D": "2"})

	events := g.Generate(&rt)

	require.Len(t, events, 2)
	assert.True(t, events[0].Value.Equal(d("1000")))
	assert.True(t, events[1].Value.Equal(d("1000")))
	assert.Equal(t, domain.ValueSourceReceived, events[0].ValueSource)
}

func TestGenerate_FallbackPriceSameAssetOnly(t *testing.T) {
	cfg := testConfig().WithFallbackPrices(map[string]decimal.Decimal{"C": d("2")})
	g := NewGenerator(cfg, nil)
	rt := trade("F1", side{"C": "10"}, side{"D": "3"}, nil)

	events := g.Generate(&rt)

	require.Len(t, events, 2)
	assert.True(t, events[0].Value.Equal(d("20")))
	assert.True(t, events[1].Value.Equal(d("20")))
}

func TestGenerate_NoPriceIsZeroAndFlagged(t *testing.T) {
	diag := diagnostics.NewCollector(10, nil, nil)
	// a fallback for an unrelated asset must never be used
	cfg := testConfig().WithFallbackPrices(map[string]decimal.Decimal{"OTHER": d("1000")})
	g := NewGenerator(cfg, diag)
	rt := trade("M1", side{"C": "10"}, side{"D": "3"}, nil)

	events := g.Generate(&rt)

	require.Len(t, events, 2)
	for _, ev := range events {
		assert.True(t, ev.Value.IsZero())
		assert.True(t, ev.PriceUnknown)
		assert.Equal(t, domain.ValueSourceNone, ev.ValueSource)
	}
	assert.Equal(t, 1, diag.Count(domain.DiagMissingPrice))
}

func TestGenerate_MultiAssetConservation(t *testing.T) {
	g := NewGenerator(testConfig(), nil)
	rt := trade("MH",
		side{"A": "3", "B": "7"},
		side{"C": "11", "E": "13", "F": "1"},
		side{"A": "1.3333333", "B": "0.7", "C": "1", "E": "2", "F": "3"},
	)

	events := g.Generate(&rt)

	require.Len(t, events, 5)
	total := d("3").Mul(d("1.3333333")).Add(d("7").Mul(d("0.7")))
	assert.True(t, sum(events, domain.EventTypeSell).Equal(total))
	assert.True(t, sum(events, domain.EventTypeBuy).Equal(total))

	// sells precede buys in sequence
	for i, ev := range events {
		assert.Equal(t, i, ev.Sequence)
		if i < 2 {
			assert.Equal(t, domain.EventTypeSell, ev.Type)
		} else {
			assert.Equal(t, domain.EventTypeBuy, ev.Type)
		}
	}

	// received side is split by market value share: C=11, E=26, F=3 of 40
	buyC := events[2]
	assert.True(t, buyC.Value.Equal(total.Mul(d("11")).Div(d("40"))))
}

func TestGenerate_MultiAssetMissingPriceSplitsEvenly(t *testing.T) {
	diag := diagnostics.NewCollector(10, nil, nil)
	g := NewGenerator(testConfig(), diag)
	rt := trade("MH2", side{"A": "4"}, side{"C": "1", "E": "1"}, side{"A": "5", "C": "1"})

	events := g.Generate(&rt)

	require.Len(t, events, 3)
	assert.True(t, events[1].Value.Equal(d("10")))
	assert.True(t, events[2].Value.Equal(d("10")))
	assert.Equal(t, 1, diag.Count(domain.DiagMissingPrice))
}

func TestGenerate_NumeraireWithSeveralCounterparts(t *testing.T) {
	g := NewGenerator(testConfig(), nil)
	rt := trade("NC", side{"NUM": "2"}, side{"B": "10", "C": "30"}, side{"NUM": "100", "B": "5", "C": "5"})

	events := g.Generate(&rt)

	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, domain.EventTypeBuy, ev.Type)
		assert.NotEqual(t, "NUM", ev.AssetID)
	}
	assert.True(t, events[0].Value.Equal(d("50")))
	assert.True(t, events[1].Value.Equal(d("150")))
}

func TestGenerate_NumeraireMixedSide(t *testing.T) {
	g := NewGenerator(testConfig(), nil)
	rt := trade("MX", side{"NUM": "1", "A": "10"}, side{"B": "4"}, side{"NUM": "100", "A": "5", "B": "40"})

	events := g.Generate(&rt)

	require.Len(t, events, 2)
	assert.Equal(t, domain.EventTypeSell, events[0].Type)
	assert.Equal(t, "A", events[0].AssetID)
	assert.True(t, events[0].Value.Equal(d("50")))
	assert.Equal(t, domain.EventTypeBuy, events[1].Type)
	assert.True(t, events[1].Value.Equal(d("150")))
}

func TestGenerateAll_Sorted(t *testing.T) {
	g := NewGenerator(testConfig(), nil)
	late := trade("b", side{"C": "1"}, side{"D": "1"}, side{"C": "1"})
	late.Timestamp = 2000
	early := trade("z", side{"C": "1"}, side{"D": "1"}, side{"C": "1"})
	early.Timestamp = 500
	tie := trade("a", side{"C": "1"}, side{"D": "1"}, side{"C": "1"})
	tie.Timestamp = 2000

	events := g.GenerateAll([]domain.ResolvedTrade{late, early, tie})

	require.Len(t, events, 6)
	var order []string
	for _, ev := range events {
		order = append(order, ev.TxID+":"+ev.Type.String())
	}
	assert.Equal(t, []string{"z:SELL", "z:BUY", "a:SELL", "a:BUY", "b:SELL", "b:BUY"}, order)
}
