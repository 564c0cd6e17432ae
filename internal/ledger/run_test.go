package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-pnl/internal/diagnostics"
	"solana-wallet-pnl/internal/domain"
)

// sampleEvents builds an interleaved multi-asset stream with an oversell and
// a timestamp regression.
func sampleEvents() []domain.FinancialEvent {
	var events []domain.FinancialEvent
	assets := []string{"A", "B", "C", "D", "E"}
	for i := 0; i < 40; i++ {
		asset := assets[i%len(assets)]
		typ := domain.EventTypeBuy
		if i%3 == 2 {
			typ = domain.EventTypeSell
		}
		events = append(events, domain.FinancialEvent{
			Type:        typ,
			AssetID:     asset,
			Symbol:      asset,
			AssetAmount: decimal.NewFromInt(int64(i%7 + 1)),
			Value:       decimal.NewFromInt(int64(i*13%29 + 1)),
			Timestamp:   int64(100 + i),
			TxID:        fmt.Sprintf("tx%02d", i),
		})
	}
	// regression for C only
	events = append(events, domain.FinancialEvent{
		Type: domain.EventTypeBuy, AssetID: "C", Symbol: "C",
		AssetAmount: decimal.NewFromInt(1), Value: decimal.NewFromInt(1),
		Timestamp: 50, TxID: "late",
	})
	return events
}

func TestRun_MatchesSequential(t *testing.T) {
	events := sampleEvents()

	seq, err := RunSequential(events, nil)
	require.NoError(t, err)

	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			par, err := Run(context.Background(), events, workers, nil)
			require.NoError(t, err)

			require.Len(t, par.Assets, len(seq.Assets))
			assert.Equal(t, seq.EventsApplied, par.EventsApplied)
			for i := range seq.Assets {
				s, p := seq.Assets[i], par.Assets[i]
				assert.Equal(t, s.AssetID, p.AssetID)
				assert.True(t, s.RealizedPnL.Equal(p.RealizedPnL), "asset %s", s.AssetID)
				assert.Equal(t, s.Halted, p.Halted)
				assert.Equal(t, len(s.Lots), len(p.Lots))
				assert.Equal(t, len(s.Matched), len(p.Matched))
				assert.True(t, s.Position().TotalCostBasis.Equal(p.Position().TotalCostBasis))
			}
		})
	}
}

func TestRun_DiagnosticsDeterministic(t *testing.T) {
	events := sampleEvents()

	var first []domain.Diagnostic
	for i := 0; i < 5; i++ {
		diag := diagnostics.NewCollector(100, nil, nil)
		_, err := Run(context.Background(), events, 4, diag)
		require.NoError(t, err)

		snap := diag.Snapshot()
		assert.Equal(t, 1, snap.Count(domain.DiagNonChronological))
		if i == 0 {
			first = snap.Samples
			continue
		}
		assert.Equal(t, first, snap.Samples)
	}
}

func TestRun_HaltedAssetIsolated(t *testing.T) {
	res, err := Run(context.Background(), sampleEvents(), 3, nil)
	require.NoError(t, err)

	for _, a := range res.Assets {
		assert.Equal(t, a.AssetID == "C", a.Halted, "asset %s", a.AssetID)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, sampleEvents(), 2, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	res, err := Run(context.Background(), nil, 4, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Assets)
	assert.Equal(t, 0, res.EventsApplied)
}
