package normalization

import (
	"github.com/shopspring/decimal"

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

func newCollector() *diagnostics.Collector {
	return diagnostics.NewCollector(100, nil, nil)
}

// rec builds a record moving netA of asset a and netB of asset b.
func rec(txID string, ix int, a, netA, b, netB string) domain.RawSwapRecord {
	return domain.RawSwapRecord{
		TxID:             txID,
		InstructionIndex: ix,
		Timestamp:        1700000000,
		Source:           "raydium",
		LegA:             domain.AssetLeg{AssetID: a, Symbol: a, NetChange: d(netA)},
		LegB:             domain.AssetLeg{AssetID: b, Symbol: b, NetChange: d(netB)},
		DeclaredNotional: d("10"),
	}
}
