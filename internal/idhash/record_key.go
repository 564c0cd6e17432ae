package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/domain"
)

// ComputeRecordKey computes the deduplication key of a raw swap record using SHA256.
// Formula: SHA256(tx_id|ins_index|inner_ins_index|legA_asset|legA_net|legB_asset|legB_net|notional|source)
// Decimals are normalised so that 1.0 and 1 hash identically.
// Returns hex-encoded hash (64 characters).
func ComputeRecordKey(r *domain.RawSwapRecord) string {
	data := fmt.Sprintf("%s|%d|%d|%s|%s|%s|%s|%s|%s",
		r.TxID,
		r.InstructionIndex,
		r.InnerInstructionIndex,
		r.LegA.AssetID,
		canonical(r.LegA.NetChange),
		r.LegB.AssetID,
		canonical(r.LegB.NetChange),
		canonical(r.DeclaredNotional),
		r.Source,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeSnapshotID computes a deterministic per-asset snapshot id.
// Formula: SHA256(report_id|asset_id)
func ComputeSnapshotID(reportID, assetID string) string {
	hash := sha256.Sum256([]byte(reportID + "|" + assetID))
	return hex.EncodeToString(hash[:])
}

// canonical renders d without trailing zeros.
func canonical(d decimal.Decimal) string {
	return d.String()
}
