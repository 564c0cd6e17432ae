package normalization

import (
	"solana-wallet-pnl/internal/diagnostics"
	"solana-wallet-pnl/internal/domain"
)

// ValidateRecords returns the records that can be grouped into trades.
// Records without a transaction id or asset ids are dropped. Records whose
// legs do not move in opposite directions are kept but flagged, since other
// entries of the same transaction may complete them.
func ValidateRecords(records []domain.RawSwapRecord, diag diagnostics.Recorder) []domain.RawSwapRecord {
	out := make([]domain.RawSwapRecord, 0, len(records))
	for i := range records {
		r := &records[i]

		if r.TxID == "" {
			diag.Record(domain.DiagMalformedRecord, "", "", "record %d has no transaction id", i)
			continue
		}
		if r.LegA.AssetID == "" || r.LegB.AssetID == "" {
			diag.Record(domain.DiagMalformedRecord, r.TxID, "", "record has a leg without asset id")
			continue
		}

		a, b := r.LegA.NetChange.Sign(), r.LegB.NetChange.Sign()
		switch {
		case a == 0 || b == 0:
			diag.Record(domain.DiagMalformedRecord, r.TxID, "",
				"zero net change (leg a %s, leg b %s)", r.LegA.NetChange, r.LegB.NetChange)
		case a == b:
			diag.Record(domain.DiagMalformedRecord, r.TxID, "",
				"legs have the same sign (leg a %s, leg b %s)", r.LegA.NetChange, r.LegB.NetChange)
		}

		out = append(out, *r)
	}
	return out
}
