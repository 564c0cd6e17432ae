package domain

// DiagnosticKind classifies a recoverable data problem found during a run.
type DiagnosticKind string

// Diagnostic kinds, in report order.
const (
	DiagMalformedRecord         DiagnosticKind = "malformed_record"
	DiagMalformedTrade          DiagnosticKind = "malformed_trade"
	DiagDirectionHintMismatch   DiagnosticKind = "direction_hint_mismatch"
	DiagMissingPrice            DiagnosticKind = "missing_price"
	DiagPriceDeviation          DiagnosticKind = "price_deviation"
	DiagInsufficientLotQuantity DiagnosticKind = "insufficient_lot_quantity"
	DiagZeroQuantity            DiagnosticKind = "zero_quantity"
	DiagNonChronological        DiagnosticKind = "non_chronological"
)

// AllDiagnosticKinds lists every kind in stable order.
var AllDiagnosticKinds = []DiagnosticKind{
	DiagMalformedRecord,
	DiagMalformedTrade,
	DiagDirectionHintMismatch,
	DiagMissingPrice,
	DiagPriceDeviation,
	DiagInsufficientLotQuantity,
	DiagZeroQuantity,
	DiagNonChronological,
}

// String returns the string representation of DiagnosticKind.
func (k DiagnosticKind) String() string {
	return string(k)
}

// Diagnostic is one sampled occurrence.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	TxID    string         `json:"tx_id,omitempty"`
	AssetID string         `json:"asset_id,omitempty"`
	Message string         `json:"message"`
}

// Diagnostics holds per-kind counts and a bounded sample of occurrences.
type Diagnostics struct {
	Counts  map[DiagnosticKind]int `json:"counts"`
	Samples []Diagnostic           `json:"samples"`
}

// Count returns the number of occurrences of kind.
func (d *Diagnostics) Count(kind DiagnosticKind) int {
	return d.Counts[kind]
}

// Total returns the number of occurrences across all kinds.
func (d *Diagnostics) Total() int {
	total := 0
	for _, n := range d.Counts {
		total += n
	}
	return total
}
