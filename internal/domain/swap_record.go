package domain

import "github.com/shopspring/decimal"

// RawSwapRecord is one ledger entry for a swap as returned by the trade history API.
// A single logical trade may arrive as several records sharing TxID.
type RawSwapRecord struct {
	TxID                  string          // transaction signature, not unique per record
	InstructionIndex      int             // ordering hint within the transaction
	InnerInstructionIndex int             // ordering hint within the instruction
	Timestamp             int64           // block time, Unix seconds
	Source                string          // venue / program tag (e.g. "raydium")
	Owner                 string          // wallet address the entry belongs to (optional)
	LegA                  AssetLeg        // "quote" side in upstream terminology
	LegB                  AssetLeg        // "base" side in upstream terminology
	DeclaredNotional      decimal.Decimal // reported trade value, cross-check only
}

// Legs returns both legs in a fixed order.
func (r *RawSwapRecord) Legs() [2]*AssetLeg {
	return [2]*AssetLeg{&r.LegA, &r.LegB}
}

// AssetLeg is one token side of a swap record.
type AssetLeg struct {
	AssetID       string          // token mint address
	Symbol        string          // token symbol, "UNKNOWN" when absent
	Decimals      int             // token decimals
	RawAmount     string          // unsigned amount in base units (may exceed 64 bits)
	UIAmount      decimal.Decimal // unsigned human-scale amount
	NetChange     decimal.Decimal // signed human-scale change: negative = given up, positive = received
	UnitPrice     decimal.Decimal // settlement-currency price per unit at tx time, zero = missing
	NearestPrice  decimal.Decimal // secondary price quote near tx time, zero = missing
	DirectionHint DirectionHint   // upstream "from"/"to" tag, never trusted alone
}

// DirectionHint is the upstream side tag of a leg.
type DirectionHint string

// Direction hint constants
const (
	DirectionHintFrom    DirectionHint = "from" // leg was spent
	DirectionHintTo      DirectionHint = "to"   // leg was received
	DirectionHintUnknown DirectionHint = ""
)

// IsValid checks if the hint is a known value.
func (h DirectionHint) IsValid() bool {
	return h == DirectionHintFrom || h == DirectionHintTo || h == DirectionHintUnknown
}

// UnknownSymbol is used when the upstream record carries no symbol.
const UnknownSymbol = "UNKNOWN"
