package domain

import "github.com/shopspring/decimal"

// EventType is the accounting direction of a financial event.
type EventType string

const (
	EventTypeBuy  EventType = "BUY"
	EventTypeSell EventType = "SELL"
)

// String returns the string representation of EventType.
func (t EventType) String() string {
	return string(t)
}

// ValueSource records which price produced an event's settlement value.
type ValueSource string

// Value source constants
const (
	ValueSourceNumeraire ValueSource = "numeraire" // numeraire amount x numeraire price
	ValueSourceGivenUp   ValueSource = "given_up"  // given-up legs at market price
	ValueSourceReceived  ValueSource = "received"  // received legs at market price
	ValueSourceNone      ValueSource = "none"      // no usable price, value is zero
)

// FinancialEvent is one canonical accounting event derived from a trade.
type FinancialEvent struct {
	Type         EventType
	AssetID      string
	Symbol       string
	AssetAmount  decimal.Decimal // unsigned quantity
	Value        decimal.Decimal // unsigned, settlement currency
	UnitPrice    decimal.Decimal // Value / AssetAmount, diagnostics only
	Timestamp    int64           // Unix seconds
	TxID         string          // links paired events of one trade
	Sequence     int             // stable order within the trade, sells first
	ValueSource  ValueSource
	PriceUnknown bool // value could not be priced and is zero
}
