package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/domain"
)

// HistoryPage is one decoded page of wallet trade history.
type HistoryPage struct {
	Records []domain.RawSwapRecord
	HasNext bool
	Skipped int // non-swap items
}

// number is a JSON value that may be a number, a numeric string, null or "".
type number struct {
	value decimal.Decimal
	set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *number) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*n = number{}
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		text = strings.TrimSpace(s)
		if text == "" {
			*n = number{}
			return nil
		}
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", string(data), err)
	}
	*n = number{value: d, set: true}
	return nil
}

// nullableString treats null as "".
type nullableString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *nullableString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = ""
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = nullableString(v)
	return nil
}

type historySide struct {
	Symbol         nullableString `json:"symbol"`
	Decimals       number         `json:"decimals"`
	Address        nullableString `json:"address"`
	Amount         number         `json:"amount"`
	TypeSwap       nullableString `json:"type_swap"`
	UIAmount       number         `json:"ui_amount"`
	Price          number         `json:"price"`
	NearestPrice   number         `json:"nearest_price"`
	ChangeAmount   number         `json:"change_amount"`
	UIChangeAmount number         `json:"ui_change_amount"`
}

type historyItem struct {
	Quote         historySide    `json:"quote"`
	Base          historySide    `json:"base"`
	QuotePrice    number         `json:"quote_price"`
	BasePrice     number         `json:"base_price"`
	TxHash        nullableString `json:"tx_hash"`
	Source        nullableString `json:"source"`
	BlockUnixTime number         `json:"block_unix_time"`
	TxType        nullableString `json:"tx_type"`
	Owner         nullableString `json:"owner"`
	VolumeUSD     number         `json:"volume_usd"`
	InsIndex      number         `json:"ins_index"`
	InnerInsIndex number         `json:"inner_ins_index"`
}

type historyItems struct {
	Items   []historyItem `json:"items"`
	HasNext *bool         `json:"has_next"`
}

type historyEnvelope struct {
	Data *historyItems `json:"data"`
	historyItems
}

// DecodeHistory decodes a trade history page.
// Accepted shapes: {"data":{"items":[...],"has_next":...}}, {"items":[...]} and a bare array.
func DecodeHistory(r io.Reader) (*HistoryPage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode history: empty document")
	}

	var page historyItems
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &page.Items); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	} else {
		var env historyEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
		page = env.historyItems
		if env.Data != nil {
			page = *env.Data
		}
	}

	out := &HistoryPage{
		Records: make([]domain.RawSwapRecord, 0, len(page.Items)),
		HasNext: page.HasNext != nil && *page.HasNext,
	}
	for i := range page.Items {
		item := &page.Items[i]
		if t := string(item.TxType); t != "" && t != "swap" {
			out.Skipped++
			continue
		}
		out.Records = append(out.Records, item.record())
	}
	return out, nil
}

// LoadHistoryFile decodes a trade history page from a file.
func LoadHistoryFile(path string) (*HistoryPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	page, err := DecodeHistory(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return page, nil
}

func (it *historyItem) record() domain.RawSwapRecord {
	return domain.RawSwapRecord{
		TxID:                  string(it.TxHash),
		InstructionIndex:      int(it.InsIndex.value.IntPart()),
		InnerInstructionIndex: int(it.InnerInsIndex.value.IntPart()),
		Timestamp:             it.BlockUnixTime.value.IntPart(),
		Source:                string(it.Source),
		Owner:                 string(it.Owner),
		LegA:                  it.Quote.leg(it.QuotePrice),
		LegB:                  it.Base.leg(it.BasePrice),
		DeclaredNotional:      it.VolumeUSD.value,
	}
}

// leg converts one side. fallback is the item-level price of this side.
func (s *historySide) leg(fallback number) domain.AssetLeg {
	decimals := int32(s.Decimals.value.IntPart())

	symbol := strings.TrimSpace(string(s.Symbol))
	if symbol == "" {
		symbol = domain.UnknownSymbol
	}

	var raw string
	if s.Amount.set {
		raw = s.Amount.value.Abs().String()
	}

	net := s.UIChangeAmount.value
	if !s.UIChangeAmount.set && s.ChangeAmount.set {
		net = s.ChangeAmount.value.Shift(-decimals)
	}

	price := s.Price.value
	if !price.IsPositive() && fallback.value.IsPositive() {
		price = fallback.value
	}

	hint := domain.DirectionHint(strings.ToLower(strings.TrimSpace(string(s.TypeSwap))))
	if !hint.IsValid() {
		hint = domain.DirectionHintUnknown
	}

	return domain.AssetLeg{
		AssetID:       strings.TrimSpace(string(s.Address)),
		Symbol:        symbol,
		Decimals:      int(decimals),
		RawAmount:     raw,
		UIAmount:      s.UIAmount.value.Abs(),
		NetChange:     net,
		UnitPrice:     price,
		NearestPrice:  s.NearestPrice.value,
		DirectionHint: hint,
	}
}
