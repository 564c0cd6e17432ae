// Package pnl assembles the wallet report from ledger state and live prices.
package pnl

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/config"
	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/ledger"
	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/price"
)

// Input is everything the aggregator needs from the earlier stages.
type Input struct {
	Events      []domain.FinancialEvent
	Ledger      *ledger.Result
	Counts      domain.ProcessingCounts
	Diagnostics domain.Diagnostics
}

// Aggregator builds PnLReports.
type Aggregator struct {
	cfg     config.Config
	prices  price.Source
	logger  *log.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewAggregator creates an aggregator. A nil price source leaves every open
// position's unrealized P&L unknown.
func NewAggregator(cfg config.Config, prices price.Source, logger *log.Logger, metrics *observability.Metrics) *Aggregator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Aggregator{
		cfg:     cfg,
		prices:  prices,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// WithClock sets the clock used for GeneratedAt.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Build assembles the report. The price source is consulted once per asset
// with open lots. Only context errors from the source fail the build.
func (a *Aggregator) Build(ctx context.Context, in Input) (*domain.PnLReport, error) {
	report := &domain.PnLReport{
		ReportID:           uuid.NewString(),
		Wallet:             a.cfg.Wallet,
		SettlementCurrency: a.cfg.SettlementCurrency,
		RealizedPnL:        decimal.Zero,
		RealizedComplete:   true,
		UnrealizedPnL:      decimal.Zero,
		UnrealizedComplete: true,
		TotalInvested:      decimal.Zero,
		TotalWithdrawn:     decimal.Zero,
		TotalsComplete:     true,
		Counts:             in.Counts,
		Diagnostics:        in.Diagnostics,
		GeneratedAt:        a.now().UTC(),
	}

	flows := summarizeEvents(in.Events)

	var results []ledger.AssetResult
	if in.Ledger != nil {
		results = in.Ledger.Assets
	}

	var matched []domain.MatchedTrade
	for i := range results {
		res := &results[i]
		f, ok := flows[res.AssetID]
		if !ok {
			f = &flow{}
		}

		asset := domain.AssetPnL{
			AssetID:          res.AssetID,
			Symbol:           res.Symbol,
			RealizedPnL:      res.RealizedPnL,
			RealizedComplete: res.RealizedComplete(),
			Invested:         f.invested,
			Withdrawn:        f.withdrawn,
			QuantityBought:   f.bought,
			QuantitySold:     f.sold,
			BuyCount:         f.buys,
			SellCount:        f.sells,
			Halted:           res.Halted,
			PriceIncomplete:  f.unpriced,
		}
		report.RealizedPnL = report.RealizedPnL.Add(res.RealizedPnL)
		if !asset.RealizedComplete {
			report.RealizedComplete = false
		}
		matched = append(matched, res.Matched...)

		if res.HasOpenLots() {
			pos := res.Position()
			report.Positions = append(report.Positions, pos)

			current, ok, err := a.currentPrice(ctx, res.AssetID)
			if err != nil {
				return nil, err
			}
			if ok {
				asset.CurrentPrice = &current
			}
			// Unrealized P&L needs both a live price and a known cost for every lot.
			switch {
			case pos.CostUnknown:
				asset.PriceIncomplete = true
				report.UnrealizedComplete = false
			case !ok:
				report.UnrealizedComplete = false
			default:
				unrealized := pos.TotalQuantity.Mul(current).Sub(pos.TotalCostBasis)
				asset.UnrealizedPnL = &unrealized
				report.UnrealizedPnL = report.UnrealizedPnL.Add(unrealized)
			}
		}

		report.Assets = append(report.Assets, asset)
	}

	for _, f := range flows {
		report.TotalInvested = report.TotalInvested.Add(f.invested)
		report.TotalWithdrawn = report.TotalWithdrawn.Add(f.withdrawn)
		if f.unpriced {
			report.TotalsComplete = false
		}
	}

	report.Stats = ComputeStats(matched, report.TotalPnL(), report.TotalInvested)

	if a.metrics != nil {
		a.metrics.OpenPositions.Set(float64(len(report.Positions)))
	}
	a.logger.Printf("report %s: %d assets, %d open positions, realized %s (complete=%t), unrealized %s (complete=%t)",
		report.ReportID, len(report.Assets), len(report.Positions),
		report.RealizedPnL.StringFixed(2), report.RealizedComplete,
		report.UnrealizedPnL.StringFixed(2), report.UnrealizedComplete)
	return report, nil
}

// currentPrice looks up one asset. Unavailable and failed lookups both yield
// ok=false; context errors are returned.
func (a *Aggregator) currentPrice(ctx context.Context, assetID string) (decimal.Decimal, bool, error) {
	if a.prices == nil {
		a.recordLookup("unavailable")
		return decimal.Zero, false, nil
	}
	p, err := a.prices.Price(ctx, assetID)
	switch {
	case err == nil && p.IsPositive():
		a.recordLookup("hit")
		return p, true, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return decimal.Zero, false, err
	case err != nil && !errors.Is(err, price.ErrUnavailable):
		a.logger.Printf("price lookup for %s failed: %v", assetID, err)
		a.recordLookup("error")
		return decimal.Zero, false, nil
	default:
		a.recordLookup("unavailable")
		return decimal.Zero, false, nil
	}
}

func (a *Aggregator) recordLookup(result string) {
	if a.metrics != nil {
		a.metrics.PriceLookups.WithLabelValues(result).Inc()
	}
}

// flow sums the events of one asset. Unpriced events add quantity but no
// value.
type flow struct {
	invested  decimal.Decimal
	withdrawn decimal.Decimal
	bought    decimal.Decimal
	sold      decimal.Decimal
	buys      int
	sells     int
	unpriced  bool
}

func summarizeEvents(events []domain.FinancialEvent) map[string]*flow {
	flows := make(map[string]*flow)
	for i := range events {
		ev := &events[i]
		f, ok := flows[ev.AssetID]
		if !ok {
			f = &flow{}
			flows[ev.AssetID] = f
		}
		value := ev.Value
		if ev.PriceUnknown {
			value = decimal.Zero
			f.unpriced = true
		}
		switch ev.Type {
		case domain.EventTypeBuy:
			f.invested = f.invested.Add(value)
			f.bought = f.bought.Add(ev.AssetAmount)
			f.buys++
		case domain.EventTypeSell:
			f.withdrawn = f.withdrawn.Add(value)
			f.sold = f.sold.Add(ev.AssetAmount)
			f.sells++
		}
	}
	return flows
}
