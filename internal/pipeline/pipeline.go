// Package pipeline wires the normalization, event, ledger and report stages
// into a single wallet P&L pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"solana-wallet-pnl/internal/config"
	"solana-wallet-pnl/internal/diagnostics"
	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/events"
	"solana-wallet-pnl/internal/ledger"
	"solana-wallet-pnl/internal/normalization"
	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/pnl"
	"solana-wallet-pnl/internal/price"
)

// ErrEmptyInput is returned when a run is started without any records.
var ErrEmptyInput = errors.New("empty input")

// Phase names used for duration metrics.
const (
	PhaseNormalize = "normalize"
	PhaseAggregate = "aggregate"
	PhaseEvents    = "events"
	PhaseLedger    = "ledger"
	PhaseReport    = "report"
)

// Pipeline runs one full pass over a materialized record set.
type Pipeline struct {
	cfg     config.Config
	prices  price.Source
	logger  *log.Logger
	metrics *observability.Metrics
	clock   func() time.Time
}

// New creates a pipeline. A nil price source leaves unrealized P&L unknown for
// every open position.
func New(cfg config.Config, prices price.Source) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		prices: prices,
		logger: log.New(io.Discard, "", 0),
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// WithLogger sets the logger used by every stage.
func (p *Pipeline) WithLogger(logger *log.Logger) *Pipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// WithMetrics enables metric recording.
func (p *Pipeline) WithMetrics(metrics *observability.Metrics) *Pipeline {
	p.metrics = metrics
	return p
}

// WithClock sets a custom clock for deterministic timeframe cutoffs and
// report timestamps.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// ForWallet returns a copy of the pipeline reporting on wallet.
func (p *Pipeline) ForWallet(wallet string) *Pipeline {
	cp := *p
	cp.cfg.Wallet = wallet
	return &cp
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// Run executes the full pass:
//  1. Drop records outside the timeframe
//  2. Validate and deduplicate records
//  3. Aggregate records into trades and resolve directions
//  4. Generate financial events
//  5. Apply events to the per-asset FIFO ledgers
//  6. Assemble the report
//
// Bad records and trades are reported as diagnostics. Only an invalid config,
// an empty input or a cancelled context fail the run.
func (p *Pipeline) Run(ctx context.Context, records []domain.RawSwapRecord) (report *domain.PnLReport, err error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	started := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		if p.metrics != nil {
			p.metrics.RecordPipelineRun(status, p.clock())
			p.metrics.RecordPipelinePhase("total", time.Since(started))
		}
	}()

	now := p.clock()
	diag := diagnostics.NewCollector(p.cfg.MaxDiagnosticSamples, p.logger, p.metrics)
	counts := domain.ProcessingCounts{RecordsIn: len(records)}

	// 1-2. Normalize records
	phase := time.Now()
	kept, filtered, err := normalization.FilterByTimeframe(records, p.cfg.Timeframe, now)
	if err != nil {
		return nil, fmt.Errorf("filter timeframe: %w", err)
	}
	counts.RecordsFiltered = filtered
	valid := normalization.ValidateRecords(kept, diag)
	unique := normalization.Deduplicate(valid)
	counts.DuplicatesRemoved = len(valid) - len(unique)
	p.observePhase(PhaseNormalize, phase)

	// 3. Aggregate trades
	phase = time.Now()
	trades, dropped := normalization.AggregateTrades(unique, p.cfg, diag)
	counts.TradesAggregated = len(trades)
	counts.TradesDropped = dropped
	resolved := normalization.ResolveAll(trades, diag)
	p.observePhase(PhaseAggregate, phase)

	// 4. Generate events
	phase = time.Now()
	evs := events.NewGenerator(p.cfg, diag).GenerateAll(resolved)
	counts.EventsGenerated = len(evs)
	p.observePhase(PhaseEvents, phase)

	// 5. Apply to ledgers
	phase = time.Now()
	ledgerResult, err := ledger.Run(ctx, evs, p.cfg.LedgerWorkers, diag)
	if err != nil {
		return nil, fmt.Errorf("run ledger: %w", err)
	}
	counts.EventsApplied = ledgerResult.EventsApplied
	p.observePhase(PhaseLedger, phase)

	// 6. Assemble report
	phase = time.Now()
	agg := pnl.NewAggregator(p.cfg, p.prices, p.logger, p.metrics).WithClock(func() time.Time { return now })
	report, err = agg.Build(ctx, pnl.Input{
		Events:      evs,
		Ledger:      ledgerResult,
		Counts:      counts,
		Diagnostics: diag.Snapshot(),
	})
	if err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}
	p.observePhase(PhaseReport, phase)

	p.recordCounts(counts, evs, ledgerResult)
	p.logger.Printf("[pipeline] wallet=%s records=%d filtered=%d duplicates=%d trades=%d dropped=%d events=%d diagnostics=%d",
		p.cfg.Wallet, counts.RecordsIn, counts.RecordsFiltered, counts.DuplicatesRemoved,
		counts.TradesAggregated, counts.TradesDropped, counts.EventsGenerated, report.Diagnostics.Total())
	return report, nil
}

func (p *Pipeline) observePhase(name string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordPipelinePhase(name, time.Since(start))
	}
}

func (p *Pipeline) recordCounts(counts domain.ProcessingCounts, evs []domain.FinancialEvent, res *ledger.Result) {
	m := p.metrics
	if m == nil {
		return
	}
	m.RecordsIngested.Add(float64(counts.RecordsIn))
	m.RecordsFiltered.Add(float64(counts.RecordsFiltered))
	m.DuplicatesRemoved.Add(float64(counts.DuplicatesRemoved))
	m.TradesAggregated.Add(float64(counts.TradesAggregated))
	m.TradesDropped.Add(float64(counts.TradesDropped))
	m.EventsApplied.Add(float64(counts.EventsApplied))
	for i := range evs {
		m.RecordEventGenerated(evs[i].Type.String())
	}
	for i := range res.Assets {
		if res.Assets[i].Halted {
			m.AssetsHalted.Inc()
		}
	}
}
