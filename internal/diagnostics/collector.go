// Package diagnostics collects recoverable data problems found during a run.
package diagnostics

import (
	"fmt"
	"io"
	"log"
	"sync"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/observability"
)

// Recorder receives diagnostics from the pipeline stages.
type Recorder interface {
	Record(kind domain.DiagnosticKind, txID, assetID, format string, args ...any)
}

// Collector counts every diagnostic and keeps up to maxSamples of them.
// Safe for concurrent use by the per-asset ledger workers.
type Collector struct {
	mu         sync.Mutex
	counts     map[domain.DiagnosticKind]int
	samples    []domain.Diagnostic
	maxSamples int
	logger     *log.Logger
	metrics    *observability.Metrics
}

// NewCollector creates a collector. A nil logger discards output; nil metrics
// disables metric recording.
func NewCollector(maxSamples int, logger *log.Logger, metrics *observability.Metrics) *Collector {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Collector{
		counts:     make(map[domain.DiagnosticKind]int),
		maxSamples: maxSamples,
		logger:     logger,
		metrics:    metrics,
	}
}

// Record registers one occurrence of kind.
func (c *Collector) Record(kind domain.DiagnosticKind, txID, assetID, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	c.mu.Lock()
	c.counts[kind]++
	if len(c.samples) < c.maxSamples {
		c.samples = append(c.samples, domain.Diagnostic{
			Kind:    kind,
			TxID:    txID,
			AssetID: assetID,
			Message: msg,
		})
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.Diagnostics.WithLabelValues(kind.String()).Inc()
	}
	c.logger.Printf("diagnostic %s tx=%s asset=%s: %s", kind, txID, assetID, msg)
}

// Count returns the number of occurrences of kind so far.
func (c *Collector) Count(kind domain.DiagnosticKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[kind]
}

// Snapshot returns the collected diagnostics. Every known kind is present in
// Counts, zero if never recorded.
func (c *Collector) Snapshot() domain.Diagnostics {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts := make(map[domain.DiagnosticKind]int, len(domain.AllDiagnosticKinds))
	for _, k := range domain.AllDiagnosticKinds {
		counts[k] = c.counts[k]
	}
	for k, n := range c.counts {
		counts[k] = n
	}
	samples := make([]domain.Diagnostic, len(c.samples))
	copy(samples, c.samples)

	return domain.Diagnostics{Counts: counts, Samples: samples}
}

// Discard is a Recorder that drops everything.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(domain.DiagnosticKind, string, string, string, ...any) {}

var _ Recorder = (*Collector)(nil)
