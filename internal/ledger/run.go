package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"solana-wallet-pnl/internal/diagnostics"
	"solana-wallet-pnl/internal/domain"
)

// Result is the merged outcome of a ledger pass.
type Result struct {
	Assets        []AssetResult // sorted by asset ID
	EventsApplied int
}

// Run applies sorted events with one goroutine per asset, at most workers at
// a time. Each worker owns its asset's book; diagnostics are buffered and
// replayed in asset order so repeated runs report them identically.
func Run(ctx context.Context, events []domain.FinancialEvent, workers int, diag diagnostics.Recorder) (*Result, error) {
	if diag == nil {
		diag = diagnostics.Discard
	}
	if workers < 1 {
		workers = 1
	}

	byAsset := make(map[string][]*domain.FinancialEvent)
	for i := range events {
		byAsset[events[i].AssetID] = append(byAsset[events[i].AssetID], &events[i])
	}
	assets := make([]string, 0, len(byAsset))
	for id := range byAsset {
		assets = append(assets, id)
	}
	sort.Strings(assets)

	results := make([]AssetResult, len(assets))
	buffers := make([]*bufferedRecorder, len(assets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, assetID := range assets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf := &bufferedRecorder{}
			l := New(buf)
			for _, ev := range byAsset[assetID] {
				if err := l.Apply(ev); err != nil && !isRecoverable(err) {
					return fmt.Errorf("apply %s event for %s in %s: %w", ev.Type, assetID, ev.TxID, err)
				}
			}
			results[i] = l.books[assetID].result()
			buffers[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{Assets: results}
	for i := range results {
		buffers[i].replay(diag)
		out.EventsApplied += results[i].EventsApplied
	}
	return out, nil
}

// RunSequential applies events on a single ledger in input order.
func RunSequential(events []domain.FinancialEvent, diag diagnostics.Recorder) (*Result, error) {
	l := New(diag)
	for i := range events {
		if err := l.Apply(&events[i]); err != nil && !isRecoverable(err) {
			return nil, fmt.Errorf("apply %s event for %s in %s: %w", events[i].Type, events[i].AssetID, events[i].TxID, err)
		}
	}
	out := &Result{Assets: l.Results()}
	for i := range out.Assets {
		out.EventsApplied += out.Assets[i].EventsApplied
	}
	return out, nil
}

// isRecoverable reports whether err only affects a single event or asset.
func isRecoverable(err error) bool {
	return errors.Is(err, ErrNonChronological) ||
		errors.Is(err, ErrHalted) ||
		errors.Is(err, ErrZeroQuantity)
}

type bufferedEntry struct {
	kind    domain.DiagnosticKind
	txID    string
	assetID string
	msg     string
}

// bufferedRecorder holds one worker's diagnostics until merge.
type bufferedRecorder struct {
	entries []bufferedEntry
}

func (b *bufferedRecorder) Record(kind domain.DiagnosticKind, txID, assetID, format string, args ...any) {
	b.entries = append(b.entries, bufferedEntry{
		kind:    kind,
		txID:    txID,
		assetID: assetID,
		msg:     fmt.Sprintf(format, args...),
	})
}

func (b *bufferedRecorder) replay(dst diagnostics.Recorder) {
	for _, e := range b.entries {
		dst.Record(e.kind, e.txID, e.assetID, "%s", e.msg)
	}
}
