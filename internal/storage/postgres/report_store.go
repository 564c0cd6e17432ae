package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/storage"
)

// ReportStore implements storage.ReportStore using PostgreSQL.
// Summary columns live in pnl_reports; per-asset rows in pnl_report_assets.
type ReportStore struct {
	pool *Pool
}

// NewReportStore creates a new ReportStore.
func NewReportStore(pool *Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReportStore = (*ReportStore)(nil)

const insertReportAssetQuery = `
	INSERT INTO pnl_report_assets (
		report_id, asset_id, symbol, realized_pnl, realized_complete, unrealized_pnl, current_price,
		invested, withdrawn, quantity_bought, quantity_sold,
		buy_count, sell_count, halted, price_incomplete
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

// Insert adds a new report with its asset rows. Returns ErrDuplicateKey if report_id exists.
func (s *ReportStore) Insert(ctx context.Context, r *domain.PnLReport) (err error) {
	if r == nil || r.ReportID == "" || r.Wallet == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_report", start, err) }(time.Now())

	positions, err := marshalJSON(nonNil(r.Positions))
	if err != nil {
		return err
	}
	counts, err := marshalJSON(r.Counts)
	if err != nil {
		return err
	}
	stats, err := marshalJSON(r.Stats)
	if err != nil {
		return err
	}
	diagnostics, err := marshalJSON(r.Diagnostics)
	if err != nil {
		return err
	}

	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO pnl_reports (
				report_id, wallet, settlement_currency,
				realized_pnl, realized_complete, unrealized_pnl, unrealized_complete,
				total_invested, total_withdrawn, totals_complete,
				positions, counts, stats, diagnostics, generated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`,
			r.ReportID, r.Wallet, r.SettlementCurrency,
			r.RealizedPnL, r.RealizedComplete, r.UnrealizedPnL, r.UnrealizedComplete,
			r.TotalInvested, r.TotalWithdrawn, r.TotalsComplete,
			positions, counts, stats, diagnostics, r.GeneratedAt.UTC(),
		)
		if err != nil {
			return writeError("insert report", err)
		}

		batch := &pgx.Batch{}
		for i := range r.Assets {
			a := &r.Assets[i]
			batch.Queue(insertReportAssetQuery,
				r.ReportID, a.AssetID, a.Symbol, a.RealizedPnL, a.RealizedComplete, a.UnrealizedPnL, a.CurrentPrice,
				a.Invested, a.Withdrawn, a.QuantityBought, a.QuantitySold,
				a.BuyCount, a.SellCount, a.Halted, a.PriceIncomplete,
			)
		}
		return execBatch(ctx, tx, batch, "insert report asset")
	})
}

// GetByID retrieves a report by its ID. Returns ErrNotFound if not exists.
func (s *ReportStore) GetByID(ctx context.Context, reportID string) (_ *domain.PnLReport, err error) {
	defer func(start time.Time) { observe("get_report_by_id", start, err) }(time.Now())
	return s.load(ctx, `WHERE report_id = $1`, reportID)
}

// GetLatestByWallet retrieves the most recently generated report of a wallet.
func (s *ReportStore) GetLatestByWallet(ctx context.Context, wallet string) (_ *domain.PnLReport, err error) {
	defer func(start time.Time) { observe("get_latest_report", start, err) }(time.Now())
	return s.load(ctx, `WHERE wallet = $1 ORDER BY generated_at DESC, report_id DESC LIMIT 1`, wallet)
}

func (s *ReportStore) load(ctx context.Context, where string, arg any) (*domain.PnLReport, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT report_id, wallet, settlement_currency,
			realized_pnl, realized_complete, unrealized_pnl, unrealized_complete,
			total_invested, total_withdrawn, totals_complete,
			positions, counts, stats, diagnostics, generated_at
		FROM pnl_reports
	`+where, arg)

	var (
		r                                     domain.PnLReport
		positions, counts, stats, diagnostics []byte
	)
	err := row.Scan(
		&r.ReportID, &r.Wallet, &r.SettlementCurrency,
		&r.RealizedPnL, &r.RealizedComplete, &r.UnrealizedPnL, &r.UnrealizedComplete,
		&r.TotalInvested, &r.TotalWithdrawn, &r.TotalsComplete,
		&positions, &counts, &stats, &diagnostics, &r.GeneratedAt,
	)
	if err != nil {
		return nil, readError("get report", err)
	}

	if err := unmarshalJSON(positions, &r.Positions); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(counts, &r.Counts); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(stats, &r.Stats); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(diagnostics, &r.Diagnostics); err != nil {
		return nil, err
	}

	assets, err := s.loadAssets(ctx, r.ReportID)
	if err != nil {
		return nil, err
	}
	r.Assets = assets

	return &r, nil
}

func (s *ReportStore) loadAssets(ctx context.Context, reportID string) ([]domain.AssetPnL, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT asset_id, symbol, realized_pnl, realized_complete, unrealized_pnl, current_price,
			invested, withdrawn, quantity_bought, quantity_sold,
			buy_count, sell_count, halted, price_incomplete
		FROM pnl_report_assets
		WHERE report_id = $1
		ORDER BY asset_id ASC
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("get report assets: %w", err)
	}
	defer rows.Close()

	assets := []domain.AssetPnL{}
	for rows.Next() {
		var a domain.AssetPnL
		err := rows.Scan(
			&a.AssetID, &a.Symbol, &a.RealizedPnL, &a.RealizedComplete, &a.UnrealizedPnL, &a.CurrentPrice,
			&a.Invested, &a.Withdrawn, &a.QuantityBought, &a.QuantitySold,
			&a.BuyCount, &a.SellCount, &a.Halted, &a.PriceIncomplete,
		)
		if err != nil {
			return nil, fmt.Errorf("scan report asset row: %w", err)
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report asset rows: %w", err)
	}
	return assets, nil
}

func nonNil(positions []domain.Position) []domain.Position {
	if positions == nil {
		return []domain.Position{}
	}
	return positions
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal report column: %w", err)
	}
	return string(data), nil
}

func unmarshalJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal report column: %w", err)
	}
	return nil
}
