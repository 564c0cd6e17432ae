// Package main provides the wallet P&L command:
// - Ingestion: history files into the raw swap store
// - Pipeline: FIFO P&L over the stored records of one wallet or a batch
// - Qualification: optional trader scoring of a batch
// - Output: JSON report, stored report and per-asset snapshots
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solana-wallet-pnl/internal/address"
	"solana-wallet-pnl/internal/config"
	"solana-wallet-pnl/internal/domain"
	"solana-wallet-pnl/internal/ingestion"
	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/pipeline"
	"solana-wallet-pnl/internal/price"
	"solana-wallet-pnl/internal/qualify"
	"solana-wallet-pnl/internal/storage"
	chstore "solana-wallet-pnl/internal/storage/clickhouse"
	"solana-wallet-pnl/internal/storage/memory"
	"solana-wallet-pnl/internal/storage/migrations"
	pgstore "solana-wallet-pnl/internal/storage/postgres"
)

// stores holds the storage implementations used by one run.
type stores struct {
	records   storage.RawSwapStore
	cursors   storage.IngestionCursorStore
	reports   storage.ReportStore
	snapshots storage.AssetSnapshotStore
}

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	configPath := flag.String("config", os.Getenv("PNL_CONFIG"), "YAML config file")
	input := flag.String("input", os.Getenv("PNL_INPUT"), "Comma-separated trade history JSON files to ingest")
	pricesPath := flag.String("prices", os.Getenv("PNL_PRICES"), "JSON file mapping asset IDs to current prices")
	priceTTL := flag.Duration("price-ttl", 5*time.Minute, "Cache lifetime of current price lookups")
	wallet := flag.String("wallet", os.Getenv("PNL_WALLET"), "Wallet address to report on (overrides config)")
	walletList := flag.String("wallets", os.Getenv("PNL_WALLETS"), "Comma-separated wallet batch (overrides --wallet)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL and ClickHouse")
	metricsAddr := flag.String("metrics-addr", os.Getenv("PNL_METRICS_ADDR"), "Prometheus metrics HTTP address (empty to disable)")
	output := flag.String("output", "-", "Report output path, - for stdout")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[pnl] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *wallet != "" {
		cfg.Wallet = *wallet
	}
	wallets := splitList(*walletList)
	if len(wallets) == 0 && cfg.Wallet != "" {
		wallets = []string{cfg.Wallet}
	}
	if len(wallets) == 0 {
		logger.Fatal("--wallet or --wallets is required (or set wallet in the config file)")
	}
	for _, w := range wallets {
		if err := address.ValidateWallet(w); err != nil {
			logger.Fatalf("Invalid wallet: %v", err)
		}
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go serveMetrics(logger, *metricsAddr)
	}

	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg, runOptions{
		wallets:       wallets,
		inputs:        splitList(*input),
		pricesPath:    *pricesPath,
		priceTTL:      *priceTTL,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useMemory:     *useMemory,
		output:        *output,
	}); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Println("Interrupted")
			os.Exit(130)
		}
		logger.Fatalf("Error: %v", err)
	}
}

type runOptions struct {
	wallets       []string
	inputs        []string
	pricesPath    string
	priceTTL      time.Duration
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
	output        string
}

func run(ctx context.Context, logger *log.Logger, cfg config.Config, opts runOptions) error {
	st, cleanup, err := createStores(ctx, opts.postgresDSN, opts.clickhouseDSN, opts.useMemory)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	// Ingest history files
	if len(opts.inputs) > 0 {
		manager := ingestion.NewManager(ingestion.ManagerOptions{
			Source:  ingestion.NewFileSource(opts.inputs...),
			Store:   st.records,
			Cursors: st.cursors,
			Logger:  logger,
		})
		for _, wallet := range opts.wallets {
			res, err := manager.IngestIncremental(ctx, wallet, math.MaxInt64)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", wallet, err)
			}
			logger.Printf("Ingested %d of %d records for %s (%d duplicates)", res.Inserted, res.Fetched, wallet, res.DuplicatesSkipped)
		}
	}

	// Current prices for open positions
	var prices price.Source
	if opts.pricesPath != "" {
		static, err := price.LoadFile(opts.pricesPath)
		if err != nil {
			return err
		}
		logger.Printf("Loaded %d current prices from %s", static.Len(), opts.pricesPath)
		prices = price.NewCachedSource(static, opts.priceTTL)
	}

	p := pipeline.New(cfg, prices).
		WithLogger(logger).
		WithMetrics(observability.DefaultMetrics)
	runner := pipeline.NewRunner(p, st.records, st.reports, st.snapshots)

	if len(opts.wallets) == 1 && !cfg.TraderFilter.Enabled {
		report, err := runner.RunWallet(ctx, opts.wallets[0])
		if err != nil {
			return fmt.Errorf("run pipeline: %w", err)
		}
		logSummary(logger, report)
		return writeJSON(report, opts.output)
	}

	if cfg.TraderFilter.Enabled {
		runner.WithTraderFilter(qualify.NewFilter(cfg.TraderFilter, logger))
	}
	batch, err := runner.RunBatch(ctx, opts.wallets)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}
	for _, report := range batch.Reports {
		logSummary(logger, report)
	}
	for i, c := range batch.Qualified {
		logger.Printf("  #%d %s score=%d risk=%s style=%s recommended=%t",
			i+1, c.Assessment.Wallet, c.Assessment.Score, c.Assessment.Risk, c.Assessment.Style, c.Assessment.CopyTradeRecommended)
	}
	return writeJSON(batch, opts.output)
}

// createStores returns memory stores or database-backed stores with migrations applied.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*stores, func(), error) {
	if useMemory {
		st := &stores{
			records:   memory.NewRawSwapStore(),
			cursors:   memory.NewIngestionCursorStore(),
			reports:   memory.NewReportStore(),
			snapshots: memory.NewAssetSnapshotStore(),
		}
		return st, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	st := &stores{
		// PostgreSQL stores (source data + reports)
		records: pgstore.NewRawSwapStore(pool),
		cursors: pgstore.NewIngestionCursorStore(pool),
		reports: pgstore.NewReportStore(pool),

		// ClickHouse stores (snapshot history)
		snapshots: chstore.NewAssetSnapshotStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return st, cleanup, nil
}

func serveMetrics(logger *log.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}

func logSummary(logger *log.Logger, r *domain.PnLReport) {
	realized := r.RealizedPnL.StringFixed(2)
	if !r.RealizedComplete {
		realized += " (incomplete)"
	}
	unrealized := r.UnrealizedPnL.StringFixed(2)
	if !r.UnrealizedComplete {
		unrealized += " (incomplete)"
	}
	logger.Printf("Report %s for %s: realized %s %s, unrealized %s, invested %s, withdrawn %s",
		r.ReportID, r.Wallet, realized, r.SettlementCurrency, unrealized,
		r.TotalInvested.StringFixed(2), r.TotalWithdrawn.StringFixed(2))
	for _, kind := range domain.AllDiagnosticKinds {
		if n := r.Diagnostics.Count(kind); n > 0 {
			logger.Printf("  %s: %d", kind, n)
		}
	}
}

// writeJSON writes v as indented JSON to path, or stdout for "-".
func writeJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
