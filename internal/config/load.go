package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PNL_"

// fileConfig is the YAML-serializable configuration file structure.
// Numbers are read as strings so they parse exactly as decimals.
type fileConfig struct {
	Wallet               string            `yaml:"wallet"`
	SettlementCurrency   string            `yaml:"settlement_currency"`
	Numeraire            fileNumeraire     `yaml:"numeraire"`
	ZeroTolerance        string            `yaml:"zero_tolerance"`
	PriceDeviationRatio  string            `yaml:"price_deviation_ratio"`
	Timeframe            fileTimeframe     `yaml:"timeframe"`
	LedgerWorkers        int               `yaml:"ledger_workers"`
	MaxDiagnosticSamples *int              `yaml:"max_diagnostic_samples"`
	FallbackPrices       map[string]string `yaml:"fallback_prices"`
	TraderFilter         *fileTraderFilter `yaml:"trader_filter"`
}

type fileNumeraire struct {
	AssetID    string `yaml:"asset_id"`
	Symbol     string `yaml:"symbol"`
	FixedPrice string `yaml:"fixed_price"`
}

type fileTimeframe struct {
	Mode  string `yaml:"mode"`
	Value string `yaml:"value"`
}

type fileTraderFilter struct {
	Enabled            bool   `yaml:"enabled"`
	MinRealizedPnL     string `yaml:"min_realized_pnl"`
	MinTrades          int    `yaml:"min_trades"`
	MinWinningTrades   int    `yaml:"min_winning_trades"`
	MinWinRatePct      string `yaml:"min_win_rate_pct"`
	MinROIPct          string `yaml:"min_roi_pct"`
	MinInvested        string `yaml:"min_invested"`
	MinAvgHold         string `yaml:"min_avg_hold"`
	MaxAvgHold         string `yaml:"max_avg_hold"`
	ExcludeHoldersOnly bool   `yaml:"exclude_holders_only"`
	ExcludeZeroPnL     bool   `yaml:"exclude_zero_pnl"`
}

// traderFilter converts the section. Empty values keep the defaults.
func (f *fileTraderFilter) traderFilter() (TraderFilter, error) {
	out := DefaultTraderFilter()
	out.Enabled = f.Enabled
	out.MinTrades = f.MinTrades
	out.MinWinningTrades = f.MinWinningTrades
	out.ExcludeHoldersOnly = f.ExcludeHoldersOnly
	out.ExcludeZeroPnL = f.ExcludeZeroPnL

	decimals := []struct {
		field string
		raw   string
		dst   *decimal.Decimal
	}{
		{"min_realized_pnl", f.MinRealizedPnL, &out.MinRealizedPnL},
		{"min_win_rate_pct", f.MinWinRatePct, &out.MinWinRatePct},
		{"min_roi_pct", f.MinROIPct, &out.MinROIPct},
		{"min_invested", f.MinInvested, &out.MinInvested},
	}
	for _, d := range decimals {
		if d.raw == "" {
			continue
		}
		v, err := parseDecimal("trader_filter."+d.field, d.raw)
		if err != nil {
			return TraderFilter{}, err
		}
		*d.dst = v
	}

	durations := []struct {
		field string
		raw   string
		dst   *time.Duration
	}{
		{"min_avg_hold", f.MinAvgHold, &out.MinAvgHold},
		{"max_avg_hold", f.MaxAvgHold, &out.MaxAvgHold},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return TraderFilter{}, fmt.Errorf("%w: trader_filter.%s: %v", ErrInvalidConfig, d.field, err)
		}
		*d.dst = v
	}
	return out, nil
}

// Load builds a Config from defaults, an optional YAML file and PNL_*
// environment overrides, then validates it. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg, err := applyEnv(cfg, os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if err := cfg.ValidateAddresses(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return Config{}, fmt.Errorf("%w: could not unmarshal as YAML: %v", ErrInvalidConfig, err)
	}

	if fc.Wallet != "" {
		cfg.Wallet = fc.Wallet
	}
	if fc.SettlementCurrency != "" {
		cfg.SettlementCurrency = fc.SettlementCurrency
	}
	if fc.Numeraire.AssetID != "" {
		cfg.NumeraireAssetID = fc.Numeraire.AssetID
	}
	if fc.Numeraire.Symbol != "" {
		cfg.NumeraireSymbol = fc.Numeraire.Symbol
	}
	if fc.Numeraire.FixedPrice != "" {
		d, err := parseDecimal("numeraire.fixed_price", fc.Numeraire.FixedPrice)
		if err != nil {
			return Config{}, err
		}
		cfg.NumeraireFixedPrice = decimal.NewNullDecimal(d)
	}
	if fc.ZeroTolerance != "" {
		d, err := parseDecimal("zero_tolerance", fc.ZeroTolerance)
		if err != nil {
			return Config{}, err
		}
		cfg.ZeroTolerance = d
	}
	if fc.PriceDeviationRatio != "" {
		d, err := parseDecimal("price_deviation_ratio", fc.PriceDeviationRatio)
		if err != nil {
			return Config{}, err
		}
		cfg.PriceDeviationRatio = d
	}
	if fc.Timeframe.Mode != "" {
		cfg.Timeframe = Timeframe{Mode: TimeframeMode(fc.Timeframe.Mode), Value: fc.Timeframe.Value}
	}
	if fc.LedgerWorkers != 0 {
		cfg.LedgerWorkers = fc.LedgerWorkers
	}
	if fc.MaxDiagnosticSamples != nil {
		cfg.MaxDiagnosticSamples = *fc.MaxDiagnosticSamples
	}
	if len(fc.FallbackPrices) > 0 {
		prices := make(map[string]decimal.Decimal, len(fc.FallbackPrices))
		for assetID, raw := range fc.FallbackPrices {
			d, err := parseDecimal("fallback_prices."+assetID, raw)
			if err != nil {
				return Config{}, err
			}
			prices[assetID] = d
		}
		cfg = cfg.WithFallbackPrices(prices)
	}
	if fc.TraderFilter != nil {
		tf, err := fc.TraderFilter.traderFilter()
		if err != nil {
			return Config{}, err
		}
		cfg.TraderFilter = tf
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

// applyEnv overlays PNL_* variables onto cfg.
func applyEnv(cfg Config, lookup lookupFunc) (Config, error) {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dec := func(name string, dst *decimal.Decimal) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := parseDecimal(EnvPrefix+name, v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
	integer := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("WALLET", &cfg.Wallet)
	str("SETTLEMENT_CURRENCY", &cfg.SettlementCurrency)
	str("NUMERAIRE_ASSET_ID", &cfg.NumeraireAssetID)
	str("NUMERAIRE_SYMBOL", &cfg.NumeraireSymbol)

	var fixed decimal.Decimal
	if v, ok := lookup(EnvPrefix + "NUMERAIRE_FIXED_PRICE"); ok && strings.TrimSpace(v) != "" {
		if err := dec("NUMERAIRE_FIXED_PRICE", &fixed); err != nil {
			return Config{}, err
		}
		cfg.NumeraireFixedPrice = decimal.NewNullDecimal(fixed)
	}
	if err := dec("ZERO_TOLERANCE", &cfg.ZeroTolerance); err != nil {
		return Config{}, err
	}
	if err := dec("PRICE_DEVIATION_RATIO", &cfg.PriceDeviationRatio); err != nil {
		return Config{}, err
	}
	if err := integer("LEDGER_WORKERS", &cfg.LedgerWorkers); err != nil {
		return Config{}, err
	}
	if err := integer("MAX_DIAGNOSTIC_SAMPLES", &cfg.MaxDiagnosticSamples); err != nil {
		return Config{}, err
	}

	if v, ok := lookup(EnvPrefix + "TRADER_FILTER_ENABLED"); ok && strings.TrimSpace(v) != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %sTRADER_FILTER_ENABLED: %v", ErrInvalidConfig, EnvPrefix, err)
		}
		cfg.TraderFilter.Enabled = enabled
	}

	mode := string(cfg.Timeframe.Mode)
	str("TIMEFRAME_MODE", &mode)
	cfg.Timeframe.Mode = TimeframeMode(mode)
	str("TIMEFRAME", &cfg.Timeframe.Value)

	return cfg, nil
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field, err)
	}
	return d, nil
}
