// Package config holds the immutable run configuration shared by the event
// generator, the ledger fan-out and the P&L aggregator.
package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/address"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Defaults
const (
	DefaultSettlementCurrency   = "USD"
	DefaultNumeraireSymbol      = "SOL"
	DefaultLedgerWorkers        = 4
	DefaultMaxDiagnosticSamples = 50
)

var (
	// DefaultZeroTolerance is the absolute net-change threshold below which an
	// asset is treated as a pass-through leg.
	DefaultZeroTolerance = decimal.New(1, -9)
	// DefaultPriceDeviationRatio is the max/min ratio above which a leg's unit
	// price is replaced by its nearest price.
	DefaultPriceDeviationRatio = decimal.RequireFromString("1.25")
)

// Config is built once per run and never mutated afterwards.
// Use the accessor methods for map-valued fields.
type Config struct {
	Wallet               string              // wallet under analysis (optional)
	SettlementCurrency   string              // label of the currency all values are expressed in
	NumeraireAssetID     string              // reference asset for single-sided trades
	NumeraireSymbol      string              // display symbol of the numeraire
	NumeraireFixedPrice  decimal.NullDecimal // identity price for a stable numeraire; invalid = use record prices
	ZeroTolerance        decimal.Decimal     // |net| <= tolerance is dropped during aggregation
	PriceDeviationRatio  decimal.Decimal     // unit vs nearest price switch threshold
	Timeframe            Timeframe           // optional record cutoff
	LedgerWorkers        int                 // per-asset ledger fan-out bound
	MaxDiagnosticSamples int                 // samples kept per report
	TraderFilter         TraderFilter        // batch qualification thresholds

	fallbackPrices map[string]decimal.Decimal
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		SettlementCurrency:   DefaultSettlementCurrency,
		NumeraireAssetID:     address.WrappedSOLMint,
		NumeraireSymbol:      DefaultNumeraireSymbol,
		ZeroTolerance:        DefaultZeroTolerance,
		PriceDeviationRatio:  DefaultPriceDeviationRatio,
		Timeframe:            Timeframe{Mode: TimeframeNone},
		LedgerWorkers:        DefaultLedgerWorkers,
		MaxDiagnosticSamples: DefaultMaxDiagnosticSamples,
		TraderFilter:         DefaultTraderFilter(),
	}
}

// WithFallbackPrices returns a copy of c with the given per-asset fallback prices.
// Each price may only be used for its own asset.
func (c Config) WithFallbackPrices(prices map[string]decimal.Decimal) Config {
	cp := make(map[string]decimal.Decimal, len(prices))
	for k, v := range prices {
		cp[k] = v
	}
	c.fallbackPrices = cp
	return c
}

// FallbackPrice returns the configured fallback price for assetID.
func (c Config) FallbackPrice(assetID string) (decimal.Decimal, bool) {
	p, ok := c.fallbackPrices[assetID]
	if !ok || !p.IsPositive() {
		return decimal.Zero, false
	}
	return p, true
}

// FallbackPrices returns a copy of the configured fallback prices.
func (c Config) FallbackPrices() map[string]decimal.Decimal {
	cp := make(map[string]decimal.Decimal, len(c.fallbackPrices))
	for k, v := range c.fallbackPrices {
		cp[k] = v
	}
	return cp
}

// IsNumeraire reports whether assetID is the configured numeraire.
func (c Config) IsNumeraire(assetID string) bool {
	return assetID == c.NumeraireAssetID
}

// Validate checks value ranges. Asset and wallet identifiers are treated as
// opaque here; see ValidateAddresses.
func (c Config) Validate() error {
	if c.NumeraireAssetID == "" {
		return fmt.Errorf("%w: numeraire asset id is required", ErrInvalidConfig)
	}
	if c.SettlementCurrency == "" {
		return fmt.Errorf("%w: settlement currency is required", ErrInvalidConfig)
	}
	if c.NumeraireFixedPrice.Valid && !c.NumeraireFixedPrice.Decimal.IsPositive() {
		return fmt.Errorf("%w: numeraire fixed price must be positive", ErrInvalidConfig)
	}
	if c.ZeroTolerance.IsNegative() {
		return fmt.Errorf("%w: zero tolerance must not be negative", ErrInvalidConfig)
	}
	if c.PriceDeviationRatio.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: price deviation ratio must be >= 1", ErrInvalidConfig)
	}
	if c.LedgerWorkers < 1 {
		return fmt.Errorf("%w: ledger workers must be >= 1", ErrInvalidConfig)
	}
	if c.MaxDiagnosticSamples < 0 {
		return fmt.Errorf("%w: max diagnostic samples must not be negative", ErrInvalidConfig)
	}
	for assetID, p := range c.fallbackPrices {
		if !p.IsPositive() {
			return fmt.Errorf("%w: fallback price for %s must be positive", ErrInvalidConfig, assetID)
		}
	}
	if err := c.Timeframe.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.TraderFilter.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ValidateAddresses checks that the numeraire, fallback assets and wallet are
// well-formed Solana addresses.
func (c Config) ValidateAddresses() error {
	if err := address.ValidateMint(c.NumeraireAssetID); err != nil {
		return fmt.Errorf("%w: numeraire: %v", ErrInvalidConfig, err)
	}
	for assetID := range c.fallbackPrices {
		if err := address.ValidateMint(assetID); err != nil {
			return fmt.Errorf("%w: fallback price: %v", ErrInvalidConfig, err)
		}
	}
	if c.Wallet != "" {
		if err := address.ValidateWallet(c.Wallet); err != nil {
			return fmt.Errorf("%w: wallet: %v", ErrInvalidConfig, err)
		}
	}
	return nil
}
