// Package qualify scores wallet reports as copy-trading candidates.
package qualify

import (
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"solana-wallet-pnl/internal/config"
	"solana-wallet-pnl/internal/domain"
)

// RiskLevel grades a trader from win rate and ROI.
type RiskLevel string

// Risk levels
const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// TradingStyle classifies a trader by average holding time.
type TradingStyle string

// Trading styles
const (
	StyleScalper     TradingStyle = "scalper"      // avg hold under an hour
	StyleDayTrader   TradingStyle = "day_trader"   // under a day
	StyleSwingTrader TradingStyle = "swing_trader" // under a week
	StyleHolder      TradingStyle = "holder"
	StyleUnknown     TradingStyle = "unknown" // no matched trades
)

// Score weights. A wallet needs MinQualifyingScore on top of the gating checks.
const (
	weightRealized     = 20
	weightTrades       = 15
	weightWinning      = 15
	weightWinRate      = 20
	weightROI          = 15
	weightInvested     = 10
	bonusScalper       = 5
	bonusDayTrader     = 5
	bonusSwingTrader   = 3
	scalperBonusTrades = 10

	MinQualifyingScore = 50
)

var (
	lowRiskWinRate    = decimal.NewFromInt(70)
	lowRiskROI        = decimal.NewFromInt(50)
	mediumRiskWinRate = decimal.NewFromInt(50)
	mediumRiskROI     = decimal.NewFromInt(25)
	highRiskWinRate   = decimal.NewFromInt(30)
)

// Assessment is the verdict for one wallet.
type Assessment struct {
	Wallet               string       `json:"wallet"`
	Qualified            bool         `json:"qualified"`
	Score                int          `json:"score"`
	Risk                 RiskLevel    `json:"risk"`
	Style                TradingStyle `json:"style"`
	Strengths            []string     `json:"strengths"`
	Concerns             []string     `json:"concerns"`
	CopyTradeRecommended bool         `json:"copy_trade_recommended"` // qualified with low or medium risk
}

// Candidate pairs a qualified report with its assessment.
type Candidate struct {
	Report     *domain.PnLReport `json:"report"`
	Assessment Assessment        `json:"assessment"`
}

// Filter evaluates reports against configured thresholds.
type Filter struct {
	cfg    config.TraderFilter
	logger *log.Logger
}

// NewFilter creates a filter. A nil logger discards output.
func NewFilter(cfg config.TraderFilter, logger *log.Logger) *Filter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Filter{cfg: cfg, logger: logger}
}

// Evaluate scores one report. Realized P&L, trade count, winning trades, win
// rate and the hold bounds gate qualification; ROI and invested capital only
// add to the score.
func (f *Filter) Evaluate(report *domain.PnLReport) Assessment {
	stats := report.Stats
	a := Assessment{
		Wallet:    report.Wallet,
		Strengths: []string{},
		Concerns:  []string{},
	}
	passes := true
	score := 0

	gate := func(ok bool, weight int, strength, concern string) {
		if ok {
			a.Strengths = append(a.Strengths, strength)
			score += weight
			return
		}
		a.Concerns = append(a.Concerns, concern)
		passes = false
	}

	gate(report.RealizedPnL.GreaterThanOrEqual(f.cfg.MinRealizedPnL), weightRealized,
		fmt.Sprintf("realized P&L %s", report.RealizedPnL.StringFixed(2)),
		fmt.Sprintf("realized P&L %s below %s", report.RealizedPnL.StringFixed(2), f.cfg.MinRealizedPnL.StringFixed(2)))
	gate(stats.MatchedTrades >= f.cfg.MinTrades, weightTrades,
		fmt.Sprintf("%d trades", stats.MatchedTrades),
		fmt.Sprintf("%d trades below %d", stats.MatchedTrades, f.cfg.MinTrades))
	gate(stats.WinningTrades >= f.cfg.MinWinningTrades, weightWinning,
		fmt.Sprintf("%d winning trades", stats.WinningTrades),
		fmt.Sprintf("%d winning trades below %d", stats.WinningTrades, f.cfg.MinWinningTrades))
	gate(stats.WinRatePct.GreaterThanOrEqual(f.cfg.MinWinRatePct), weightWinRate,
		fmt.Sprintf("win rate %s%%", stats.WinRatePct.StringFixed(1)),
		fmt.Sprintf("win rate %s%% below %s%%", stats.WinRatePct.StringFixed(1), f.cfg.MinWinRatePct.StringFixed(1)))

	if stats.ProfitPct.GreaterThanOrEqual(f.cfg.MinROIPct) {
		a.Strengths = append(a.Strengths, fmt.Sprintf("ROI %s%%", stats.ProfitPct.StringFixed(1)))
		score += weightROI
	} else {
		a.Concerns = append(a.Concerns, fmt.Sprintf("ROI %s%% below %s%%", stats.ProfitPct.StringFixed(1), f.cfg.MinROIPct.StringFixed(1)))
	}
	if report.TotalInvested.GreaterThanOrEqual(f.cfg.MinInvested) {
		a.Strengths = append(a.Strengths, fmt.Sprintf("invested %s", report.TotalInvested.StringFixed(2)))
		score += weightInvested
	} else {
		a.Concerns = append(a.Concerns, fmt.Sprintf("invested %s below %s", report.TotalInvested.StringFixed(2), f.cfg.MinInvested.StringFixed(2)))
	}

	if f.cfg.ExcludeHoldersOnly && stats.WinningTrades == 0 && stats.LosingTrades == 0 {
		a.Concerns = append(a.Concerns, "no realized wins or losses")
		passes = false
	}
	if f.cfg.ExcludeZeroPnL && report.RealizedPnL.IsZero() && report.TotalPnL().IsZero() {
		a.Concerns = append(a.Concerns, "zero P&L")
		passes = false
	}
	if !report.RealizedComplete {
		a.Concerns = append(a.Concerns, "realized P&L excludes unpriced trades")
	}

	avgHold := time.Duration(stats.AvgHoldSeconds) * time.Second
	if stats.MatchedTrades > 0 {
		if f.cfg.MinAvgHold > 0 && avgHold < f.cfg.MinAvgHold {
			a.Concerns = append(a.Concerns, fmt.Sprintf("average hold %s below %s", avgHold, f.cfg.MinAvgHold))
			passes = false
		}
		if f.cfg.MaxAvgHold > 0 && avgHold > f.cfg.MaxAvgHold {
			a.Concerns = append(a.Concerns, fmt.Sprintf("average hold %s above %s", avgHold, f.cfg.MaxAvgHold))
			passes = false
		}
	}

	a.Style = classifyStyle(stats.MatchedTrades, avgHold)
	switch a.Style {
	case StyleScalper:
		a.Strengths = append(a.Strengths, "fast execution")
		if stats.MatchedTrades > scalperBonusTrades {
			score += bonusScalper
		}
	case StyleDayTrader:
		a.Strengths = append(a.Strengths, "active day trader")
		score += bonusDayTrader
	case StyleSwingTrader:
		a.Strengths = append(a.Strengths, "patient swing trader")
		score += bonusSwingTrader
	case StyleHolder:
		a.Concerns = append(a.Concerns, "long-term holder")
	}

	a.Risk = assessRisk(stats.WinRatePct, stats.ProfitPct)
	a.Score = score
	a.Qualified = passes && score >= MinQualifyingScore
	a.CopyTradeRecommended = a.Qualified && (a.Risk == RiskLow || a.Risk == RiskMedium)

	if a.Qualified {
		f.logger.Printf("[qualify] wallet=%s qualified score=%d risk=%s style=%s", a.Wallet, a.Score, a.Risk, a.Style)
	}
	return a
}

// FilterReports keeps qualified reports, best score first. Ties keep input
// order. Nil reports are skipped.
func (f *Filter) FilterReports(reports []*domain.PnLReport) []Candidate {
	out := make([]Candidate, 0, len(reports))
	evaluated := 0
	for _, r := range reports {
		if r == nil {
			continue
		}
		evaluated++
		if a := f.Evaluate(r); a.Qualified {
			out = append(out, Candidate{Report: r, Assessment: a})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Assessment.Score > out[j].Assessment.Score
	})
	f.logger.Printf("[qualify] %d of %d wallets qualified", len(out), evaluated)
	return out
}

func classifyStyle(trades int, avgHold time.Duration) TradingStyle {
	switch {
	case trades == 0:
		return StyleUnknown
	case avgHold < time.Hour:
		return StyleScalper
	case avgHold < 24*time.Hour:
		return StyleDayTrader
	case avgHold < 7*24*time.Hour:
		return StyleSwingTrader
	default:
		return StyleHolder
	}
}

func assessRisk(winRate, roi decimal.Decimal) RiskLevel {
	switch {
	case winRate.GreaterThanOrEqual(lowRiskWinRate) && roi.GreaterThanOrEqual(lowRiskROI):
		return RiskLow
	case winRate.GreaterThanOrEqual(mediumRiskWinRate) && roi.GreaterThanOrEqual(mediumRiskROI):
		return RiskMedium
	case winRate.GreaterThanOrEqual(highRiskWinRate):
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}
