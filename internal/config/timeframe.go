package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// TimeframeMode selects how the record cutoff is derived.
type TimeframeMode string

// Timeframe mode constants
const (
	TimeframeNone     TimeframeMode = "none"     // keep every record
	TimeframeGeneral  TimeframeMode = "general"  // relative window, e.g. "30d"
	TimeframeSpecific TimeframeMode = "specific" // absolute start, RFC 3339 or YYYY-MM-DD
)

// IsValid checks if the mode is a known value.
func (m TimeframeMode) IsValid() bool {
	switch m {
	case TimeframeNone, TimeframeGeneral, TimeframeSpecific, "":
		return true
	}
	return false
}

// Timeframe restricts analysis to records at or after a cutoff.
type Timeframe struct {
	Mode  TimeframeMode
	Value string
}

var generalPattern = regexp.MustCompile(`^(\d+)(s|min|h|d|m|y)$`)

// Unit lengths in milliseconds. Months are 30 days and years 365 days.
var generalUnitMillis = map[string]int64{
	"s":   1000,
	"min": 60000,
	"h":   3600000,
	"d":   86400000,
	"m":   2592000000,
	"y":   31536000000,
}

// Validate checks that the timeframe value parses for its mode.
func (t Timeframe) Validate() error {
	_, _, err := t.Cutoff(time.Unix(0, 0).UTC())
	return err
}

// Cutoff returns the earliest instant kept relative to now.
// The boolean is false when no cutoff applies.
func (t Timeframe) Cutoff(now time.Time) (time.Time, bool, error) {
	switch t.Mode {
	case "", TimeframeNone:
		return time.Time{}, false, nil
	case TimeframeGeneral:
		offset, err := parseGeneral(t.Value)
		if err != nil {
			return time.Time{}, false, err
		}
		return time.UnixMilli(now.UnixMilli() - offset).UTC(), true, nil
	case TimeframeSpecific:
		cutoff, err := parseSpecific(t.Value)
		if err != nil {
			return time.Time{}, false, err
		}
		return cutoff, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("unknown timeframe mode %q", t.Mode)
	}
}

// Contains reports whether a Unix-seconds timestamp is at or after cutoff.
func Contains(cutoff time.Time, timestamp int64) bool {
	return !time.Unix(timestamp, 0).Before(cutoff)
}

// parseGeneral returns the window length in milliseconds.
func parseGeneral(value string) (int64, error) {
	m := generalPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, fmt.Errorf("invalid general timeframe %q", value)
	}
	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid general timeframe %q: %w", value, err)
	}
	return amount * generalUnitMillis[m[2]], nil
}

func parseSpecific(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.Parse(time.DateOnly, value); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid specific timeframe %q", value)
}
