// Package plan holds per-plan quota ceilings used to turn locally
// aggregated usage into utilization estimates.
//
// The ceilings are hand-calibrated against observed behavior, not published
// numbers; treat them as defaults to override in config, not ground truth.
package plan

import (
	"time"

	"github.com/ccbar/ccbar/internal/model"
)

// Limits are the numeric ceilings for one plan tier.
type Limits struct {
	// SessionPrompts is the rough prompt ceiling for one rolling 5h window.
	SessionPrompts int `yaml:"session_prompts"`
	// WeeklyTokens maps a model tier to its rolling 7d token ceiling.
	WeeklyTokens map[model.Tier]int64 `yaml:"weekly_tokens"`
}

// DefaultPlan is used when the account's rate-limit tier is unknown or has
// no calibration entry.
const DefaultPlan = "pro"

// defaultLimits maps known plan identifiers to their ceilings.
var defaultLimits = map[string]Limits{
	"pro": {
		SessionPrompts: 45,
		WeeklyTokens: map[model.Tier]int64{
			model.TierSonnet: 15_000_000,
			model.TierHaiku:  25_000_000,
		},
	},
	"max5": {
		SessionPrompts: 225,
		WeeklyTokens: map[model.Tier]int64{
			model.TierOpus:   10_000_000,
			model.TierSonnet: 75_000_000,
			model.TierHaiku:  125_000_000,
		},
	},
	"max20": {
		SessionPrompts: 900,
		WeeklyTokens: map[model.Tier]int64{
			model.TierOpus:   40_000_000,
			model.TierSonnet: 300_000_000,
			model.TierHaiku:  500_000_000,
		},
	},
}

// Lookup returns the ceilings for a plan identifier, falling back to the
// default plan when the identifier is empty or unknown. The result is a
// copy; callers may override fields freely.
func Lookup(name string) Limits {
	l, ok := defaultLimits[name]
	if !ok {
		l = defaultLimits[DefaultPlan]
	}

	weekly := make(map[model.Tier]int64, len(l.WeeklyTokens))
	for tier, ceiling := range l.WeeklyTokens {
		weekly[tier] = ceiling
	}
	l.WeeklyTokens = weekly
	return l
}

// Known reports whether a plan identifier has a calibration entry.
func Known(name string) bool {
	_, ok := defaultLimits[name]
	return ok
}

// EstimateShortPct estimates short-window utilization from the prompt count
// of a rolling session window.
func (l Limits) EstimateShortPct(w model.UsageWindow) float64 {
	if l.SessionPrompts <= 0 {
		return 0
	}
	return float64(w.Prompts) / float64(l.SessionPrompts) * 100
}

// EstimateLongPct estimates long-window utilization as the worst per-tier
// ratio of weekly tokens consumed to the tier's weekly ceiling. Tiers
// without a ceiling (including the unknown bucket) do not contribute.
func (l Limits) EstimateLongPct(w model.UsageWindow) float64 {
	var worst float64
	for tier, ceiling := range l.WeeklyTokens {
		if ceiling <= 0 {
			continue
		}
		pct := float64(w.ByTier[tier].Total()) / float64(ceiling) * 100
		if pct > worst {
			worst = pct
		}
	}
	return worst
}

// NextSessionReset returns the end of the current 5-hour block. Blocks are
// anchored at midnight UTC, matching observed session window boundaries.
func NextSessionReset(now time.Time) time.Time {
	utc := now.UTC()
	blockHour := (utc.Hour() / 5) * 5
	start := time.Date(utc.Year(), utc.Month(), utc.Day(), blockHour, 0, 0, 0, time.UTC)
	return start.Add(5 * time.Hour)
}

// NextWeeklyReset returns the next weekly reset boundary: midnight UTC on
// the configured weekday.
func NextWeeklyReset(now time.Time, resetDay time.Weekday) time.Time {
	utc := now.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	days := (int(resetDay) - int(utc.Weekday()) + 7) % 7
	reset := midnight.AddDate(0, 0, days)
	if !reset.After(now) {
		reset = reset.AddDate(0, 0, 7)
	}
	return reset
}
