package model

import (
	"strings"
	"time"
)

// Tier is a coarse model-size bucket used to sub-divide token totals.
type Tier string

const (
	TierOpus    Tier = "opus"
	TierSonnet  Tier = "sonnet"
	TierHaiku   Tier = "haiku"
	TierUnknown Tier = "unknown"
)

// tierKeywords is ordered; the first substring match wins.
var tierKeywords = []Tier{TierOpus, TierSonnet, TierHaiku}

// ClassifyModel maps a free-text model identifier onto a tier bucket.
func ClassifyModel(model string) Tier {
	lower := strings.ToLower(model)
	for _, t := range tierKeywords {
		if strings.Contains(lower, string(t)) {
			return t
		}
	}
	return TierUnknown
}

// Tiers lists the displayable tier buckets in display order.
func Tiers() []Tier {
	return []Tier{TierOpus, TierSonnet, TierHaiku}
}

// TokenUsage contains token counts from a single API response or an aggregate.
type TokenUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// Add accumulates another usage into this one.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// Total returns the tokens that count against a weekly ceiling: everything
// the API had to ingest or produce, including cache writes but not cache reads.
func (u TokenUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens + u.CacheCreationInputTokens
}

// UsageWindow is the result of aggregating local activity records over
// [since, now]. Immutable once returned.
type UsageWindow struct {
	Prompts       int
	APICalls      int
	Usage         TokenUsage          // overall, including the unknown bucket
	ByTier        map[Tier]TokenUsage // tier buckets, including TierUnknown
	Sessions      map[string]struct{}
	FirstActivity time.Time
	LastActivity  time.Time
}

// NewUsageWindow returns an empty window with initialized maps.
func NewUsageWindow() UsageWindow {
	return UsageWindow{
		ByTier:   make(map[Tier]TokenUsage),
		Sessions: make(map[string]struct{}),
	}
}

// SessionCount returns the number of distinct sessions seen in the window.
func (w UsageWindow) SessionCount() int {
	return len(w.Sessions)
}

// WindowStatus is one quota window as reported (or estimated): a clamped
// 0-100 utilization and the instant the window resets.
type WindowStatus struct {
	Utilization float64   `json:"utilization"`
	ResetsAt    time.Time `json:"resets_at"`
}

// UsageSnapshot is one observation of quota state for the short (rolling
// session) and long (rolling weekly) windows, with optional per-tier
// sub-breakdowns of the long window.
type UsageSnapshot struct {
	Short  WindowStatus          `json:"short"`
	Long   WindowStatus          `json:"long"`
	ByTier map[Tier]WindowStatus `json:"by_tier,omitempty"`
}

// HistorySample is one recorded (short, long) utilization pair.
type HistorySample struct {
	TS       time.Time `json:"ts"`
	ShortPct float64   `json:"short_pct"`
	LongPct  float64   `json:"long_pct"`
}
