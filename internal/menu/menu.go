// Package menu renders a usage result as the line protocol the host shell
// reads: one line per menu item, "text | attr=value ...", with "---"
// separating sections and "--" prefixes nesting submenus.
package menu

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ccbar/ccbar/internal/metrics"
	"github.com/ccbar/ccbar/internal/model"
	"github.com/ccbar/ccbar/internal/source"
)

// Style selects how much detail the menu carries.
type Style string

const (
	StyleMinimal  Style = "minimal"
	StyleCompact  Style = "compact"
	StyleFull     Style = "full"
	StyleDetailed Style = "detailed"
)

// ParseStyle maps a config value onto a style, defaulting to full.
func ParseStyle(s string) Style {
	switch Style(s) {
	case StyleMinimal, StyleCompact, StyleFull, StyleDetailed:
		return Style(s)
	default:
		return StyleFull
	}
}

// Data is everything a render needs, resolved ahead of time so rendering
// itself touches no filesystem or network.
type Data struct {
	Result     source.Result
	Session    model.UsageWindow // local-mode session window detail
	Week       model.UsageWindow // local-mode weekly window detail
	History    []model.HistorySample
	Thresholds metrics.Thresholds
	Gradient   bool
	Now        time.Time
}

// Builder accumulates protocol lines.
type Builder struct {
	lines []string
}

// Line appends one item; attrs follow the text after " | ".
func (b *Builder) Line(text string, attrs ...string) {
	if len(attrs) == 0 {
		b.lines = append(b.lines, text)
		return
	}
	b.lines = append(b.lines, text+" | "+strings.Join(attrs, " "))
}

// Sub appends a nested item one level deep.
func (b *Builder) Sub(text string, attrs ...string) {
	b.Line("--"+text, attrs...)
}

// Separator appends a section break.
func (b *Builder) Separator() {
	b.lines = append(b.lines, "---")
}

// String returns the protocol output, newline-terminated.
func (b *Builder) String() string {
	return strings.Join(b.lines, "\n") + "\n"
}

// Render produces the full menu for one invocation. It always yields
// output, including for failed results.
func Render(d Data, style Style) string {
	b := &Builder{}

	if d.Result.Origin == source.OriginFailed {
		renderFailure(b, d)
		return b.String()
	}

	snap := d.Result.Snapshot
	shortPct := snap.Short.Utilization
	longPct := snap.Long.Utilization
	worst := shortPct
	if longPct > worst {
		worst = longPct
	}

	b.Line(fmt.Sprintf("CC %.0f%%", worst), "sfcolor="+d.color(worst))
	b.Separator()

	b.Line("Claude Code Usage", "color="+metrics.ColorWhite)
	if note := d.originNote(); note != "" {
		b.Line(note, "size=11 color="+metrics.ColorGray)
	}

	if style == StyleMinimal {
		b.Separator()
		b.Line(fmt.Sprintf("Session: %.0f%%", shortPct), "color="+d.color(shortPct))
		b.Line(fmt.Sprintf("Week: %.0f%%", longPct), "color="+d.color(longPct))
		return b.String()
	}

	b.Separator()
	d.renderWindow(b, "Session (5h)", "clock", snap.Short, style)

	b.Separator()
	d.renderWindow(b, "Week (7d)", "calendar", snap.Long, style)

	if style == StyleFull || style == StyleDetailed {
		d.renderLocalDetail(b, style)
		d.renderTierBreakdown(b, style)
		d.renderTrend(b)
		d.renderActivity(b)
		d.renderFooter(b)
	}

	return b.String()
}

// color picks the discrete or gradient color for a percentage.
func (d Data) color(pct float64) string {
	if d.Gradient {
		return metrics.GradientColor(pct, d.Thresholds)
	}
	return metrics.ThresholdColor(pct, d.Thresholds)
}

// originNote describes non-fresh data under the header.
func (d Data) originNote() string {
	switch d.Result.Origin {
	case source.OriginCached:
		return fmt.Sprintf("Offline - cached %s ago", fmtDuration(d.Result.Age))
	case source.OriginLocal:
		return "Local estimate - /status for official limits"
	default:
		return ""
	}
}

func (d Data) renderWindow(b *Builder, label, icon string, w model.WindowStatus, style Style) {
	b.Line(label, "sfSymbol="+icon+" color="+metrics.ColorGray)
	b.Sub(fmt.Sprintf("Used: %.0f%% %s", w.Utilization,
		metrics.Meter(w.Utilization, 10, '█', '░')), "color="+d.color(w.Utilization))
	if !w.ResetsAt.IsZero() {
		b.Sub("Resets in "+fmtDuration(w.ResetsAt.Sub(d.Now)), "color="+metrics.ColorGray)
	}
	if style == StyleDetailed {
		b.Sub("Level: "+metrics.ThresholdLevel(w.Utilization, d.Thresholds).String(),
			"color="+metrics.ColorGray)
	}
}

// renderLocalDetail emits the per-window counters when the snapshot came
// from the local corpus.
func (d Data) renderLocalDetail(b *Builder, style Style) {
	if d.Result.Origin != source.OriginLocal {
		return
	}

	b.Separator()
	b.Line("Last 5 Hours", "sfSymbol=clock color="+metrics.ColorGray)
	b.Sub(fmt.Sprintf("Prompts: %d", d.Session.Prompts), "color="+metrics.ColorWhite)
	b.Sub(fmt.Sprintf("API Calls: %d", d.Session.APICalls), "color="+metrics.ColorGray)
	b.Sub(fmt.Sprintf("Tokens: %s (in: %s, out: %s)",
		fmtTokens(d.Session.Usage.Total()),
		fmtTokens(d.Session.Usage.InputTokens),
		fmtTokens(d.Session.Usage.OutputTokens)), "color="+metrics.ColorGray)
	b.Sub(fmt.Sprintf("Cache: %s read, %s written",
		fmtTokens(d.Session.Usage.CacheReadInputTokens),
		fmtTokens(d.Session.Usage.CacheCreationInputTokens)), "color="+metrics.ColorGray)

	b.Separator()
	b.Line("Last 7 Days", "sfSymbol=calendar.badge.clock color="+metrics.ColorGray)
	b.Sub(fmt.Sprintf("Prompts: %d", d.Week.Prompts), "color="+metrics.ColorWhite)
	b.Sub(fmt.Sprintf("Tokens: %s", fmtTokens(d.Week.Usage.Total())), "color="+metrics.ColorGray)
	b.Sub(fmt.Sprintf("Sessions: %d", d.Week.SessionCount()), "color="+metrics.ColorGray)
	if style == StyleDetailed {
		b.Sub(fmt.Sprintf("API Calls: %s", humanize.Comma(int64(d.Week.APICalls))),
			"color="+metrics.ColorGray)
	}
}

// renderTierBreakdown emits per-tier numbers: remote sub-breakdowns when
// present, otherwise the local weekly tier buckets.
func (d Data) renderTierBreakdown(b *Builder, style Style) {
	if byTier := d.Result.Snapshot.ByTier; len(byTier) > 0 {
		b.Separator()
		b.Line("By Model (7d)", "sfSymbol=cpu color="+metrics.ColorGray)
		for _, tier := range model.Tiers() {
			w, ok := byTier[tier]
			if !ok {
				continue
			}
			b.Sub(fmt.Sprintf("%s: %.0f%%", tier, w.Utilization), "color="+d.color(w.Utilization))
		}
		return
	}

	if d.Result.Origin != source.OriginLocal || style != StyleDetailed {
		return
	}

	b.Separator()
	b.Line("By Model (7d)", "sfSymbol=cpu color="+metrics.ColorGray)
	for _, tier := range model.Tiers() {
		usage, ok := d.Week.ByTier[tier]
		if !ok {
			continue
		}
		b.Sub(fmt.Sprintf("%s: %s", tier, fmtTokens(usage.Total())), "color="+metrics.ColorGray)
	}
}

// renderTrend emits the trend arrow and sparkline once enough history
// exists to say anything.
func (d Data) renderTrend(b *Builder) {
	if len(d.History) < 2 {
		return
	}

	dir, delta := metrics.Trend(d.History, metrics.ShortField, 3, 3)

	values := make([]float64, len(d.History))
	for i, s := range d.History {
		values[i] = s.ShortPct
	}
	spark := metrics.Graph(values, 16, metrics.SparkGlyphs)

	b.Separator()
	b.Line(fmt.Sprintf("Trend: %s %+.1f%%", dir.Arrow(), delta), "color="+metrics.ColorGray)
	b.Line(spark, "font=Menlo color="+metrics.ColorBlue)
}

func (d Data) renderActivity(b *Builder) {
	if d.Result.Origin != source.OriginLocal {
		return
	}
	b.Separator()
	if d.Week.LastActivity.IsZero() {
		b.Line("No recent activity", "color="+metrics.ColorGray)
		return
	}
	b.Line("Last active: "+humanize.RelTime(d.Week.LastActivity, d.Now, "ago", "from now"),
		"color="+metrics.ColorGray)
}

func (d Data) renderFooter(b *Builder) {
	b.Separator()
	b.Line("Refresh", "refresh=true sfSymbol=arrow.clockwise")
	b.Separator()
	b.Line("Tip: Run /status in Claude Code", "size=11 color="+metrics.ColorGray)
	b.Line("for official limit info", "size=11 color="+metrics.ColorGray)
}

func renderFailure(b *Builder, d Data) {
	b.Line("CC !", "sfcolor="+metrics.ColorGray)
	b.Separator()
	b.Line("Claude Code Usage", "color="+metrics.ColorWhite)
	b.Separator()

	kind := d.Result.Err.Kind
	b.Line("Unavailable: "+kind.String(), "color="+metrics.ColorOrange)
	b.Line(kind.Message(), "size=11 color="+metrics.ColorGray)
	b.Separator()
	b.Line("Refresh", "refresh=true sfSymbol=arrow.clockwise")
}

// fmtTokens formats a token count compactly: 940, 34K, 1.2M.
func fmtTokens(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.0fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// fmtDuration formats a countdown: 3d 4h, 2h 5m, 12m, now.
func fmtDuration(d time.Duration) string {
	if d < 0 {
		return "now"
	}
	mins := int(d.Minutes())
	h, m := mins/60, mins%60
	if h >= 24 {
		return fmt.Sprintf("%dd %dh", h/24, h%24)
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
