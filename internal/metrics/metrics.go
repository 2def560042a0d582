// Package metrics derives presentation-ready values from raw utilization
// percentages. Everything here is a pure function.
package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/ccbar/ccbar/internal/model"
)

// Menu color palette.
const (
	ColorGreen  = "#22c55e"
	ColorYellow = "#eab308"
	ColorOrange = "#f97316"
	ColorRed    = "#ef4444"
	ColorBlue   = "#3b82f6"
	ColorGray   = "#6b7280"
	ColorWhite  = "#f4f4f5"
)

// Level is the discrete severity classification of a utilization value.
type Level int

const (
	LevelOK Level = iota
	LevelCaution
	LevelWarning
	LevelCritical
)

// String returns the classification name.
func (l Level) String() string {
	switch l {
	case LevelOK:
		return "ok"
	case LevelCaution:
		return "caution"
	case LevelWarning:
		return "warning"
	default:
		return "critical"
	}
}

// Color returns the band color for the level.
func (l Level) Color() string {
	switch l {
	case LevelOK:
		return ColorGreen
	case LevelCaution:
		return ColorYellow
	case LevelWarning:
		return ColorOrange
	default:
		return ColorRed
	}
}

// Thresholds are the upper bounds of the first three color bands.
type Thresholds struct {
	GreenMax  float64
	YellowMax float64
	OrangeMax float64
}

// ClampPercent limits a value to [0, 100]. NaN clamps to 0.
func ClampPercent(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}

// ThresholdLevel classifies a percentage into one of the four bands.
func ThresholdLevel(pct float64, th Thresholds) Level {
	pct = ClampPercent(pct)
	switch {
	case pct < th.GreenMax:
		return LevelOK
	case pct < th.YellowMax:
		return LevelCaution
	case pct < th.OrangeMax:
		return LevelWarning
	default:
		return LevelCritical
	}
}

// ThresholdColor returns the discrete band color for a percentage.
func ThresholdColor(pct float64, th Thresholds) string {
	return ThresholdLevel(pct, th).Color()
}

// GradientColor interpolates between adjacent band colors in RGB space, so
// the color shifts continuously instead of jumping at the band edges. At a
// band boundary it produces that boundary's anchor color exactly.
func GradientColor(pct float64, th Thresholds) string {
	pct = ClampPercent(pct)

	type segment struct {
		lo, hi       float64
		loCol, hiCol string
	}
	segments := []segment{
		{0, th.GreenMax, ColorGreen, ColorYellow},
		{th.GreenMax, th.YellowMax, ColorYellow, ColorOrange},
		{th.YellowMax, th.OrangeMax, ColorOrange, ColorRed},
	}

	for _, s := range segments {
		if pct >= s.hi {
			continue
		}
		if s.hi <= s.lo {
			return s.loCol
		}
		t := (pct - s.lo) / (s.hi - s.lo)
		if t < 0 {
			t = 0
		}
		return lerpHex(s.loCol, s.hiCol, t)
	}
	return ColorRed
}

func lerpHex(a, b string, t float64) string {
	ar, ag, ab := parseHex(a)
	br, bg, bb := parseHex(b)
	lerp := func(x, y int) int {
		return int(math.Round(float64(x) + t*float64(y-x)))
	}
	return fmt.Sprintf("#%02x%02x%02x", lerp(ar, br), lerp(ag, bg), lerp(ab, bb))
}

func parseHex(s string) (r, g, b int) {
	fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	return
}

// Direction of a trend.
type Direction int

const (
	TrendFlat Direction = iota
	TrendUp
	TrendDown
)

// Arrow returns the glyph for a direction.
func (d Direction) Arrow() string {
	switch d {
	case TrendUp:
		return "↑"
	case TrendDown:
		return "↓"
	default:
		return "→"
	}
}

// trendEpsilon is the minimum mean delta (in percentage points) treated as
// movement rather than noise.
const trendEpsilon = 1.0

// Field selects which series of a history sample a derivation reads.
type Field func(model.HistorySample) float64

// ShortField reads the short-window percentage of a sample.
func ShortField(s model.HistorySample) float64 { return s.ShortPct }

// LongField reads the long-window percentage of a sample.
func LongField(s model.HistorySample) float64 { return s.LongPct }

// Trend compares the mean of the most recent recentN samples against the
// mean of the priorM samples before them. With fewer than recentN+priorM
// samples it reports flat with zero magnitude.
func Trend(samples []model.HistorySample, field Field, recentN, priorM int) (Direction, float64) {
	if recentN < 1 || priorM < 1 || len(samples) < recentN+priorM {
		return TrendFlat, 0
	}

	recent := samples[len(samples)-recentN:]
	prior := samples[len(samples)-recentN-priorM : len(samples)-recentN]

	delta := mean(recent, field) - mean(prior, field)
	switch {
	case delta > trendEpsilon:
		return TrendUp, delta
	case delta < -trendEpsilon:
		return TrendDown, delta
	default:
		return TrendFlat, delta
	}
}

func mean(samples []model.HistorySample, field Field) float64 {
	var sum float64
	for _, s := range samples {
		sum += field(s)
	}
	return sum / float64(len(samples))
}

// SparkGlyphs is the default glyph ramp for Graph, lowest level first.
var SparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// Graph renders values (0-100 scale, oldest first) as a fixed-width glyph
// string. Short series are right-padded with the lowest glyph; long series
// are truncated to the most recent width values.
func Graph(values []float64, width int, glyphs []rune) string {
	if width <= 0 || len(glyphs) == 0 {
		return ""
	}

	if len(values) > width {
		values = values[len(values)-width:]
	}

	var sb strings.Builder
	levels := len(glyphs) - 1
	for _, v := range values {
		idx := int(ClampPercent(v) / 100 * float64(levels))
		sb.WriteRune(glyphs[idx])
	}
	for i := len(values); i < width; i++ {
		sb.WriteRune(glyphs[0])
	}
	return sb.String()
}

// Meter renders a fixed-width progress bar: floor(pct/100*width) filled
// glyphs, the rest empty.
func Meter(pct float64, width int, filled, empty rune) string {
	if width <= 0 {
		return ""
	}
	n := int(ClampPercent(pct) / 100 * float64(width))
	if n > width {
		n = width
	}
	return strings.Repeat(string(filled), n) + strings.Repeat(string(empty), width-n)
}
