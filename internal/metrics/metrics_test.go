package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/ccbar/ccbar/internal/model"
)

var th = Thresholds{GreenMax: 50, YellowMax: 75, OrangeMax: 90}

func TestClampPercent(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-10, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{130, 100},
		{math.NaN(), 0},
	}
	for _, c := range cases {
		if got := ClampPercent(c.in); got != c.want {
			t.Errorf("ClampPercent(%v) = %v, want %v", c.in, got, c.want)
		}
		// Idempotence.
		if got := ClampPercent(ClampPercent(c.in)); got != c.want {
			t.Errorf("ClampPercent^2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestThresholdLevel(t *testing.T) {
	cases := []struct {
		pct  float64
		want Level
	}{
		{0, LevelOK},
		{42, LevelOK},
		{50, LevelCaution},
		{74.9, LevelCaution},
		{75, LevelWarning},
		{88, LevelWarning},
		{90, LevelCritical},
		{100, LevelCritical},
		{999, LevelCritical},
	}
	for _, c := range cases {
		if got := ThresholdLevel(c.pct, th); got != c.want {
			t.Errorf("ThresholdLevel(%v) = %v, want %v", c.pct, got, c.want)
		}
	}
}

func TestGradientColor_BoundariesExact(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{0, ColorGreen},
		{50, ColorYellow},
		{75, ColorOrange},
		{90, ColorRed},
		{100, ColorRed},
	}
	for _, c := range cases {
		if got := GradientColor(c.pct, th); got != c.want {
			t.Errorf("GradientColor(%v) = %s, want %s", c.pct, got, c.want)
		}
	}
}

func TestGradientColor_ContinuousAtBoundaries(t *testing.T) {
	const eps = 0.01
	for _, b := range []float64{th.GreenMax, th.YellowMax, th.OrangeMax} {
		below := GradientColor(b-eps, th)
		above := GradientColor(b+eps, th)
		if dist := rgbDistance(below, above); dist > 3 {
			t.Errorf("discontinuity at %v: %s vs %s (distance %d)", b, below, above, dist)
		}
	}
}

func rgbDistance(a, b string) int {
	ar, ag, ab := parseHex(a)
	br, bg, bb := parseHex(b)
	abs := func(x int) int {
		if x < 0 {
			return -x
		}
		return x
	}
	return abs(ar-br) + abs(ag-bg) + abs(ab-bb)
}

func samplesFrom(shorts ...float64) []model.HistorySample {
	base := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	out := make([]model.HistorySample, len(shorts))
	for i, v := range shorts {
		out[i] = model.HistorySample{TS: base.Add(time.Duration(i) * time.Minute), ShortPct: v}
	}
	return out
}

func TestTrend(t *testing.T) {
	cases := []struct {
		name    string
		samples []model.HistorySample
		wantDir Direction
	}{
		{"rising", samplesFrom(10, 10, 10, 30, 30, 30), TrendUp},
		{"falling", samplesFrom(30, 30, 30, 10, 10, 10), TrendDown},
		{"steady", samplesFrom(20, 20, 20, 20, 20, 20), TrendFlat},
		{"within epsilon", samplesFrom(20, 20, 20, 20.5, 20.5, 20.5), TrendFlat},
		{"too short", samplesFrom(10, 90), TrendFlat},
		{"empty", nil, TrendFlat},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir, delta := Trend(c.samples, ShortField, 3, 3)
			if dir != c.wantDir {
				t.Errorf("direction = %v, want %v (delta %v)", dir, c.wantDir, delta)
			}
			if len(c.samples) < 6 && delta != 0 {
				t.Errorf("short history should report zero magnitude, got %v", delta)
			}
		})
	}
}

func TestGraph_WidthExact(t *testing.T) {
	const width = 8
	cases := []struct {
		name   string
		values []float64
	}{
		{"empty", nil},
		{"shorter", []float64{50, 75}},
		{"exact", []float64{0, 10, 20, 30, 40, 50, 60, 70}},
		{"longer", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Graph(c.values, width, SparkGlyphs)
			if n := len([]rune(got)); n != width {
				t.Errorf("len = %d, want %d (%q)", n, width, got)
			}
		})
	}
}

func TestGraph_LevelsAndOrder(t *testing.T) {
	got := Graph([]float64{0, 100}, 2, SparkGlyphs)
	want := "▁█"
	if got != want {
		t.Errorf("Graph = %q, want %q", got, want)
	}

	// Longer than width keeps the most recent values, rightmost last.
	got = Graph([]float64{100, 0, 100}, 2, SparkGlyphs)
	if got != "▁█" {
		t.Errorf("Graph truncation = %q, want %q", got, "▁█")
	}

	// Shorter than width keeps values leftmost and pads the right with the
	// lowest glyph.
	got = Graph([]float64{50, 100}, 6, SparkGlyphs)
	if got != "▄█▁▁▁▁" {
		t.Errorf("Graph padding = %q, want %q", got, "▄█▁▁▁▁")
	}
}

func TestMeter(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{0, "░░░░░░░░░░"},
		{50, "█████░░░░░"},
		{95, "█████████░"},
		{100, "██████████"},
	}
	for _, c := range cases {
		if got := Meter(c.pct, 10, '█', '░'); got != c.want {
			t.Errorf("Meter(%v) = %q, want %q", c.pct, got, c.want)
		}
	}
}
