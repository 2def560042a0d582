// Package history keeps a bounded, append-only sequence of utilization
// samples for trend and sparkline derivation.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ccbar/ccbar/internal/model"
)

// Store persists samples to one JSON file, oldest first.
//
// Record is gated by MinInterval: the host shell may invoke the program
// far more often than one sample per interval is worth keeping, so calls
// inside the gate are no-ops rather than buffer growth.
type Store struct {
	Path        string
	MaxSamples  int
	MinInterval time.Duration
}

// DefaultPath returns the standard history file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ccbar", "history.json"), nil
}

// Load returns the stored samples oldest-first. Any read or decode problem
// yields an empty history.
func (s *Store) Load() []model.HistorySample {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil
	}

	var samples []model.HistorySample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil
	}
	return samples
}

// Record appends a sample unless the previous one is younger than
// MinInterval. Oldest samples are evicted once MaxSamples is exceeded.
// Returns whether a sample was stored.
func (s *Store) Record(now time.Time, shortPct, longPct float64) bool {
	samples := s.Load()

	if n := len(samples); n > 0 && now.Sub(samples[n-1].TS) < s.MinInterval {
		return false
	}

	samples = append(samples, model.HistorySample{TS: now, ShortPct: shortPct, LongPct: longPct})
	if s.MaxSamples > 0 && len(samples) > s.MaxSamples {
		samples = samples[len(samples)-s.MaxSamples:]
	}

	s.save(samples)
	return true
}

// save is best-effort: losing history only blanks the trend display.
func (s *Store) save(samples []model.HistorySample) {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return
	}
	data, err := json.Marshal(samples)
	if err != nil {
		return
	}
	os.WriteFile(s.Path, data, 0644)
}
