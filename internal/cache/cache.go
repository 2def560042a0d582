// Package cache persists the last successful usage snapshot so an
// invocation that cannot reach the endpoint still has something to show.
// It is a single slot with a TTL, overwritten wholesale on every save.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ccbar/ccbar/internal/model"
)

// Store is a single-slot snapshot cache backed by one JSON file.
type Store struct {
	Path string
	TTL  time.Duration
}

type entry struct {
	CapturedAt time.Time           `json:"captured_at"`
	Snapshot   model.UsageSnapshot `json:"snapshot"`
}

// DefaultPath returns the standard cache file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ccbar", "usage-cache.json"), nil
}

// Load returns the cached snapshot and its capture time if an entry exists
// and is younger than the TTL. Any read or decode problem is a miss.
func (s *Store) Load(now time.Time) (model.UsageSnapshot, time.Time, bool) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return model.UsageSnapshot{}, time.Time{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return model.UsageSnapshot{}, time.Time{}, false
	}

	if e.CapturedAt.IsZero() || now.Sub(e.CapturedAt) >= s.TTL {
		return model.UsageSnapshot{}, time.Time{}, false
	}

	return e.Snapshot, e.CapturedAt, true
}

// Save overwrites the slot. Failures are returned so the caller can log
// them, but losing the cache only degrades the next offline render.
func (s *Store) Save(now time.Time, snap model.UsageSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}

	data, err := json.Marshal(entry{CapturedAt: now, Snapshot: snap})
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0644)
}
