// Package logscan reduces the local Claude Code session logs into
// per-window usage counters.
//
// Every call re-walks and re-parses the full corpus; there is no
// incremental state. That makes a window query O(total log size), which is
// fine for a local history but worth knowing when querying several windows
// per invocation (use AggregateMulti to pay the scan once).
package logscan

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ccbar/ccbar/internal/model"
)

// rawEntry mirrors the JSON structure of one Claude Code JSONL line.
// Unknown fields are ignored by the decoder.
type rawEntry struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Timestamp string `json:"timestamp"`
	Message   struct {
		Model   string          `json:"model"`
		Content json.RawMessage `json:"content"`
		Usage   *struct {
			InputTokens              int64 `json:"input_tokens"`
			OutputTokens             int64 `json:"output_tokens"`
			CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
			CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

// Scanner aggregates usage from a directory tree of JSONL files.
type Scanner struct {
	Root string // e.g. ~/.claude/projects
}

// DefaultRoot returns the standard Claude Code projects directory.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "projects")
}

// Aggregate reduces all records with timestamps in [since, now] into a
// single UsageWindow. A missing root directory yields an empty window;
// unreadable files and malformed lines are skipped.
func (s *Scanner) Aggregate(since time.Time) model.UsageWindow {
	return s.AggregateMulti(since)[0]
}

// AggregateMulti computes one UsageWindow per since value in a single pass
// over the corpus. Results are returned in argument order.
func (s *Scanner) AggregateMulti(sinces ...time.Time) []model.UsageWindow {
	windows := make([]model.UsageWindow, len(sinces))
	for i := range windows {
		windows[i] = model.NewUsageWindow()
	}

	for _, path := range s.findFiles() {
		s.scanFile(path, sinces, windows)
	}

	return windows
}

// findFiles walks the root for JSONL files. Walk errors (including a
// missing root) are treated as "no files".
func (s *Scanner) findFiles() []string {
	var files []string
	filepath.Walk(s.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && filepath.Ext(path) == ".jsonl" {
			files = append(files, path)
		}
		return nil
	})
	return files
}

func (s *Scanner) scanFile(path string, sinces []time.Time, windows []model.UsageWindow) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	// Large lines are common; tool results can run to hundreds of KB.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw rawEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			continue
		}

		ts, err := time.Parse(time.RFC3339, raw.Timestamp)
		if err != nil {
			continue
		}

		for i, since := range sinces {
			if ts.Before(since) {
				continue
			}
			applyEntry(&windows[i], &raw, ts)
		}
	}
}

// applyEntry folds one in-window record into the running counters.
func applyEntry(w *model.UsageWindow, raw *rawEntry, ts time.Time) {
	switch raw.Type {
	case "user":
		if isRealPrompt(raw.Message.Content) {
			w.Prompts++
		}
	case "assistant":
		// Usage presence, not magnitude, decides whether a record counts:
		// a zero-token response still consumed an API call.
		u := raw.Message.Usage
		if u == nil {
			return
		}

		usage := model.TokenUsage{
			InputTokens:              u.InputTokens,
			OutputTokens:             u.OutputTokens,
			CacheCreationInputTokens: u.CacheCreationInputTokens,
			CacheReadInputTokens:     u.CacheReadInputTokens,
		}

		w.APICalls++
		w.Usage.Add(usage)

		tier := model.ClassifyModel(raw.Message.Model)
		bucket := w.ByTier[tier]
		bucket.Add(usage)
		w.ByTier[tier] = bucket

		if raw.SessionID != "" {
			w.Sessions[raw.SessionID] = struct{}{}
		}

		if w.FirstActivity.IsZero() || ts.Before(w.FirstActivity) {
			w.FirstActivity = ts
		}
		if ts.After(w.LastActivity) {
			w.LastActivity = ts
		}
	}
}

// isRealPrompt reports whether a user entry's content is an actual typed
// prompt. Tool-result-only entries share type "user" but carry no free
// text and must not count.
func isRealPrompt(content json.RawMessage) bool {
	if len(content) == 0 {
		return false
	}

	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		for _, r := range text {
			if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
				return true
			}
		}
		return false
	}

	var parts []struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(content, &parts); err != nil {
		return false
	}
	for _, p := range parts {
		if p.Type == "text" {
			return true
		}
	}
	return false
}
