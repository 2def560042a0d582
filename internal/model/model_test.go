package model

import "testing"

func TestClassifyModel(t *testing.T) {
	cases := []struct {
		model string
		want  Tier
	}{
		{"claude-opus-4-1-20250805", TierOpus},
		{"claude-sonnet-4-5", TierSonnet},
		{"claude-haiku-4-5", TierHaiku},
		{"Claude-OPUS-4", TierOpus},
		{"gpt-4o", TierUnknown},
		{"", TierUnknown},
	}
	for _, c := range cases {
		if got := ClassifyModel(c.model); got != c.want {
			t.Errorf("ClassifyModel(%q) = %v, want %v", c.model, got, c.want)
		}
	}
}

func TestTokenUsageTotal(t *testing.T) {
	u := TokenUsage{
		InputTokens:              100,
		OutputTokens:             50,
		CacheCreationInputTokens: 25,
		CacheReadInputTokens:     9999, // cache reads don't count against ceilings
	}
	if got := u.Total(); got != 175 {
		t.Errorf("Total = %d, want 175", got)
	}
}

func TestTokenUsageAdd(t *testing.T) {
	a := TokenUsage{InputTokens: 1, OutputTokens: 2, CacheCreationInputTokens: 3, CacheReadInputTokens: 4}
	b := TokenUsage{InputTokens: 10, OutputTokens: 20, CacheCreationInputTokens: 30, CacheReadInputTokens: 40}
	a.Add(b)
	want := TokenUsage{InputTokens: 11, OutputTokens: 22, CacheCreationInputTokens: 33, CacheReadInputTokens: 44}
	if a != want {
		t.Errorf("Add = %+v, want %+v", a, want)
	}
}
