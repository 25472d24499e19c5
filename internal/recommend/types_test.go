// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import "testing"

func TestEventTypeRoundTrip(t *testing.T) {
	for _, ev := range []EventType{
		EventView, EventBorrow, EventComplete,
		EventBookmarkAdd, EventNoteCreate, EventSearch,
	} {
		if got := ParseEventType(ev.String()); got != ev {
			t.Errorf("ParseEventType(%q) = %v, want %v", ev.String(), got, ev)
		}
	}
	if got := ParseEventType("bogus"); got != EventView {
		t.Errorf("unknown event = %v, want EventView", got)
	}
}

func TestEventWeightsOrdering(t *testing.T) {
	// Completing dominates, searching barely registers.
	order := []EventType{EventComplete, EventBorrow, EventNoteCreate,
		EventBookmarkAdd, EventView, EventSearch}
	for i := 1; i < len(order); i++ {
		if order[i-1].Weight() <= order[i].Weight() {
			t.Errorf("%v weight %v should exceed %v weight %v",
				order[i-1], order[i-1].Weight(), order[i], order[i].Weight())
		}
	}
}

func TestEngagementLevels(t *testing.T) {
	cases := []struct {
		score float64
		want  EngagementLevel
	}{
		{0, EngagementLow},
		{20, EngagementLow},
		{21, EngagementMedium},
		{50, EngagementMedium},
		{51, EngagementHigh},
		{100, EngagementHigh},
		{101, EngagementPower},
	}
	for _, tc := range cases {
		if got := engagementLevelFor(tc.score); got != tc.want {
			t.Errorf("engagementLevelFor(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestPrimaryCategory(t *testing.T) {
	b := &Book{Categories: []string{"Fantasy", "Adventure"}}
	if got := b.PrimaryCategory(); got != "Fantasy" {
		t.Errorf("PrimaryCategory = %q", got)
	}
	empty := &Book{}
	if got := empty.PrimaryCategory(); got != "Uncategorized" {
		t.Errorf("PrimaryCategory = %q, want Uncategorized", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	mutations := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero lookback", func(c *Config) { c.Profile.Lookback = 0 }},
		{"inverted windows", func(c *Config) { c.Profile.MidWindow = c.Profile.RecentWindow }},
		{"penalty above one", func(c *Config) { c.Scoring.WeakMatchPenalty = 1.5 }},
		{"cutoff too high", func(c *Config) { c.Scoring.MinScore = 100 }},
		{"inverted author caps", func(c *Config) { c.Diversity.LooseMaxPerAuthor = 1 }},
		{"zero default limit", func(c *Config) { c.Limits.DefaultLimit = 0 }},
		{"zero timeout", func(c *Config) { c.Limits.StoreTimeout = 0 }},
	}
	for _, tc := range mutations {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
