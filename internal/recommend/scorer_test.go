// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import (
	"strings"
	"testing"
)

func testProfile() *Profile {
	return &Profile{
		UserID:           "u1",
		TopCategories:    []string{"Science Fiction", "Fantasy", "Mystery"},
		TopTags:          []string{"space", "epic"},
		TopAuthors:       []string{"J.K. Rowling", "Frank Herbert"},
		TopPublishers:    []string{"Tor"},
		TopFormats:       []string{"ebook"},
		AvgPreferredYear: 2000,
		DiversityScore:   0.5,
		Engagement:       EngagementLow,
	}
}

func TestScorerAuthorLoyalty(t *testing.T) {
	s := newScorer(&DefaultConfig().Scoring)
	p := testProfile()

	sb, ok := s.Score(p, &Book{ID: "b1", Title: "The Casual Vacancy", Author: "J.K. Rowling"})
	if !ok {
		t.Fatal("author match should survive the cutoff")
	}
	// Rank 0 author: 50 + low-engagement boost 5.
	if sb.RelevanceScore != 55 {
		t.Errorf("score = %d, want 55", sb.RelevanceScore)
	}
	if !strings.Contains(sb.MatchReasons[0], "J.K. Rowling") {
		t.Errorf("reason %q should name the author", sb.MatchReasons[0])
	}

	// Rank 1 author loses one step.
	sb2, ok := s.Score(p, &Book{ID: "b2", Author: "Frank Herbert"})
	if !ok || sb2.RelevanceScore != 50 {
		t.Errorf("rank-1 author score = %d, want 50", sb2.RelevanceScore)
	}
}

func TestScorerCategoryTiers(t *testing.T) {
	s := newScorer(&DefaultConfig().Scoring)
	p := testProfile()

	cases := []struct {
		name string
		cats []string
		want int
	}{
		{"one match", []string{"Science Fiction"}, 45},
		{"two matches", []string{"Science Fiction", "Fantasy"}, 75},
		{"three matches", []string{"Science Fiction", "Fantasy", "Mystery"}, 95},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sb, ok := s.Score(p, &Book{ID: "b", Categories: tc.cats})
			if !ok {
				t.Fatal("category match should survive the cutoff")
			}
			if sb.RelevanceScore != tc.want {
				t.Errorf("score = %d, want %d", sb.RelevanceScore, tc.want)
			}
			if !strings.Contains(sb.MatchReasons[0], "Science Fiction") {
				t.Errorf("reason %q should name the first matched category", sb.MatchReasons[0])
			}
		})
	}
}

func TestScorerTagTiers(t *testing.T) {
	s := newScorer(&DefaultConfig().Scoring)
	p := testProfile()

	sb, ok := s.Score(p, &Book{ID: "b", Tags: []string{"space", "epic"}})
	if !ok {
		t.Fatal("tag match should survive the cutoff")
	}
	// Two tags: 50 + boost 5.
	if sb.RelevanceScore != 55 {
		t.Errorf("score = %d, want 55", sb.RelevanceScore)
	}
	if !strings.Contains(sb.MatchReasons[0], "space") {
		t.Errorf("reason %q should name the first matched tag", sb.MatchReasons[0])
	}
}

func TestScorerWeakMatchPenalty(t *testing.T) {
	s := newScorer(&DefaultConfig().Scoring)
	p := testProfile()

	// Publisher + format + boost = 40, penalized to 16, at or below the
	// cutoff, dropped.
	if _, ok := s.Score(p, &Book{ID: "b", Publisher: "Tor", Format: "ebook"}); ok {
		t.Error("weak match should be dropped by the cutoff")
	}

	// Same book with a category match keeps the full sum.
	sb, ok := s.Score(p, &Book{ID: "b", Publisher: "Tor", Format: "ebook",
		Categories: []string{"Fantasy"}})
	if !ok {
		t.Fatal("strong match should survive")
	}
	// 40 + 20 + 15 + 5 = 80.
	if sb.RelevanceScore != 80 {
		t.Errorf("score = %d, want 80", sb.RelevanceScore)
	}
}

func TestScorerYearAffinity(t *testing.T) {
	s := newScorer(&DefaultConfig().Scoring)
	p := testProfile()

	// Category 40 + year (25-10) + boost 5 = 60.
	sb, ok := s.Score(p, &Book{ID: "b", Categories: []string{"Mystery"}, Year: 2010})
	if !ok || sb.RelevanceScore != 60 {
		t.Errorf("score = %d, want 60", sb.RelevanceScore)
	}

	// Outside the 15-year window the year contributes nothing.
	sb, ok = s.Score(p, &Book{ID: "b", Categories: []string{"Mystery"}, Year: 2020})
	if !ok || sb.RelevanceScore != 45 {
		t.Errorf("out-of-window score = %d, want 45", sb.RelevanceScore)
	}
}

func TestScorerDiversityBonus(t *testing.T) {
	cfg := DefaultConfig().Scoring
	s := newScorer(&cfg)

	p := testProfile()
	p.DiversityScore = 0.7

	// Matches Science Fiction but also carries a category outside the top 3.
	sb, ok := s.Score(p, &Book{ID: "b", Categories: []string{"Science Fiction", "Horror"}})
	if !ok {
		t.Fatal("should survive")
	}
	// 40 + 15 + 5 = 60.
	if sb.RelevanceScore != 60 {
		t.Errorf("score = %d, want 60 with diversity bonus", sb.RelevanceScore)
	}

	// A low-diversity reader gets no bonus for the same book.
	p.DiversityScore = 0.3
	sb, _ = s.Score(p, &Book{ID: "b", Categories: []string{"Science Fiction", "Horror"}})
	if sb.RelevanceScore != 45 {
		t.Errorf("score = %d, want 45 without bonus", sb.RelevanceScore)
	}
}

func TestScorerRecencyBonus(t *testing.T) {
	s := newScorer(&DefaultConfig().Scoring)
	p := testProfile()
	p.RecentInteractions = 10

	sb, ok := s.Score(p, &Book{ID: "b", Categories: []string{"Mystery"}})
	if !ok {
		t.Fatal("should survive")
	}
	// 40 + min(10*1.5, 20) + 5 = 60.
	if sb.RelevanceScore != 60 {
		t.Errorf("score = %d, want 60", sb.RelevanceScore)
	}

	p.RecentInteractions = 100
	sb, _ = s.Score(p, &Book{ID: "b", Categories: []string{"Mystery"}})
	// Bonus caps at 20: 40 + 20 + 5 = 65.
	if sb.RelevanceScore != 65 {
		t.Errorf("score = %d, want capped 65", sb.RelevanceScore)
	}
}

func TestScorerEngagementBoost(t *testing.T) {
	s := newScorer(&DefaultConfig().Scoring)

	for _, tc := range []struct {
		level EngagementLevel
		want  int
	}{
		{EngagementLow, 45},
		{EngagementMedium, 50},
		{EngagementHigh, 55},
		{EngagementPower, 60},
	} {
		p := testProfile()
		p.Engagement = tc.level
		sb, ok := s.Score(p, &Book{ID: "b", Categories: []string{"Mystery"}})
		if !ok || sb.RelevanceScore != tc.want {
			t.Errorf("%v: score = %d, want %d", tc.level, sb.RelevanceScore, tc.want)
		}
	}
}

func TestScorerRankDeterministic(t *testing.T) {
	s := newScorer(&DefaultConfig().Scoring)
	p := testProfile()

	books := []Book{
		{ID: "z", Categories: []string{"Mystery"}},
		{ID: "a", Categories: []string{"Fantasy"}},
		{ID: "top", Categories: []string{"Science Fiction", "Fantasy"}},
	}
	ranked := s.rank(p, books)
	if len(ranked) != 3 {
		t.Fatalf("ranked %d, want 3", len(ranked))
	}
	if ranked[0].Book.ID != "top" {
		t.Errorf("first = %q, want the two-category match", ranked[0].Book.ID)
	}
	// a and z score identically; ID breaks the tie.
	if ranked[1].Book.ID != "a" || ranked[2].Book.ID != "z" {
		t.Errorf("tie order = %q, %q, want a then z", ranked[1].Book.ID, ranked[2].Book.ID)
	}
}

func TestScorerReasonCap(t *testing.T) {
	s := newScorer(&DefaultConfig().Scoring)
	p := testProfile()
	p.RecentInteractions = 10

	sb, ok := s.Score(p, &Book{
		ID:              "b",
		Author:          "J.K. Rowling",
		Categories:      []string{"Science Fiction"},
		Tags:            []string{"space"},
		PopularityScore: 5000,
	})
	if !ok {
		t.Fatal("should survive")
	}
	if len(sb.MatchReasons) != 3 {
		t.Fatalf("reasons = %v, want exactly 3", sb.MatchReasons)
	}
}
