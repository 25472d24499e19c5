// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import (
	"fmt"
	"time"
)

// Config contains all tunables for the recommendation engine. The defaults
// reproduce the reference scoring model; treat the magic constants (weak-match
// penalty, score cutoff) as configuration rather than literals.
type Config struct {
	// Profile contains profile-building parameters.
	Profile ProfileConfig `json:"profile"`

	// Scoring contains the additive scoring weight tables.
	Scoring ScoringConfig `json:"scoring"`

	// Similar contains the book-to-book scoring weight tables.
	Similar SimilarConfig `json:"similar"`

	// Diversity contains diversity-filter caps.
	Diversity DiversityConfig `json:"diversity"`

	// Fallback contains popularity-fallback parameters.
	Fallback FallbackConfig `json:"fallback"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`
}

// ProfileConfig contains profile-building parameters.
type ProfileConfig struct {
	// Lookback is the rolling window for interactions and loans.
	// Default: 90 days.
	Lookback time.Duration `json:"lookback"`

	// RecentWindow bounds the strongest time-decay tier and the
	// recent-activity count. Default: 7 days.
	RecentWindow time.Duration `json:"recent_window"`

	// MidWindow bounds the middle time-decay tier. Default: 30 days.
	MidWindow time.Duration `json:"mid_window"`

	// RecentDecay, MidDecay and OldDecay are the time-decay multipliers for
	// the three tiers. Defaults: 3.0, 2.0, 1.5.
	RecentDecay float64 `json:"recent_decay"`
	MidDecay    float64 `json:"mid_decay"`
	OldDecay    float64 `json:"old_decay"`

	// ReturnedWeight and BorrowedWeight are the flat transaction weights
	// added on top of interaction-derived signal. A returned loan is a
	// stronger preference signal than one still out. Defaults: 12, 8.
	ReturnedWeight float64 `json:"returned_weight"`
	BorrowedWeight float64 `json:"borrowed_weight"`

	// Top-N cutoffs per ranked field. Downstream scoring tie-breaks depend on
	// list position (author rank affects score), so these are part of the
	// behavioral contract. Defaults: 10/12/8/5/3.
	TopCategories int `json:"top_categories"`
	TopTags       int `json:"top_tags"`
	TopAuthors    int `json:"top_authors"`
	TopPublishers int `json:"top_publishers"`
	TopFormats    int `json:"top_formats"`

	// NeutralDiversity is the diversity score assigned when there is no data.
	// A neutral prior, not zero, so new users are not penalized. Default: 0.5.
	NeutralDiversity float64 `json:"neutral_diversity"`
}

// ScoringConfig contains the additive scoring weight tables for the
// profile-based path. Scores are clamped to [0, 100].
type ScoringConfig struct {
	// CategoryTiers scores category overlap: 1 match, 2 matches, 3+ matches.
	// Default: 40/70/90.
	CategoryTiers [3]float64 `json:"category_tiers"`

	// TagTiers scores tag overlap with the same shape. Default: 30/50/70.
	TagTiers [3]float64 `json:"tag_tiers"`

	// AuthorBase and AuthorRankStep score an author match as
	// base - step*rank, so the user's favorite author outranks their 8th.
	// Defaults: 50, 5.
	AuthorBase     float64 `json:"author_base"`
	AuthorRankStep float64 `json:"author_rank_step"`

	// PublisherMatch and FormatMatch are flat affinity bonuses.
	// Defaults: 20, 15.
	PublisherMatch float64 `json:"publisher_match"`
	FormatMatch    float64 `json:"format_match"`

	// YearWindow and YearBase award max(YearBase - |diff|, 0) when the
	// candidate's year is within YearWindow of the preferred year.
	// Defaults: 15, 25.
	YearWindow int     `json:"year_window"`
	YearBase   float64 `json:"year_base"`

	// PopularityScale and PopularityCap award
	// min(log10(pop+1) * scale, cap). Defaults: 10, 35.
	PopularityScale float64 `json:"popularity_scale"`
	PopularityCap   float64 `json:"popularity_cap"`

	// DiversityBonus is added when the profile's diversity score exceeds
	// DiversityThreshold and the candidate has a category outside the user's
	// top 3 while still matching on some category. Defaults: 15, 0.6.
	DiversityBonus     float64 `json:"diversity_bonus"`
	DiversityThreshold float64 `json:"diversity_threshold"`

	// RecencyScale, RecencyCap and RecencyMin award
	// min(recentCount * scale, cap) when the 7-day interaction count exceeds
	// RecencyMin. Defaults: 1.5, 20, 5.
	RecencyScale float64 `json:"recency_scale"`
	RecencyCap   float64 `json:"recency_cap"`
	RecencyMin   int     `json:"recency_min"`

	// WeakMatchPenalty multiplies the whole score when there is zero
	// category, tag or author overlap: popularity and format signals alone
	// should not dominate a recommendation. Default: 0.4.
	WeakMatchPenalty float64 `json:"weak_match_penalty"`

	// MinScore is the cutoff below which (inclusive) candidates are dropped.
	// Default: 20.
	MinScore int `json:"min_score"`

	// MaxReasons caps the match-reason list. Default: 3.
	MaxReasons int `json:"max_reasons"`
}

// SimilarConfig contains the book-to-book weight tables, analogous to
// ScoringConfig but scored against one source book instead of a profile.
type SimilarConfig struct {
	// AuthorMatch is the flat bonus for the same author. Default: 70.
	AuthorMatch float64 `json:"author_match"`

	// CategoryTiers and TagTiers mirror the profile path.
	// Defaults: 40/70/90 and 30/50/70.
	CategoryTiers [3]float64 `json:"category_tiers"`
	TagTiers      [3]float64 `json:"tag_tiers"`

	// PublisherMatch is the flat same-publisher bonus. Default: 20.
	PublisherMatch float64 `json:"publisher_match"`

	// YearWindow and YearBase award max(YearBase - diff, 0) within the
	// window. Defaults: 10, 20.
	YearWindow int     `json:"year_window"`
	YearBase   float64 `json:"year_base"`

	// PopularityScale and PopularityCap mirror the profile path with a
	// smaller contribution. Defaults: 8, 25.
	PopularityScale float64 `json:"popularity_scale"`
	PopularityCap   float64 `json:"popularity_cap"`
}

// DiversityConfig contains the diversity-filter caps.
type DiversityConfig struct {
	// MinListSize disables the filter for short lists. Default: 6.
	MinListSize int `json:"min_list_size"`

	// HighThreshold switches between the tight and loose caps.
	// Default: 0.7.
	HighThreshold float64 `json:"high_threshold"`

	// Author caps: tight applies above HighThreshold. Defaults: 2, 3.
	TightMaxPerAuthor int `json:"tight_max_per_author"`
	LooseMaxPerAuthor int `json:"loose_max_per_author"`

	// Category caps, keyed on the primary category. Defaults: 3, 4.
	TightMaxPerCategory int `json:"tight_max_per_category"`
	LooseMaxPerCategory int `json:"loose_max_per_category"`

	// OverrideScore admits a candidate unconditionally: the single best match
	// is never dropped for diversity bookkeeping. Default: 90.
	OverrideScore int `json:"override_score"`
}

// FallbackConfig contains popularity-fallback parameters.
type FallbackConfig struct {
	// Score is the flat, non-discriminating relevance score assigned to
	// fallback items, signaling "no personalization available". Default: 50.
	Score int `json:"score"`

	// RecentYear is the publication-year threshold for the
	// "Recently published" reason. Default: 2023.
	RecentYear int `json:"recent_year"`

	// PopularThreshold is the popularity threshold for the
	// "Popular with students" reason. Default: 150.
	PopularThreshold float64 `json:"popular_threshold"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit is the number of recommendations returned when the
	// request does not specify one. Default: 10.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps the requested limit. Default: 50.
	MaxLimit int `json:"max_limit"`

	// MaxCandidates is the candidate pool size, intentionally generous so the
	// scorer and diversity filter can re-rank without starving the final
	// list. Default: 100.
	MaxCandidates int `json:"max_candidates"`

	// CandidateYearWindow is the year-proximity window of the candidate
	// query, narrower than the scoring window. Default: 10.
	CandidateYearWindow int `json:"candidate_year_window"`

	// Neighbors caps the collaborative-filter neighbor set. Default: 10.
	Neighbors int `json:"neighbors"`

	// NeighborBooks caps the collaborative candidate identities. Default: 20.
	NeighborBooks int `json:"neighbor_books"`

	// MinSharedBooks is the co-borrow overlap required to qualify as a
	// neighbor. Default: 2.
	MinSharedBooks int `json:"min_shared_books"`

	// MinNeighborBorrows is the distinct-neighbor count required to surface a
	// neighbor book. Default: 2.
	MinNeighborBorrows int `json:"min_neighbor_borrows"`

	// StoreTimeout bounds every store call; the collaborative aggregation is
	// the most expensive single step and must not run unbounded. Default: 5s.
	StoreTimeout time.Duration `json:"store_timeout"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() *Config {
	return &Config{
		Profile: ProfileConfig{
			Lookback:         90 * 24 * time.Hour,
			RecentWindow:     7 * 24 * time.Hour,
			MidWindow:        30 * 24 * time.Hour,
			RecentDecay:      3.0,
			MidDecay:         2.0,
			OldDecay:         1.5,
			ReturnedWeight:   12,
			BorrowedWeight:   8,
			TopCategories:    10,
			TopTags:          12,
			TopAuthors:       8,
			TopPublishers:    5,
			TopFormats:       3,
			NeutralDiversity: 0.5,
		},
		Scoring: ScoringConfig{
			CategoryTiers:      [3]float64{40, 70, 90},
			TagTiers:           [3]float64{30, 50, 70},
			AuthorBase:         50,
			AuthorRankStep:     5,
			PublisherMatch:     20,
			FormatMatch:        15,
			YearWindow:         15,
			YearBase:           25,
			PopularityScale:    10,
			PopularityCap:      35,
			DiversityBonus:     15,
			DiversityThreshold: 0.6,
			RecencyScale:       1.5,
			RecencyCap:         20,
			RecencyMin:         5,
			WeakMatchPenalty:   0.4,
			MinScore:           20,
			MaxReasons:         3,
		},
		Similar: SimilarConfig{
			AuthorMatch:     70,
			CategoryTiers:   [3]float64{40, 70, 90},
			TagTiers:        [3]float64{30, 50, 70},
			PublisherMatch:  20,
			YearWindow:      10,
			YearBase:        20,
			PopularityScale: 8,
			PopularityCap:   25,
		},
		Diversity: DiversityConfig{
			MinListSize:         6,
			HighThreshold:       0.7,
			TightMaxPerAuthor:   2,
			LooseMaxPerAuthor:   3,
			TightMaxPerCategory: 3,
			LooseMaxPerCategory: 4,
			OverrideScore:       90,
		},
		Fallback: FallbackConfig{
			Score:            50,
			RecentYear:       2023,
			PopularThreshold: 150,
		},
		Limits: LimitsConfig{
			DefaultLimit:        10,
			MaxLimit:            50,
			MaxCandidates:       100,
			CandidateYearWindow: 10,
			Neighbors:           10,
			NeighborBooks:       20,
			MinSharedBooks:      2,
			MinNeighborBorrows:  2,
			StoreTimeout:        5 * time.Second,
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Profile.Lookback <= 0 {
		return fmt.Errorf("profile.lookback must be positive, got %v", c.Profile.Lookback)
	}
	if c.Profile.RecentWindow <= 0 || c.Profile.MidWindow <= c.Profile.RecentWindow {
		return fmt.Errorf("profile windows must satisfy 0 < recent (%v) < mid (%v)",
			c.Profile.RecentWindow, c.Profile.MidWindow)
	}
	if c.Profile.Lookback <= c.Profile.MidWindow {
		return fmt.Errorf("profile.lookback (%v) must exceed mid window (%v)",
			c.Profile.Lookback, c.Profile.MidWindow)
	}
	if c.Profile.NeutralDiversity < 0 || c.Profile.NeutralDiversity > 1 {
		return fmt.Errorf("profile.neutral_diversity must be in [0,1], got %v",
			c.Profile.NeutralDiversity)
	}
	if c.Scoring.WeakMatchPenalty < 0 || c.Scoring.WeakMatchPenalty > 1 {
		return fmt.Errorf("scoring.weak_match_penalty must be in [0,1], got %v",
			c.Scoring.WeakMatchPenalty)
	}
	if c.Scoring.MinScore < 0 || c.Scoring.MinScore >= 100 {
		return fmt.Errorf("scoring.min_score must be in [0,100), got %d", c.Scoring.MinScore)
	}
	if c.Scoring.MaxReasons <= 0 {
		return fmt.Errorf("scoring.max_reasons must be positive, got %d", c.Scoring.MaxReasons)
	}
	if c.Diversity.HighThreshold < 0 || c.Diversity.HighThreshold > 1 {
		return fmt.Errorf("diversity.high_threshold must be in [0,1], got %v",
			c.Diversity.HighThreshold)
	}
	if c.Diversity.TightMaxPerAuthor <= 0 || c.Diversity.LooseMaxPerAuthor < c.Diversity.TightMaxPerAuthor {
		return fmt.Errorf("diversity author caps must satisfy 0 < tight (%d) <= loose (%d)",
			c.Diversity.TightMaxPerAuthor, c.Diversity.LooseMaxPerAuthor)
	}
	if c.Diversity.TightMaxPerCategory <= 0 || c.Diversity.LooseMaxPerCategory < c.Diversity.TightMaxPerCategory {
		return fmt.Errorf("diversity category caps must satisfy 0 < tight (%d) <= loose (%d)",
			c.Diversity.TightMaxPerCategory, c.Diversity.LooseMaxPerCategory)
	}
	if c.Limits.DefaultLimit <= 0 || c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits must satisfy 0 < default (%d) <= max (%d)",
			c.Limits.DefaultLimit, c.Limits.MaxLimit)
	}
	if c.Limits.MaxCandidates <= 0 {
		return fmt.Errorf("limits.max_candidates must be positive, got %d", c.Limits.MaxCandidates)
	}
	if c.Limits.CandidateYearWindow <= 0 {
		return fmt.Errorf("limits.candidate_year_window must be positive, got %d",
			c.Limits.CandidateYearWindow)
	}
	if c.Limits.MinSharedBooks <= 0 || c.Limits.MinNeighborBorrows <= 0 {
		return fmt.Errorf("collaborative minimums must be positive, got %d/%d",
			c.Limits.MinSharedBooks, c.Limits.MinNeighborBorrows)
	}
	if c.Limits.StoreTimeout <= 0 {
		return fmt.Errorf("limits.store_timeout must be positive, got %v", c.Limits.StoreTimeout)
	}
	return nil
}
