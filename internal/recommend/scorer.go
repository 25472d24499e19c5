// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import (
	"fmt"
	"math"
	"sort"
)

// scorer ranks candidates against a profile using the additive weight tables
// in ScoringConfig. The output score is an integer clamped to [0, 100].
type scorer struct {
	cfg *ScoringConfig
}

func newScorer(cfg *ScoringConfig) *scorer {
	return &scorer{cfg: cfg}
}

// matchState accumulates the per-candidate signal during one scoring pass, so
// reason selection afterwards does not recompute overlaps.
type matchState struct {
	score float64

	matchedCategories []string
	matchedTags       []string
	matchedAuthor     string
	popular           bool
	recentActivity    bool
}

// strong reports whether the candidate has any direct preference overlap.
// Popularity, format and year signal alone is weak: without category, tag or
// author overlap the whole score is penalized.
func (m *matchState) strong() bool {
	return len(m.matchedCategories) > 0 || len(m.matchedTags) > 0 || m.matchedAuthor != ""
}

// tierScore maps an overlap count to its tier value: 1 match, 2 matches,
// 3 or more.
func tierScore(tiers [3]float64, matches int) float64 {
	switch {
	case matches >= 3:
		return tiers[2]
	case matches == 2:
		return tiers[1]
	case matches == 1:
		return tiers[0]
	default:
		return 0
	}
}

// intersect returns values present in both lists, preserving want's order.
func intersect(want, have []string) []string {
	if len(want) == 0 || len(have) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(have))
	for _, v := range have {
		set[v] = struct{}{}
	}
	var out []string
	for _, v := range want {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Score computes the relevance of a single candidate against the profile.
// Candidates scoring at or below the cutoff return ok=false and are dropped.
func (s *scorer) Score(p *Profile, book *Book) (ScoredBook, bool) {
	m := s.evaluate(p, book)

	if !m.strong() {
		m.score *= s.cfg.WeakMatchPenalty
	}

	score := int(math.Round(math.Max(0, math.Min(m.score, 100))))
	if score <= s.cfg.MinScore {
		return ScoredBook{}, false
	}

	return ScoredBook{
		Book:           *book,
		RelevanceScore: score,
		MatchReasons:   s.reasons(&m, book),
	}, true
}

func (s *scorer) evaluate(p *Profile, book *Book) matchState {
	var m matchState

	m.matchedCategories = intersect(p.TopCategories, book.Categories)
	m.score += tierScore(s.cfg.CategoryTiers, len(m.matchedCategories))

	m.matchedTags = intersect(p.TopTags, book.Tags)
	m.score += tierScore(s.cfg.TagTiers, len(m.matchedTags))

	for rank, author := range p.TopAuthors {
		if author == book.Author {
			m.matchedAuthor = author
			m.score += s.cfg.AuthorBase - s.cfg.AuthorRankStep*float64(rank)
			break
		}
	}

	for _, pub := range p.TopPublishers {
		if pub != "" && pub == book.Publisher {
			m.score += s.cfg.PublisherMatch
			break
		}
	}

	for _, f := range p.TopFormats {
		if f != "" && f == book.Format {
			m.score += s.cfg.FormatMatch
			break
		}
	}

	if p.AvgPreferredYear > 0 && book.Year > 0 {
		diff := math.Abs(float64(book.Year) - p.AvgPreferredYear)
		if diff <= float64(s.cfg.YearWindow) {
			m.score += math.Max(s.cfg.YearBase-diff, 0)
		}
	}

	if book.PopularityScore > 0 {
		pop := math.Min(math.Log10(book.PopularityScore+1)*s.cfg.PopularityScale, s.cfg.PopularityCap)
		m.score += pop
		m.popular = pop >= s.cfg.PopularityCap/2
	}

	m.score += p.Engagement.Boost()

	// Exploratory readers get a bonus for books that match somewhere but sit
	// outside their top-3 categories.
	if p.DiversityScore > s.cfg.DiversityThreshold && len(m.matchedCategories) > 0 {
		if s.outsideTopCategories(p, book) {
			m.score += s.cfg.DiversityBonus
		}
	}

	if p.RecentInteractions > s.cfg.RecencyMin {
		m.score += math.Min(float64(p.RecentInteractions)*s.cfg.RecencyScale, s.cfg.RecencyCap)
		m.recentActivity = true
	}

	return m
}

// outsideTopCategories reports whether the book carries at least one category
// not in the user's top three.
func (s *scorer) outsideTopCategories(p *Profile, book *Book) bool {
	top := p.TopCategories
	if len(top) > 3 {
		top = top[:3]
	}
	set := make(map[string]struct{}, len(top))
	for _, c := range top {
		set[c] = struct{}{}
	}
	for _, c := range book.Categories {
		if _, ok := set[c]; !ok {
			return true
		}
	}
	return false
}

// reasons builds up to MaxReasons human-readable match explanations, in
// priority order: category, tag, author, then softer signals. A candidate that
// survived the cutoff always gets at least one reason.
func (s *scorer) reasons(m *matchState, book *Book) []string {
	out := make([]string, 0, s.cfg.MaxReasons)
	add := func(r string) bool {
		if len(out) >= s.cfg.MaxReasons {
			return false
		}
		out = append(out, r)
		return true
	}

	if len(m.matchedCategories) > 0 {
		add(fmt.Sprintf("Matches your interest in %s", m.matchedCategories[0]))
	}
	if len(m.matchedTags) > 0 {
		add(fmt.Sprintf("Tagged %s, like books you've read", m.matchedTags[0]))
	}
	if m.matchedAuthor != "" {
		add(fmt.Sprintf("By %s, an author you enjoy", m.matchedAuthor))
	}
	if m.popular {
		add("Popular in the library")
	}
	if m.recentActivity {
		add("Based on your recent reading")
	}
	if len(out) == 0 {
		out = append(out, "Recommended for you")
	}
	return out
}

// rank scores every candidate, drops the ones below the cutoff, and sorts by
// score descending with book ID as the tiebreak so equal scores order
// deterministically.
func (s *scorer) rank(p *Profile, candidates []Book) []ScoredBook {
	scored := make([]ScoredBook, 0, len(candidates))
	for i := range candidates {
		if sb, ok := s.Score(p, &candidates[i]); ok {
			scored = append(scored, sb)
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].RelevanceScore != scored[j].RelevanceScore {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		}
		return scored[i].Book.ID < scored[j].Book.ID
	})
	return scored
}
