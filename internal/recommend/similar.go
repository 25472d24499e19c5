// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// similarScorer ranks books against one source book instead of a user profile.
// Author identity dominates; there is no engagement, diversity or recency
// signal since no profile exists on this path.
type similarScorer struct {
	store Store
	cfg   *SimilarConfig

	maxReasons int
	minScore   int
}

func newSimilarScorer(store Store, cfg *Config) *similarScorer {
	return &similarScorer{
		store:      store,
		cfg:        &cfg.Similar,
		maxReasons: cfg.Scoring.MaxReasons,
		minScore:   cfg.Scoring.MinScore,
	}
}

// Similar returns books similar to the given source book, scored 0-100. The
// source book itself is always excluded. A nil return with nil error means the
// source book does not exist.
func (ss *similarScorer) Similar(ctx context.Context, bookID string, exclude []string, limit, maxCandidates int) ([]ScoredBook, *Book, error) {
	source, err := ss.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, nil, unavailable("get book", err)
	}
	if source == nil {
		return nil, nil, nil
	}

	q := CandidateQuery{
		Categories:     source.Categories,
		Tags:           source.Tags,
		ExcludeBookIDs: append([]string{source.ID}, exclude...),
		Limit:          maxCandidates,
	}
	if source.Author != "" {
		q.Authors = []string{source.Author}
	}
	if source.Publisher != "" {
		q.Publishers = []string{source.Publisher}
	}

	candidates, err := ss.store.FindCandidates(ctx, q)
	if err != nil {
		return nil, nil, unavailable("find similar candidates", err)
	}

	scored := make([]ScoredBook, 0, len(candidates))
	for i := range candidates {
		if sb, ok := ss.score(source, &candidates[i]); ok {
			scored = append(scored, sb)
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].RelevanceScore != scored[j].RelevanceScore {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		}
		return scored[i].Book.ID < scored[j].Book.ID
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, source, nil
}

func (ss *similarScorer) score(source, book *Book) (ScoredBook, bool) {
	var (
		score   float64
		reasons []string
	)
	add := func(r string) {
		if len(reasons) < ss.maxReasons {
			reasons = append(reasons, r)
		}
	}

	sharedCats := intersect(source.Categories, book.Categories)
	sharedTags := intersect(source.Tags, book.Tags)

	if source.Author != "" && source.Author == book.Author {
		score += ss.cfg.AuthorMatch
		add(fmt.Sprintf("Also by %s", source.Author))
	}
	if n := len(sharedCats); n > 0 {
		score += tierScore(ss.cfg.CategoryTiers, n)
		add(fmt.Sprintf("Same genre: %s", sharedCats[0]))
	}
	if n := len(sharedTags); n > 0 {
		score += tierScore(ss.cfg.TagTiers, n)
		add(fmt.Sprintf("Shares the %s theme", sharedTags[0]))
	}
	if source.Publisher != "" && source.Publisher == book.Publisher {
		score += ss.cfg.PublisherMatch
	}
	if source.Year > 0 && book.Year > 0 {
		diff := math.Abs(float64(book.Year) - float64(source.Year))
		if diff <= float64(ss.cfg.YearWindow) {
			score += math.Max(ss.cfg.YearBase-diff, 0)
		}
	}
	if book.PopularityScore > 0 {
		score += math.Min(math.Log10(book.PopularityScore+1)*ss.cfg.PopularityScale, ss.cfg.PopularityCap)
	}

	final := int(math.Round(math.Max(0, math.Min(score, 100))))
	if final <= ss.minScore {
		return ScoredBook{}, false
	}
	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("Readers of %q also enjoyed this", source.Title))
	}
	return ScoredBook{Book: *book, RelevanceScore: final, MatchReasons: reasons}, true
}
