// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import "context"

// fallbackProvider serves non-personalized recommendations when no profile
// exists or the personalized pipeline came up empty. Every item carries the
// same flat score so callers can tell a fallback list from a personalized one.
type fallbackProvider struct {
	store Store
	cfg   *FallbackConfig
}

func newFallbackProvider(store Store, cfg *FallbackConfig) *fallbackProvider {
	return &fallbackProvider{store: store, cfg: cfg}
}

// Popular returns the most popular available books. Ordering comes from the
// store: popularity descending, year descending on ties.
func (f *fallbackProvider) Popular(ctx context.Context, limit int) ([]ScoredBook, error) {
	books, err := f.store.GetPopularBooks(ctx, limit)
	if err != nil {
		return nil, unavailable("get popular books", err)
	}

	out := make([]ScoredBook, len(books))
	for i := range books {
		out[i] = ScoredBook{
			Book:           books[i],
			RelevanceScore: f.cfg.Score,
			MatchReasons:   []string{f.reason(i, &books[i])},
		}
	}
	return out, nil
}

// reason picks one explanation per item. The first slot is always the headline
// "Most popular"; later slots describe the book itself.
func (f *fallbackProvider) reason(index int, book *Book) string {
	switch {
	case index == 0:
		return "Most popular"
	case book.Year >= f.cfg.RecentYear:
		return "Recently published"
	case book.PopularityScore > f.cfg.PopularThreshold:
		return "Popular with students"
	default:
		return "Trending now"
	}
}
