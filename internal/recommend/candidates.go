// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import (
	"context"
	"math"
)

// candidateGenerator builds the candidate pool for the profile path: one
// compound OR query over the user's preference signals, minus everything the
// user already has.
type candidateGenerator struct {
	store Store
	cf    *collaborativeFilter
	cfg   *Config
}

func newCandidateGenerator(store Store, cf *collaborativeFilter, cfg *Config) *candidateGenerator {
	return &candidateGenerator{store: store, cf: cf, cfg: cfg}
}

// exclusions holds the negative sets for one request. Library entries exclude
// by ISBN and by exact title independently; loans exclude by book identity.
type exclusions struct {
	isbns   []string
	titles  []string
	bookIDs []string
}

// buildExclusions collects the user's personal library and every loan that is
// pending, out, or awaiting return. Returned loans are deliberately absent:
// users may be recommended books they once borrowed again if the overall flow
// surfaces them.
func (g *candidateGenerator) buildExclusions(ctx context.Context, userID string, extra []string) (*exclusions, error) {
	ex := &exclusions{bookIDs: append([]string(nil), extra...)}

	entries, err := g.store.GetLibraryEntries(ctx, userID)
	if err != nil {
		return nil, unavailable("get library entries", err)
	}
	for _, e := range entries {
		if e.ISBN != "" {
			ex.isbns = append(ex.isbns, e.ISBN)
		}
		if e.Title != "" {
			ex.titles = append(ex.titles, e.Title)
		}
	}

	loans, err := g.store.GetLoans(ctx, userID,
		[]LoanStatus{LoanPendingApproval, LoanBorrowed, LoanReturnRequested}, noSince)
	if err != nil {
		return nil, unavailable("get active loans", err)
	}
	for _, l := range loans {
		ex.bookIDs = append(ex.bookIDs, l.BookID)
	}

	return ex, nil
}

// Generate returns the candidate pool for the profile, capped at
// Limits.MaxCandidates. A profile with no usable signal in any strategy skips
// the catalog query entirely and returns an empty pool; the engine routes that
// to the fallback provider.
func (g *candidateGenerator) Generate(ctx context.Context, p *Profile, extraExclude []string) ([]Book, error) {
	cfIDs, err := g.cf.BookIDs(ctx, p)
	if err != nil {
		return nil, err
	}

	if !p.hasCandidateSignal() && len(cfIDs) == 0 {
		return nil, nil
	}

	ex, err := g.buildExclusions(ctx, p.UserID, extraExclude)
	if err != nil {
		return nil, err
	}

	q := CandidateQuery{
		Categories:     p.TopCategories,
		Tags:           p.TopTags,
		Authors:        p.TopAuthors,
		Publishers:     p.TopPublishers,
		Formats:        p.TopFormats,
		BookIDs:        cfIDs,
		ExcludeISBNs:   ex.isbns,
		ExcludeTitles:  ex.titles,
		ExcludeBookIDs: ex.bookIDs,
		Limit:          g.cfg.Limits.MaxCandidates,
	}
	if p.AvgPreferredYear > 0 {
		year := int(math.Round(p.AvgPreferredYear))
		q.YearMin = year - g.cfg.Limits.CandidateYearWindow
		q.YearMax = year + g.cfg.Limits.CandidateYearWindow
	}

	books, err := g.store.FindCandidates(ctx, q)
	if err != nil {
		return nil, unavailable("find candidates", err)
	}
	return books, nil
}
