// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// profileBuilder aggregates raw behavioral records into a Profile.
type profileBuilder struct {
	store Store
	cfg   *Config

	// now is injected for deterministic tests; defaults to time.Now.
	now func() time.Time
}

func newProfileBuilder(store Store, cfg *Config) *profileBuilder {
	return &profileBuilder{store: store, cfg: cfg, now: time.Now}
}

// weightedBag accumulates value -> weight while preserving first-encounter
// order. The reference pushed N copies of each value into a counting list;
// accumulating weights directly is semantically equivalent (top-N by frequency
// over repeated pushes equals top-N by accumulated weight) without the memory
// blowup for large weights. Ties break by first-encountered order, which the
// insertion-order slice preserves.
type weightedBag struct {
	weights map[string]float64
	order   []string

	// totalPushes is the sum of weights added, i.e. how many copies the
	// reference would have pushed. The diversity score needs it.
	totalPushes float64
}

func newWeightedBag() *weightedBag {
	return &weightedBag{weights: make(map[string]float64)}
}

func (b *weightedBag) add(value string, weight float64) {
	if value == "" || weight <= 0 {
		return
	}
	if _, ok := b.weights[value]; !ok {
		b.order = append(b.order, value)
	}
	b.weights[value] += weight
	b.totalPushes += weight
}

func (b *weightedBag) unique() int {
	return len(b.order)
}

// topN returns the n highest-weighted distinct values, ties broken by
// first-encountered order.
func (b *weightedBag) topN(n int) []string {
	if n <= 0 || len(b.order) == 0 {
		return nil
	}
	ranked := make([]string, len(b.order))
	copy(ranked, b.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return b.weights[ranked[i]] > b.weights[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// profileInputs holds the four independent store reads feeding the builder.
type profileInputs struct {
	interactions []Interaction
	loans        []Loan
	bookmarks    []Bookmark
	notes        []Note
}

// fetchInputs batch-issues the four profile-input reads concurrently. They are
// independent read paths with no ordering dependency, so they commute.
func (pb *profileBuilder) fetchInputs(ctx context.Context, userID string) (*profileInputs, error) {
	since := pb.now().Add(-pb.cfg.Profile.Lookback)
	in := &profileInputs{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := pb.store.GetInteractions(gctx, userID, since)
		if err != nil {
			return unavailable("get interactions", err)
		}
		in.interactions = recs
		return nil
	})
	g.Go(func() error {
		loans, err := pb.store.GetLoans(gctx, userID,
			[]LoanStatus{LoanBorrowed, LoanReturnRequested, LoanReturned}, since)
		if err != nil {
			return unavailable("get loans", err)
		}
		in.loans = loans
		return nil
	})
	g.Go(func() error {
		bms, err := pb.store.GetBookmarks(gctx, userID)
		if err != nil {
			return unavailable("get bookmarks", err)
		}
		in.bookmarks = bms
		return nil
	})
	g.Go(func() error {
		notes, err := pb.store.GetNotes(gctx, userID)
		if err != nil {
			return unavailable("get notes", err)
		}
		in.notes = notes
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// Build constructs a fresh Profile for the user. A user with no history yields
// a profile with zero interaction counts; callers must treat that as "no
// profile" and route to the fallback provider.
func (pb *profileBuilder) Build(ctx context.Context, userID string) (*Profile, error) {
	in, err := pb.fetchInputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return pb.aggregate(userID, in), nil
}

// timeDecay returns the recency multiplier for a record timestamp: x3 within
// the recent window, x2 within the mid window, x1.5 for the rest of the
// lookback.
func (pb *profileBuilder) timeDecay(ts time.Time) float64 {
	age := pb.now().Sub(ts)
	switch {
	case age <= pb.cfg.Profile.RecentWindow:
		return pb.cfg.Profile.RecentDecay
	case age <= pb.cfg.Profile.MidWindow:
		return pb.cfg.Profile.MidDecay
	default:
		return pb.cfg.Profile.OldDecay
	}
}

func (pb *profileBuilder) aggregate(userID string, in *profileInputs) *Profile {
	var (
		categories = newWeightedBag()
		tags       = newWeightedBag()
		authors    = newWeightedBag()
		publishers = newWeightedBag()
		formats    = newWeightedBag()

		yearSum    float64
		yearWeight float64

		recent int
	)

	now := pb.now()
	recentCutoff := now.Add(-pb.cfg.Profile.RecentWindow)

	for i := range in.interactions {
		rec := &in.interactions[i]

		if rec.Timestamp.After(recentCutoff) {
			recent++
		}

		// Per-record weight: event weight scaled by time decay, rounded the
		// way the reference rounded its push counts.
		w := math.Round(rec.Event.Weight() * pb.timeDecay(rec.Timestamp))
		if w <= 0 {
			continue
		}

		for _, c := range rec.Meta.Categories {
			categories.add(c, w)
		}
		for _, t := range rec.Meta.Tags {
			tags.add(t, w)
		}
		authors.add(rec.Meta.Author, w)
		publishers.add(rec.Meta.Publisher, w)
		formats.add(rec.Meta.Format, w)
		if rec.Meta.Year > 0 {
			yearSum += float64(rec.Meta.Year) * w
			yearWeight += w
		}
	}

	// Loan transactions contribute a flat weight to categories and authors,
	// independent of and additive to the interaction-derived signal.
	borrowedIDs := make([]string, 0, len(in.loans))
	for i := range in.loans {
		loan := &in.loans[i]
		borrowedIDs = append(borrowedIDs, loan.BookID)

		w := pb.cfg.Profile.BorrowedWeight
		if loan.Status == LoanReturned {
			w = pb.cfg.Profile.ReturnedWeight
		}
		for _, c := range loan.Meta.Categories {
			categories.add(c, w)
		}
		authors.add(loan.Meta.Author, w)
	}

	p := &Profile{
		UserID:             userID,
		TopCategories:      categories.topN(pb.cfg.Profile.TopCategories),
		TopTags:            tags.topN(pb.cfg.Profile.TopTags),
		TopAuthors:         authors.topN(pb.cfg.Profile.TopAuthors),
		TopPublishers:      publishers.topN(pb.cfg.Profile.TopPublishers),
		TopFormats:         formats.topN(pb.cfg.Profile.TopFormats),
		TotalInteractions:  len(in.interactions),
		RecentInteractions: recent,
		BorrowCount:        len(in.loans),
		BookmarkCount:      len(in.bookmarks),
		NoteCount:          len(in.notes),
		BorrowedBookIDs:    borrowedIDs,
	}

	if yearWeight > 0 {
		p.AvgPreferredYear = yearSum / yearWeight
	}

	p.DiversityScore = pb.diversityScore(categories, tags, authors)

	engagement := float64(p.BorrowCount)*3 + float64(p.BookmarkCount)*2 +
		float64(p.NoteCount)*2 + float64(p.TotalInteractions)
	p.Engagement = engagementLevelFor(engagement)

	return p
}

// diversityScore measures how spread-out consumption is: distinct values over
// total weighted pushes across the category, tag and author bags, capped at 1.
// With no data it returns the neutral prior.
func (pb *profileBuilder) diversityScore(categories, tags, authors *weightedBag) float64 {
	totalPushes := categories.totalPushes + tags.totalPushes + authors.totalPushes
	if totalPushes == 0 {
		return pb.cfg.Profile.NeutralDiversity
	}
	unique := float64(categories.unique() + tags.unique() + authors.unique())
	return math.Min(unique/totalPushes, 1.0)
}
