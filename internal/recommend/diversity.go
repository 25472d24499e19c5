// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

// diversityFilter walks a score-ordered list and caps how many books any one
// author or primary category may contribute. It preserves order and never
// reorders; it only skips. Exploratory users (high diversity score) get the
// tighter caps.
type diversityFilter struct {
	cfg *DiversityConfig
}

func newDiversityFilter(cfg *DiversityConfig) *diversityFilter {
	return &diversityFilter{cfg: cfg}
}

// Apply filters the ranked list down to limit, honoring the per-author and
// per-category caps. Lists shorter than MinListSize pass through untouched,
// truncated to limit. Scores at or above OverrideScore bypass the caps: the
// best matches are never sacrificed to variety.
func (d *diversityFilter) Apply(ranked []ScoredBook, diversityScore float64, limit int) []ScoredBook {
	if len(ranked) < d.cfg.MinListSize {
		if len(ranked) > limit {
			return ranked[:limit]
		}
		return ranked
	}

	maxAuthor := d.cfg.LooseMaxPerAuthor
	maxCategory := d.cfg.LooseMaxPerCategory
	if diversityScore > d.cfg.HighThreshold {
		maxAuthor = d.cfg.TightMaxPerAuthor
		maxCategory = d.cfg.TightMaxPerCategory
	}

	var (
		out       = make([]ScoredBook, 0, limit)
		byAuthor  = make(map[string]int)
		byPrimary = make(map[string]int)
	)
	for i := range ranked {
		sb := &ranked[i]
		author := sb.Book.Author
		primary := sb.Book.PrimaryCategory()

		if sb.RelevanceScore < d.cfg.OverrideScore {
			if byAuthor[author] >= maxAuthor || byPrimary[primary] >= maxCategory {
				continue
			}
		}

		byAuthor[author]++
		byPrimary[primary]++
		out = append(out, *sb)
		if len(out) >= limit {
			break
		}
	}
	return out
}
