// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import "context"

// collaborativeFilter finds books the user's reading neighbors borrowed. It is
// a lightweight co-borrow heuristic, not matrix factorization: neighbors are
// users sharing at least two borrowed books, and a neighbor book must have been
// borrowed by at least two distinct neighbors.
type collaborativeFilter struct {
	store Store
	cfg   *Config
}

func newCollaborativeFilter(store Store, cfg *Config) *collaborativeFilter {
	return &collaborativeFilter{store: store, cfg: cfg}
}

// BookIDs returns collaborative candidate identities for the profile, never
// including books from the user's own borrow history. An empty result is
// normal for users with thin or idiosyncratic borrow histories and disables
// the collaborative strategy for this request only.
func (cf *collaborativeFilter) BookIDs(ctx context.Context, p *Profile) ([]string, error) {
	if len(p.BorrowedBookIDs) == 0 {
		return nil, nil
	}

	neighbors, err := cf.store.FindCoBorrowers(ctx, p.UserID,
		cf.cfg.Limits.MinSharedBooks, cf.cfg.Limits.Neighbors)
	if err != nil {
		return nil, unavailable("find co-borrowers", err)
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	userIDs := make([]string, len(neighbors))
	for i, n := range neighbors {
		userIDs[i] = n.UserID
	}

	borrowed, err := cf.store.GetNeighborBorrows(ctx, userIDs,
		cf.cfg.Limits.MinNeighborBorrows, cf.cfg.Limits.NeighborBooks)
	if err != nil {
		return nil, unavailable("get neighbor borrows", err)
	}

	own := make(map[string]struct{}, len(p.BorrowedBookIDs))
	for _, id := range p.BorrowedBookIDs {
		own[id] = struct{}{}
	}

	ids := make([]string, 0, len(borrowed))
	for _, b := range borrowed {
		if _, seen := own[b.BookID]; seen {
			continue
		}
		ids = append(ids, b.BookID)
		if len(ids) >= cf.cfg.Limits.NeighborBooks {
			break
		}
	}
	return ids, nil
}
