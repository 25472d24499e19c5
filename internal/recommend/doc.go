// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

// Package recommend implements the personalized book recommendation engine.
//
// # Architecture
//
// The engine is a stateless read-and-compute pipeline over behavioral data:
//
//   - Profile Builder: aggregates 90 days of interactions, loans, bookmarks and
//     notes into a weighted preference profile (top categories/tags/authors/
//     publishers/formats, preferred year, diversity score, engagement level)
//   - Candidate Generator: five OR'd strategies (content match, collaborative,
//     publisher affinity, format affinity, year proximity) minus exclusions
//   - Collaborative Filter: co-borrow neighbor heuristic (users sharing >= 2
//     borrowed books), not matrix factorization
//   - Scorer: additive 0-100 heuristic with human-readable match reasons
//   - Diversity Filter: per-author and per-category caps scaled by the user's
//     diversity score
//   - Fallback Provider: popularity-ranked books for cold-start and empty results
//   - Similar-Items path: scores against one source book instead of a profile
//
// # Design Principles
//
//   - Deterministic: identical store snapshots produce identical ordered results
//   - Stateless: the profile is rebuilt on every request; no cross-request cache
//   - Explainable: every recommendation carries up to 3 match-reason strings
//   - Isolated: this package depends on no other internal package; the Store
//     interface lets the database layer plug in without circular imports
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, store, logger)
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID: "reader@example.com",
//	    Limit:  10,
//	})
//
// # Error Handling
//
// Store failures surface as errors wrapping ErrUnavailable so callers can
// distinguish "the engine cannot answer right now" from the legitimate
// empty-result case, which is served by the fallback provider instead.
//
// # Thread Safety
//
// The engine holds no mutable per-request state beyond atomic counters and is
// safe for concurrent use.
package recommend
