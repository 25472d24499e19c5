// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Modes reported in response metadata.
const (
	ModePersonalized = "personalized"
	ModeSimilar      = "similar"
	ModeFallback     = "fallback"
)

// Engine orchestrates the recommendation pipeline. It is stateless between
// requests apart from monotonic counters and safe for concurrent use.
type Engine struct {
	cfg    *Config
	store  Store
	logger zerolog.Logger

	profiles  *profileBuilder
	generator *candidateGenerator
	scorer    *scorer
	similar   *similarScorer
	diversity *diversityFilter
	fallback  *fallbackProvider

	requestCount  atomic.Int64
	fallbackCount atomic.Int64
	errorCount    atomic.Int64
}

// NewEngine builds an engine from a validated config and a store.
func NewEngine(cfg *Config, store Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommendation config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("recommendation store is required")
	}

	cf := newCollaborativeFilter(store, cfg)
	return &Engine{
		cfg:       cfg,
		store:     store,
		logger:    logger.With().Str("component", "recommend").Logger(),
		profiles:  newProfileBuilder(store, cfg),
		generator: newCandidateGenerator(store, cf, cfg),
		scorer:    newScorer(&cfg.Scoring),
		similar:   newSimilarScorer(store, cfg),
		diversity: newDiversityFilter(&cfg.Diversity),
		fallback:  newFallbackProvider(store, &cfg.Fallback),
	}, nil
}

// Status is a snapshot of engine counters for the status endpoint.
type Status struct {
	Requests  int64 `json:"requests"`
	Fallbacks int64 `json:"fallbacks"`
	Errors    int64 `json:"errors"`
}

// Status returns current engine counters.
func (e *Engine) Status() Status {
	return Status{
		Requests:  e.requestCount.Load(),
		Fallbacks: e.fallbackCount.Load(),
		Errors:    e.errorCount.Load(),
	}
}

// Recommend serves one recommendation request. With BookID set it runs in
// similar-items mode; otherwise it builds a profile and runs the personalized
// pipeline, falling back to popular books for users with no usable history.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req = e.prepare(req)

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Limits.StoreTimeout)
	defer cancel()

	log := e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Logger()

	var (
		resp *Response
		err  error
	)
	if req.BookID != "" {
		resp, err = e.recommendSimilar(ctx, req)
	} else {
		resp, err = e.recommendPersonalized(ctx, req, log)
	}
	if err != nil {
		e.errorCount.Add(1)
		log.Error().Err(err).Msg("recommendation request failed")
		return nil, err
	}

	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.Context = req.Context
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	resp.Metadata.Timestamp = time.Now().UTC()

	log.Debug().
		Str("mode", resp.Metadata.Mode).
		Int("results", len(resp.Recommendations)).
		Int("candidates", resp.Metadata.TotalCandidates).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation request served")
	return resp, nil
}

// prepare applies limit defaults and assigns a request ID when missing.
func (e *Engine) prepare(req Request) Request {
	if req.Limit <= 0 {
		req.Limit = e.cfg.Limits.DefaultLimit
	}
	if req.Limit > e.cfg.Limits.MaxLimit {
		req.Limit = e.cfg.Limits.MaxLimit
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return req
}

func (e *Engine) recommendPersonalized(ctx context.Context, req Request, log zerolog.Logger) (*Response, error) {
	profile, err := e.profiles.Build(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if profile.IsEmpty() {
		log.Debug().Msg("no behavioral history, serving fallback")
		return e.serveFallback(ctx, req, profile)
	}

	candidates, err := e.generator.Generate(ctx, profile, req.ExcludeBookIDs)
	if err != nil {
		return nil, err
	}

	ranked := e.scorer.rank(profile, candidates)
	final := e.diversity.Apply(ranked, profile.DiversityScore, req.Limit)

	if len(final) == 0 {
		log.Debug().Int("candidates", len(candidates)).Msg("empty personalized list, serving fallback")
		return e.serveFallback(ctx, req, profile)
	}

	return &Response{
		Recommendations: final,
		Profile:         summarize(profile),
		Metadata: ResponseMetadata{
			Mode:            ModePersonalized,
			TotalCandidates: len(candidates),
		},
	}, nil
}

func (e *Engine) recommendSimilar(ctx context.Context, req Request) (*Response, error) {
	scored, source, err := e.similar.Similar(ctx, req.BookID,
		req.ExcludeBookIDs, req.Limit, e.cfg.Limits.MaxCandidates)
	if err != nil {
		return nil, err
	}
	if source == nil || len(scored) == 0 {
		return e.serveFallback(ctx, req, nil)
	}

	return &Response{
		Recommendations: scored,
		Profile:         ProfileSummary{BasedOn: source.Title},
		Metadata: ResponseMetadata{
			Mode:            ModeSimilar,
			TotalCandidates: len(scored),
		},
	}, nil
}

func (e *Engine) serveFallback(ctx context.Context, req Request, profile *Profile) (*Response, error) {
	e.fallbackCount.Add(1)

	popular, err := e.fallback.Popular(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	summary := ProfileSummary{}
	if profile != nil {
		summary = summarize(profile)
	}
	return &Response{
		Recommendations: popular,
		Profile:         summary,
		Metadata: ResponseMetadata{
			Mode:            ModeFallback,
			TotalCandidates: len(popular),
			Fallback:        true,
		},
	}, nil
}

// summarize builds the caller-facing profile digest.
func summarize(p *Profile) ProfileSummary {
	top := func(vals []string, n int) []string {
		if len(vals) > n {
			return vals[:n]
		}
		return vals
	}
	return ProfileSummary{
		TotalInteractions: p.TotalInteractions,
		TopCategories:     top(p.TopCategories, 3),
		TopAuthors:        top(p.TopAuthors, 3),
		DiversityScore:    int(math.Round(p.DiversityScore * 100)),
		EngagementLevel:   p.Engagement.String(),
	}
}
