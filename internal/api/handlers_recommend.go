// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seannywoot/libraai/internal/logging"
	"github.com/seannywoot/libraai/internal/metrics"
	"github.com/seannywoot/libraai/internal/models"
	"github.com/seannywoot/libraai/internal/recommend"
)

// RecommendHandler handles recommendation API endpoints.
type RecommendHandler struct {
	engine *recommend.Engine
}

// NewRecommendHandler creates a recommendation handler on top of an engine.
func NewRecommendHandler(engine *recommend.Engine) *RecommendHandler {
	return &RecommendHandler{engine: engine}
}

// GetUserRecommendations handles GET /api/v1/recommendations/user/{userID}.
//
// Query parameters:
//   - limit: maximum results (default and cap come from engine config)
//   - context: opaque caller tag carried through logs and metrics
//   - exclude: comma-separated book IDs to never return
func (h *RecommendHandler) GetUserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_USER_ID", "User ID is required", nil)
		return
	}

	req := recommend.Request{
		UserID:         userID,
		Limit:          getIntParam(r, "limit", 0),
		Context:        r.URL.Query().Get("context"),
		ExcludeBookIDs: getListParam(r, "exclude"),
		RequestID:      logging.RequestIDFromContext(r.Context()),
	}
	h.serve(w, r, req)
}

// GetSimilar handles GET /api/v1/recommendations/similar/{bookID}.
func (h *RecommendHandler) GetSimilar(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	if bookID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_BOOK_ID", "Book ID is required", nil)
		return
	}

	req := recommend.Request{
		BookID:         bookID,
		Limit:          getIntParam(r, "limit", 0),
		Context:        r.URL.Query().Get("context"),
		ExcludeBookIDs: getListParam(r, "exclude"),
		RequestID:      logging.RequestIDFromContext(r.Context()),
	}
	h.serve(w, r, req)
}

func (h *RecommendHandler) serve(w http.ResponseWriter, r *http.Request, req recommend.Request) {
	start := time.Now()
	resp, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		metrics.RecordRecommendation("unknown", time.Since(start), 0, err)
		if errors.Is(err, recommend.ErrUnavailable) {
			respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
				"Recommendation source unavailable", err)
		} else {
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to generate recommendations", err)
		}
		return
	}
	metrics.RecordRecommendation(resp.Metadata.Mode, time.Since(start),
		resp.Metadata.TotalCandidates, nil)
	if resp.Metadata.Fallback {
		metrics.RecommendFallbacksTotal.Inc()
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: resp.Metadata.LatencyMS,
			RequestID:   resp.Metadata.RequestID,
		},
	})
}

// GetStatus handles GET /api/v1/recommendations/status.
func (h *RecommendHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     h.engine.Status(),
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
