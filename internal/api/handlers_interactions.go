// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/seannywoot/libraai/internal/logging"
	"github.com/seannywoot/libraai/internal/models"
	"github.com/seannywoot/libraai/internal/recommend"
)

// interactionWriter is the write contract the ingest endpoint needs.
type interactionWriter interface {
	InsertInteraction(ctx context.Context, rec recommend.Interaction) error
}

// InteractionsHandler ingests behavioral interaction records.
type InteractionsHandler struct {
	store interactionWriter
}

// NewInteractionsHandler creates an interactions handler.
func NewInteractionsHandler(store interactionWriter) *InteractionsHandler {
	return &InteractionsHandler{store: store}
}

// interactionRequest is the ingest payload. Metadata is snapshotted at write
// time so profile building later needs no catalog joins.
type interactionRequest struct {
	UserID string             `json:"user_id"`
	Event  string             `json:"event"`
	BookID string             `json:"book_id,omitempty"`
	Meta   recommend.BookMeta `json:"meta"`
	Query  string             `json:"query,omitempty"`
}

var validEvents = map[string]struct{}{
	"view": {}, "borrow": {}, "complete": {},
	"bookmark_add": {}, "note_create": {}, "search": {},
}

// Create handles POST /api/v1/interactions.
func (h *InteractionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON payload", err)
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user_id is required", nil)
		return
	}
	if _, ok := validEvents[req.Event]; !ok {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown event type", nil)
		return
	}
	if req.Event != "search" && req.BookID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"book_id is required for non-search events", nil)
		return
	}

	rec := recommend.Interaction{
		UserID:    req.UserID,
		Event:     recommend.ParseEventType(req.Event),
		BookID:    req.BookID,
		Meta:      req.Meta,
		Query:     req.Query,
		Timestamp: time.Now().UTC(),
	}
	if err := h.store.InsertInteraction(r.Context(), rec); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Failed to record interaction", err)
		return
	}
	log := logging.Ctx(r.Context())
	log.Debug().
		Str("user_id", sanitizeLogValue(req.UserID)).
		Str("event", req.Event).
		Msg("interaction recorded")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"result": "recorded"},
		Metadata: models.Metadata{Timestamp: rec.Timestamp},
	})
}
