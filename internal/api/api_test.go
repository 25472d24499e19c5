// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/seannywoot/libraai/internal/config"
	"github.com/seannywoot/libraai/internal/models"
	"github.com/seannywoot/libraai/internal/recommend"
)

// fakeStore is a minimal recommend.Store for handler tests.
type fakeStore struct {
	popular []recommend.Book
	books   map[string]recommend.Book
	err     error

	inserted []recommend.Interaction
}

func (f *fakeStore) GetInteractions(context.Context, string, time.Time) ([]recommend.Interaction, error) {
	return nil, f.err
}

func (f *fakeStore) GetLoans(context.Context, string, []recommend.LoanStatus, time.Time) ([]recommend.Loan, error) {
	return nil, f.err
}

func (f *fakeStore) GetBookmarks(context.Context, string) ([]recommend.Bookmark, error) {
	return nil, f.err
}

func (f *fakeStore) GetNotes(context.Context, string) ([]recommend.Note, error) {
	return nil, f.err
}

func (f *fakeStore) GetLibraryEntries(context.Context, string) ([]recommend.LibraryEntry, error) {
	return nil, f.err
}

func (f *fakeStore) FindCandidates(context.Context, recommend.CandidateQuery) ([]recommend.Book, error) {
	return nil, f.err
}

func (f *fakeStore) FindCoBorrowers(context.Context, string, int, int) ([]recommend.Neighbor, error) {
	return nil, f.err
}

func (f *fakeStore) GetNeighborBorrows(context.Context, []string, int, int) ([]recommend.BorrowedBook, error) {
	return nil, f.err
}

func (f *fakeStore) GetBook(_ context.Context, id string) (*recommend.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.books[id]; ok {
		return &b, nil
	}
	return nil, nil
}

func (f *fakeStore) GetPopularBooks(_ context.Context, limit int) ([]recommend.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.popular) > limit {
		return f.popular[:limit], nil
	}
	return f.popular, nil
}

func (f *fakeStore) InsertInteraction(_ context.Context, rec recommend.Interaction) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, rec)
	return nil
}

func newTestServer(t *testing.T, store *fakeStore) http.Handler {
	t.Helper()
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), store, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	apiCfg := &config.APIConfig{
		RateLimitReqs:   1000,
		RateLimitWindow: time.Minute,
		CORSOrigins:     []string{"*"},
	}
	return NewRouter(apiCfg, NewRecommendHandler(engine), NewInteractionsHandler(store))
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, models.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var envelope models.APIResponse
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("unmarshal response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, envelope
}

func TestGetUserRecommendations(t *testing.T) {
	store := &fakeStore{popular: []recommend.Book{
		{ID: "pop1", Title: "Popular", PopularityScore: 100, Status: recommend.BookAvailable},
	}}
	h := newTestServer(t, store)

	rr, envelope := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/user/alice@school.edu", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if envelope.Status != "success" {
		t.Errorf("envelope status = %q", envelope.Status)
	}
	if envelope.Metadata.RequestID == "" {
		t.Error("metadata request ID missing")
	}

	data, _ := json.Marshal(envelope.Data)
	var resp recommend.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode response data: %v", err)
	}
	if resp.Metadata.Mode != recommend.ModeFallback {
		t.Errorf("mode = %q, want fallback for a user with no history", resp.Metadata.Mode)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].Book.ID != "pop1" {
		t.Errorf("recommendations = %+v", resp.Recommendations)
	}
}

func TestGetSimilarUnknownBookFallsBack(t *testing.T) {
	store := &fakeStore{popular: []recommend.Book{
		{ID: "pop1", Title: "Popular", PopularityScore: 100, Status: recommend.BookAvailable},
	}}
	h := newTestServer(t, store)

	rr, envelope := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/similar/ghost", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	data, _ := json.Marshal(envelope.Data)
	var resp recommend.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode response data: %v", err)
	}
	if resp.Metadata.Mode != recommend.ModeFallback {
		t.Errorf("mode = %q, want fallback for an unknown source book", resp.Metadata.Mode)
	}
}

func TestStoreFailureMapsTo503(t *testing.T) {
	h := newTestServer(t, &fakeStore{err: errors.New("db down")})

	rr, envelope := doRequest(t, h, http.MethodGet, "/api/v1/recommendations/user/u1", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Errorf("error = %+v", envelope.Error)
	}
}

func TestCreateInteraction(t *testing.T) {
	store := &fakeStore{}
	h := newTestServer(t, store)

	body := `{"user_id":"u1","event":"borrow","book_id":"b1",
		"meta":{"categories":["Fantasy"],"author":"X","year":2001}}`
	rr, envelope := doRequest(t, h, http.MethodPost, "/api/v1/interactions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if envelope.Status != "success" {
		t.Errorf("envelope = %+v", envelope)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1", len(store.inserted))
	}
	rec := store.inserted[0]
	if rec.Event != recommend.EventBorrow || rec.Meta.Author != "X" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Timestamp.IsZero() {
		t.Error("timestamp should be assigned server-side")
	}
}

func TestCreateInteractionValidation(t *testing.T) {
	h := newTestServer(t, &fakeStore{})

	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing user", `{"event":"view","book_id":"b1"}`},
		{"unknown event", `{"user_id":"u1","event":"teleport","book_id":"b1"}`},
		{"missing book for view", `{"user_id":"u1","event":"view"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr, envelope := doRequest(t, h, http.MethodPost, "/api/v1/interactions", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if envelope.Error == nil || envelope.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("error = %+v", envelope.Error)
			}
		})
	}

	// Searches carry no book ID.
	rr, _ := doRequest(t, h, http.MethodPost, "/api/v1/interactions",
		`{"user_id":"u1","event":"search","query":"dragons"}`)
	if rr.Code != http.StatusCreated {
		t.Errorf("search without book_id: status = %d, want 201", rr.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeStore{})

	rr, envelope := doRequest(t, h, http.MethodGet, "/api/v1/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if envelope.Status != "success" {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	h := newTestServer(t, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/status", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "trace-42" {
		t.Errorf("X-Request-ID = %q, want inbound header echoed", got)
	}

	// Without an inbound header one is generated.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/status", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("request ID should be generated when absent")
	}
}
