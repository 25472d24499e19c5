// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package database

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/seannywoot/libraai/internal/logging"
	"github.com/seannywoot/libraai/internal/metrics"
	"github.com/seannywoot/libraai/internal/recommend"
)

// ResilientStore wraps the database store with a circuit breaker so a sick
// database sheds load fast instead of piling up slow queries. The breaker uses
// real time for its recovery windows; tests exercise the wrapped store
// directly.
type ResilientStore struct {
	store recommend.Store
	cb    *gobreaker.CircuitBreaker[interface{}]
}

// NewResilientStore wraps store with a circuit breaker. The circuit opens
// after a 60% failure rate over at least 10 requests, and probes recovery
// after 30 seconds.
func NewResilientStore(store recommend.Store) *ResilientStore {
	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "duckdb",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.SetCircuitBreakerOpen(to == gobreaker.StateOpen)
		},
	})
	return &ResilientStore{store: store, cb: cb}
}

// execute runs fn through the breaker and restores its result type.
func execute[T any](cb *gobreaker.CircuitBreaker[interface{}], fn func() (T, error)) (T, error) {
	v, err := cb.Execute(func() (interface{}, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	result, _ := v.(T)
	return result, nil
}

func (s *ResilientStore) GetInteractions(ctx context.Context, userID string, since time.Time) ([]recommend.Interaction, error) {
	return execute(s.cb, func() ([]recommend.Interaction, error) {
		return s.store.GetInteractions(ctx, userID, since)
	})
}

func (s *ResilientStore) GetLoans(ctx context.Context, userID string, statuses []recommend.LoanStatus, since time.Time) ([]recommend.Loan, error) {
	return execute(s.cb, func() ([]recommend.Loan, error) {
		return s.store.GetLoans(ctx, userID, statuses, since)
	})
}

func (s *ResilientStore) GetBookmarks(ctx context.Context, userID string) ([]recommend.Bookmark, error) {
	return execute(s.cb, func() ([]recommend.Bookmark, error) {
		return s.store.GetBookmarks(ctx, userID)
	})
}

func (s *ResilientStore) GetNotes(ctx context.Context, userID string) ([]recommend.Note, error) {
	return execute(s.cb, func() ([]recommend.Note, error) {
		return s.store.GetNotes(ctx, userID)
	})
}

func (s *ResilientStore) GetLibraryEntries(ctx context.Context, userID string) ([]recommend.LibraryEntry, error) {
	return execute(s.cb, func() ([]recommend.LibraryEntry, error) {
		return s.store.GetLibraryEntries(ctx, userID)
	})
}

func (s *ResilientStore) FindCandidates(ctx context.Context, q recommend.CandidateQuery) ([]recommend.Book, error) {
	return execute(s.cb, func() ([]recommend.Book, error) {
		return s.store.FindCandidates(ctx, q)
	})
}

func (s *ResilientStore) FindCoBorrowers(ctx context.Context, userID string, minShared, limit int) ([]recommend.Neighbor, error) {
	return execute(s.cb, func() ([]recommend.Neighbor, error) {
		return s.store.FindCoBorrowers(ctx, userID, minShared, limit)
	})
}

func (s *ResilientStore) GetNeighborBorrows(ctx context.Context, userIDs []string, minBorrowers, limit int) ([]recommend.BorrowedBook, error) {
	return execute(s.cb, func() ([]recommend.BorrowedBook, error) {
		return s.store.GetNeighborBorrows(ctx, userIDs, minBorrowers, limit)
	})
}

func (s *ResilientStore) GetBook(ctx context.Context, bookID string) (*recommend.Book, error) {
	return execute(s.cb, func() (*recommend.Book, error) {
		return s.store.GetBook(ctx, bookID)
	})
}

func (s *ResilientStore) GetPopularBooks(ctx context.Context, limit int) ([]recommend.Book, error) {
	return execute(s.cb, func() ([]recommend.Book, error) {
		return s.store.GetPopularBooks(ctx, limit)
	})
}
