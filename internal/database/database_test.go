// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package database

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/seannywoot/libraai/internal/config"
	"github.com/seannywoot/libraai/internal/recommend"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInteractionRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	rec := recommend.Interaction{
		UserID: "u1",
		Event:  recommend.EventBorrow,
		BookID: "b1",
		Meta: recommend.BookMeta{
			Categories: []string{"Fantasy", "Adventure"},
			Tags:       []string{"dragons"},
			Author:     "Someone",
			Publisher:  "Pub",
			Format:     "ebook",
			Year:       2001,
		},
		Timestamp: now.Add(-time.Hour),
	}
	if err := db.InsertInteraction(ctx, rec); err != nil {
		t.Fatalf("InsertInteraction: %v", err)
	}
	// Outside the query window.
	old := rec
	old.BookID = "ancient"
	old.Timestamp = now.Add(-100 * 24 * time.Hour)
	if err := db.InsertInteraction(ctx, old); err != nil {
		t.Fatalf("InsertInteraction: %v", err)
	}

	got, err := db.GetInteractions(ctx, "u1", now.Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("GetInteractions: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d interactions, want 1", len(got))
	}
	if got[0].Event != recommend.EventBorrow || got[0].BookID != "b1" {
		t.Errorf("record = %+v", got[0])
	}
	if !reflect.DeepEqual(got[0].Meta.Categories, rec.Meta.Categories) {
		t.Errorf("categories = %v, want %v", got[0].Meta.Categories, rec.Meta.Categories)
	}
	if got[0].Meta.Year != 2001 || got[0].Meta.Author != "Someone" {
		t.Errorf("meta = %+v", got[0].Meta)
	}
}

func seedCatalog(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	books := []recommend.Book{
		{ID: "sf1", Title: "Dune", Author: "Frank Herbert", Year: 1965,
			Categories: []string{"Science Fiction"}, Tags: []string{"desert"},
			PopularityScore: 300, Status: "available"},
		{ID: "sf2", Title: "Dune Messiah", Author: "Frank Herbert", Year: 1969,
			Categories: []string{"Science Fiction"}, PopularityScore: 150, Status: "available"},
		{ID: "cook1", Title: "Joy of Cooking", Author: "Irma Rombauer", Year: 1975,
			Categories: []string{"Cooking"}, PopularityScore: 80, Status: "available"},
		{ID: "gone", Title: "Checked Out", Author: "Frank Herbert", Year: 1970,
			Categories: []string{"Science Fiction"}, PopularityScore: 999, Status: "borrowed"},
	}
	for _, b := range books {
		if err := db.UpsertBook(ctx, b); err != nil {
			t.Fatalf("UpsertBook(%s): %v", b.ID, err)
		}
	}
}

func TestFindCandidates(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	got, err := db.FindCandidates(ctx, recommend.CandidateQuery{
		Categories: []string{"Science Fiction"},
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	// Unavailable books never qualify; ordering is popularity then id.
	ids := bookIDs(got)
	if !reflect.DeepEqual(ids, []string{"sf1", "sf2"}) {
		t.Fatalf("ids = %v, want [sf1 sf2]", ids)
	}

	// Strategies are OR'd: author pulls in nothing new, year range pulls in
	// the cookbook.
	got, err = db.FindCandidates(ctx, recommend.CandidateQuery{
		Authors: []string{"Frank Herbert"},
		YearMin: 1970,
		YearMax: 1980,
		Limit:   10,
	})
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	ids = bookIDs(got)
	if !reflect.DeepEqual(ids, []string{"sf1", "sf2", "cook1"}) {
		t.Fatalf("ids = %v, want [sf1 sf2 cook1]", ids)
	}

	// Exclusions trump everything.
	got, err = db.FindCandidates(ctx, recommend.CandidateQuery{
		Categories:     []string{"Science Fiction"},
		ExcludeBookIDs: []string{"sf1"},
		ExcludeTitles:  []string{"Dune Messiah"},
		Limit:          10,
	})
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("ids = %v, want none after exclusions", bookIDs(got))
	}

	// No strategy clauses means no query at all.
	got, err = db.FindCandidates(ctx, recommend.CandidateQuery{Limit: 10})
	if err != nil || got != nil {
		t.Fatalf("empty query = %v, %v; want nil, nil", got, err)
	}
}

func TestCoBorrowAggregations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	loan := func(user, book, status string) recommend.Loan {
		return recommend.Loan{UserID: user, BookID: book,
			Status: recommend.LoanStatus(status), BorrowedAt: now}
	}
	loans := []recommend.Loan{
		loan("me", "a", "returned"),
		loan("me", "b", "borrowed"),
		// n1 shares two books and has one extra.
		loan("n1", "a", "returned"),
		loan("n1", "b", "returned"),
		loan("n1", "extra1", "borrowed"),
		// n2 shares two books and the same extra.
		loan("n2", "a", "borrowed"),
		loan("n2", "b", "borrowed"),
		loan("n2", "extra1", "returned"),
		// weak shares only one book; rejected loans never count.
		loan("weak", "a", "borrowed"),
		loan("weak", "b", "rejected"),
	}
	for _, l := range loans {
		if err := db.InsertLoan(ctx, l); err != nil {
			t.Fatalf("InsertLoan: %v", err)
		}
	}

	neighbors, err := db.FindCoBorrowers(ctx, "me", 2, 10)
	if err != nil {
		t.Fatalf("FindCoBorrowers: %v", err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("neighbors = %+v, want n1 and n2", neighbors)
	}
	for _, n := range neighbors {
		if n.Shared != 2 {
			t.Errorf("%s shared = %d, want 2", n.UserID, n.Shared)
		}
	}

	borrows, err := db.GetNeighborBorrows(ctx, []string{"n1", "n2"}, 2, 10)
	if err != nil {
		t.Fatalf("GetNeighborBorrows: %v", err)
	}
	// a, b and extra1 each have two distinct borrowers; ties order by book id.
	if !reflect.DeepEqual(borrowIDs(borrows), []string{"a", "b", "extra1"}) {
		t.Fatalf("borrows = %+v", borrows)
	}
}

func TestGetPopularBooksOrdering(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	got, err := db.GetPopularBooks(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetPopularBooks: %v", err)
	}
	if !reflect.DeepEqual(bookIDs(got), []string{"sf1", "sf2"}) {
		t.Fatalf("ids = %v, want popularity order [sf1 sf2]", bookIDs(got))
	}
}

func TestGetBookMissing(t *testing.T) {
	db := newTestDB(t)
	b, err := db.GetBook(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if b != nil {
		t.Fatalf("book = %+v, want nil", b)
	}
}

func TestResilientStoreOpensCircuit(t *testing.T) {
	db := newTestDB(t)
	db.Close() // every query now fails
	store := NewResilientStore(db)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := store.GetBook(ctx, "x"); err == nil {
			t.Fatal("closed database should error")
		}
	}
	_, err := store.GetBook(ctx, "x")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want circuit open", err)
	}
}

func bookIDs(books []recommend.Book) []string {
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	return ids
}

func borrowIDs(bb []recommend.BorrowedBook) []string {
	ids := make([]string, len(bb))
	for i, b := range bb {
		ids[i] = b.BookID
	}
	return ids
}
