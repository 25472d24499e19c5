// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/seannywoot/libraai/internal/metrics"
	"github.com/seannywoot/libraai/internal/recommend"
)

// InsertInteraction appends one behavioral record. Records are immutable; the
// ingest path never updates them.
func (db *DB) InsertInteraction(ctx context.Context, rec recommend.Interaction) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO interactions
			(user_id, event, book_id, categories, tags, author, publisher, format, year, query, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.UserID, rec.Event.String(), rec.BookID,
		joinList(rec.Meta.Categories), joinList(rec.Meta.Tags),
		rec.Meta.Author, rec.Meta.Publisher, rec.Meta.Format, rec.Meta.Year,
		rec.Query, rec.Timestamp)
	metrics.RecordDBQuery("insert_interaction", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	metrics.InteractionsIngested.WithLabelValues(rec.Event.String()).Inc()
	return nil
}

// UpsertBook inserts or replaces a catalog record.
func (db *DB) UpsertBook(ctx context.Context, b recommend.Book) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR REPLACE INTO books
			(id, isbn, title, author, publisher, format, year, categories, tags, popularity_score, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID, b.ISBN, b.Title, b.Author, b.Publisher, b.Format, b.Year,
		joinList(b.Categories), joinList(b.Tags), b.PopularityScore, b.Status)
	metrics.RecordDBQuery("upsert_book", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("upsert book %s: %w", b.ID, err)
	}
	return nil
}

// InsertLoan appends one loan transaction snapshot.
func (db *DB) InsertLoan(ctx context.Context, l recommend.Loan) error {
	start := time.Now()
	var returnedAt interface{}
	if !l.ReturnedAt.IsZero() {
		returnedAt = l.ReturnedAt
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO loans
			(user_id, book_id, status, categories, tags, author, publisher, format, year, borrowed_at, returned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		l.UserID, l.BookID, string(l.Status),
		joinList(l.Meta.Categories), joinList(l.Meta.Tags),
		l.Meta.Author, l.Meta.Publisher, l.Meta.Format, l.Meta.Year,
		l.BorrowedAt, returnedAt)
	metrics.RecordDBQuery("insert_loan", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

// InsertBookmark records a bookmark.
func (db *DB) InsertBookmark(ctx context.Context, bm recommend.Bookmark) error {
	if bm.CreatedAt.IsZero() {
		bm.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO bookmarks (user_id, book_id, created_at) VALUES (?, ?, ?)`,
		bm.UserID, bm.BookID, bm.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// InsertNote records a note's existence.
func (db *DB) InsertNote(ctx context.Context, n recommend.Note) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO notes (user_id, book_id, created_at) VALUES (?, ?, ?)`,
		n.UserID, n.BookID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// InsertLibraryEntry records a personal-library entry.
func (db *DB) InsertLibraryEntry(ctx context.Context, e recommend.LibraryEntry) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_library (user_id, isbn, title) VALUES (?, ?, ?)`,
		e.UserID, e.ISBN, e.Title)
	if err != nil {
		return fmt.Errorf("insert library entry: %w", err)
	}
	return nil
}
