// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seannywoot/libraai/internal/metrics"
	"github.com/seannywoot/libraai/internal/recommend"
)

// borrowSignalStatuses are the loan states that count as borrow signal for the
// collaborative aggregations.
var borrowSignalStatuses = []string{"borrowed", "return-requested", "returned"}

// GetInteractions returns a user's interaction records since the given time,
// newest first.
func (db *DB) GetInteractions(ctx context.Context, userID string, since time.Time) ([]recommend.Interaction, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT event, COALESCE(book_id, ''),
		       COALESCE(categories, ''), COALESCE(tags, ''),
		       COALESCE(author, ''), COALESCE(publisher, ''), COALESCE(format, ''),
		       COALESCE(year, 0), COALESCE(query, ''), created_at
		FROM interactions
		WHERE user_id = ? AND created_at > ?
		ORDER BY created_at DESC
	`, userID, since)
	metrics.RecordDBQuery("get_interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var out []recommend.Interaction
	for rows.Next() {
		var (
			event, bookID, categories, tags   string
			author, publisher, format, query  string
			year                              int
			createdAt                         time.Time
		)
		if err := rows.Scan(&event, &bookID, &categories, &tags,
			&author, &publisher, &format, &year, &query, &createdAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, recommend.Interaction{
			UserID: userID,
			Event:  recommend.ParseEventType(event),
			BookID: bookID,
			Meta: recommend.BookMeta{
				Categories: splitList(categories),
				Tags:       splitList(tags),
				Author:     author,
				Publisher:  publisher,
				Format:     format,
				Year:       year,
			},
			Query:     query,
			Timestamp: createdAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}

// GetLoans returns a user's loans in the given status set. A zero since time
// disables the date filter.
func (db *DB) GetLoans(ctx context.Context, userID string, statuses []recommend.LoanStatus, since time.Time) ([]recommend.Loan, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	args := []interface{}{userID}
	var sb strings.Builder
	sb.WriteString(`
		SELECT book_id, status,
		       COALESCE(categories, ''), COALESCE(tags, ''),
		       COALESCE(author, ''), COALESCE(publisher, ''), COALESCE(format, ''),
		       COALESCE(year, 0), borrowed_at, COALESCE(returned_at, TIMESTAMP '1970-01-01')
		FROM loans
		WHERE user_id = ? AND status IN (`)
	sb.WriteString(placeholders(len(statuses)))
	sb.WriteString(")")
	for _, st := range statuses {
		args = append(args, string(st))
	}
	if !since.IsZero() {
		sb.WriteString(" AND borrowed_at > ?")
		args = append(args, since)
	}
	sb.WriteString(" ORDER BY borrowed_at DESC")

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	metrics.RecordDBQuery("get_loans", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var out []recommend.Loan
	for rows.Next() {
		var (
			bookID, status, categories, tags string
			author, publisher, format       string
			year                            int
			borrowedAt, returnedAt          time.Time
		)
		if err := rows.Scan(&bookID, &status, &categories, &tags,
			&author, &publisher, &format, &year, &borrowedAt, &returnedAt); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		out = append(out, recommend.Loan{
			UserID: userID,
			BookID: bookID,
			Status: recommend.LoanStatus(status),
			Meta: recommend.BookMeta{
				Categories: splitList(categories),
				Tags:       splitList(tags),
				Author:     author,
				Publisher:  publisher,
				Format:     format,
				Year:       year,
			},
			BorrowedAt: borrowedAt,
			ReturnedAt: returnedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}
	return out, nil
}

// GetBookmarks returns all of a user's bookmarks.
func (db *DB) GetBookmarks(ctx context.Context, userID string) ([]recommend.Bookmark, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT book_id, created_at FROM bookmarks WHERE user_id = ?`, userID)
	metrics.RecordDBQuery("get_bookmarks", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	var out []recommend.Bookmark
	for rows.Next() {
		var bm recommend.Bookmark
		bm.UserID = userID
		if err := rows.Scan(&bm.BookID, &bm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		out = append(out, bm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}
	return out, nil
}

// GetNotes returns all of a user's notes.
func (db *DB) GetNotes(ctx context.Context, userID string) ([]recommend.Note, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT book_id, created_at FROM notes WHERE user_id = ?`, userID)
	metrics.RecordDBQuery("get_notes", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var out []recommend.Note
	for rows.Next() {
		var n recommend.Note
		n.UserID = userID
		if err := rows.Scan(&n.BookID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return out, nil
}

// GetLibraryEntries returns the user's personal library.
func (db *DB) GetLibraryEntries(ctx context.Context, userID string) ([]recommend.LibraryEntry, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT COALESCE(isbn, ''), title FROM user_library WHERE user_id = ?`, userID)
	metrics.RecordDBQuery("get_library_entries", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query library entries: %w", err)
	}
	defer rows.Close()

	var out []recommend.LibraryEntry
	for rows.Next() {
		var e recommend.LibraryEntry
		e.UserID = userID
		if err := rows.Scan(&e.ISBN, &e.Title); err != nil {
			return nil, fmt.Errorf("scan library entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate library entries: %w", err)
	}
	return out, nil
}

const bookColumns = `id, COALESCE(isbn, ''), title, COALESCE(author, ''),
	COALESCE(publisher, ''), COALESCE(format, ''), COALESCE(year, 0),
	COALESCE(categories, ''), COALESCE(tags, ''),
	COALESCE(popularity_score, 0), COALESCE(status, '')`

// FindCandidates returns available books matching the compound OR query, minus
// the exclusion sets, ordered by popularity then id for stable output.
func (db *DB) FindCandidates(ctx context.Context, q recommend.CandidateQuery) ([]recommend.Book, error) {
	var (
		clauses []string
		args    []interface{}
	)
	addListClause := func(column string, vals []string) {
		if len(vals) == 0 {
			return
		}
		clauses = append(clauses, fmt.Sprintf(
			"list_has_any(string_split(COALESCE(%s, ''), ','), [%s])",
			column, placeholders(len(vals))))
		for _, v := range vals {
			args = append(args, v)
		}
	}
	addInClause := func(column string, vals []string) {
		if len(vals) == 0 {
			return
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", column, placeholders(len(vals))))
		for _, v := range vals {
			args = append(args, v)
		}
	}

	addListClause("categories", q.Categories)
	addListClause("tags", q.Tags)
	addInClause("author", q.Authors)
	addInClause("publisher", q.Publishers)
	addInClause("format", q.Formats)
	if q.YearMin != 0 || q.YearMax != 0 {
		clauses = append(clauses, "(year BETWEEN ? AND ?)")
		args = append(args, q.YearMin, q.YearMax)
	}
	addInClause("id", q.BookIDs)

	if len(clauses) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + bookColumns + " FROM books WHERE status = 'available' AND (")
	sb.WriteString(strings.Join(clauses, " OR "))
	sb.WriteString(")")

	if len(q.ExcludeBookIDs) > 0 {
		sb.WriteString(" AND id NOT IN (" + placeholders(len(q.ExcludeBookIDs)) + ")")
		for _, v := range q.ExcludeBookIDs {
			args = append(args, v)
		}
	}
	if len(q.ExcludeISBNs) > 0 {
		sb.WriteString(" AND COALESCE(isbn, '') NOT IN (" + placeholders(len(q.ExcludeISBNs)) + ")")
		for _, v := range q.ExcludeISBNs {
			args = append(args, v)
		}
	}
	if len(q.ExcludeTitles) > 0 {
		sb.WriteString(" AND title NOT IN (" + placeholders(len(q.ExcludeTitles)) + ")")
		for _, v := range q.ExcludeTitles {
			args = append(args, v)
		}
	}

	sb.WriteString(" ORDER BY popularity_score DESC, id")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, sb.String(), args...)
	metrics.RecordDBQuery("find_candidates", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

// FindCoBorrowers returns users sharing at least minShared borrowed books with
// userID, ranked by overlap descending with user id as tiebreak.
func (db *DB) FindCoBorrowers(ctx context.Context, userID string, minShared, limit int) ([]recommend.Neighbor, error) {
	statusIn := placeholders(len(borrowSignalStatuses))
	query := fmt.Sprintf(`
		SELECT other.user_id, COUNT(DISTINCT other.book_id) AS shared
		FROM loans own
		JOIN loans other ON other.book_id = own.book_id AND other.user_id <> own.user_id
		WHERE own.user_id = ?
		  AND own.status IN (%s)
		  AND other.status IN (%s)
		GROUP BY other.user_id
		HAVING COUNT(DISTINCT other.book_id) >= ?
		ORDER BY shared DESC, other.user_id
		LIMIT ?
	`, statusIn, statusIn)

	args := []interface{}{userID}
	for i := 0; i < 2; i++ {
		for _, st := range borrowSignalStatuses {
			args = append(args, st)
		}
	}
	args = append(args, minShared, limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("find_co_borrowers", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query co-borrowers: %w", err)
	}
	defer rows.Close()

	var out []recommend.Neighbor
	for rows.Next() {
		var n recommend.Neighbor
		if err := rows.Scan(&n.UserID, &n.Shared); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighbors: %w", err)
	}
	return out, nil
}

// GetNeighborBorrows returns books borrowed by at least minBorrowers distinct
// users from the set, ranked by borrower count descending with book id as
// tiebreak.
func (db *DB) GetNeighborBorrows(ctx context.Context, userIDs []string, minBorrowers, limit int) ([]recommend.BorrowedBook, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT book_id, COUNT(DISTINCT user_id) AS borrowers
		FROM loans
		WHERE user_id IN (%s) AND status IN (%s)
		GROUP BY book_id
		HAVING COUNT(DISTINCT user_id) >= ?
		ORDER BY borrowers DESC, book_id
		LIMIT ?
	`, placeholders(len(userIDs)), placeholders(len(borrowSignalStatuses)))

	var args []interface{}
	for _, id := range userIDs {
		args = append(args, id)
	}
	for _, st := range borrowSignalStatuses {
		args = append(args, st)
	}
	args = append(args, minBorrowers, limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("get_neighbor_borrows", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query neighbor borrows: %w", err)
	}
	defer rows.Close()

	var out []recommend.BorrowedBook
	for rows.Next() {
		var b recommend.BorrowedBook
		if err := rows.Scan(&b.BookID, &b.Borrowers); err != nil {
			return nil, fmt.Errorf("scan neighbor borrow: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighbor borrows: %w", err)
	}
	return out, nil
}

// GetBook fetches a single book, or nil when it does not exist.
func (db *DB) GetBook(ctx context.Context, bookID string) (*recommend.Book, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id = ?", bookID)
	metrics.RecordDBQuery("get_book", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}
	defer rows.Close()

	books, err := collectBooks(rows)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, nil
	}
	return &books[0], nil
}

// GetPopularBooks returns available books by popularity descending, year
// descending on ties.
func (db *DB) GetPopularBooks(ctx context.Context, limit int) ([]recommend.Book, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+bookColumns+` FROM books
		 WHERE status = 'available'
		 ORDER BY popularity_score DESC, year DESC, id
		 LIMIT ?`, limit)
	metrics.RecordDBQuery("get_popular_books", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("query popular books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

// collectBooks scans a bookColumns result set.
func collectBooks(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]recommend.Book, error) {
	var out []recommend.Book
	for rows.Next() {
		var (
			b                recommend.Book
			categories, tags string
		)
		if err := rows.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Publisher,
			&b.Format, &b.Year, &categories, &tags, &b.PopularityScore, &b.Status); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.Categories = splitList(categories)
		b.Tags = splitList(tags)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return out, nil
}
