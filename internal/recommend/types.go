// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

package recommend

import (
	"context"
	"time"
)

// EventType classifies behavioral interaction records.
type EventType int

const (
	// EventView indicates the user opened a book's detail page.
	EventView EventType = iota
	// EventBorrow indicates the user requested to borrow a book.
	EventBorrow
	// EventComplete indicates the user finished reading a borrowed book.
	EventComplete
	// EventBookmarkAdd indicates the user pinned a book.
	EventBookmarkAdd
	// EventNoteCreate indicates the user annotated a book.
	EventNoteCreate
	// EventSearch indicates a free-text catalog search (no target book).
	EventSearch
)

// String returns the wire name for the event type.
func (t EventType) String() string {
	switch t {
	case EventView:
		return "view"
	case EventBorrow:
		return "borrow"
	case EventComplete:
		return "complete"
	case EventBookmarkAdd:
		return "bookmark_add"
	case EventNoteCreate:
		return "note_create"
	case EventSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Weight returns the base preference weight for this event type.
// Completing a book is the strongest signal; searches the weakest.
func (t EventType) Weight() float64 {
	switch t {
	case EventComplete:
		return 10
	case EventBorrow:
		return 8
	case EventNoteCreate:
		return 6
	case EventBookmarkAdd:
		return 5
	case EventView:
		return 1
	case EventSearch:
		return 0.5
	default:
		return 0
	}
}

// ParseEventType maps a wire name back to its EventType.
// Unknown names map to EventView, the weakest targeted signal.
func ParseEventType(s string) EventType {
	switch s {
	case "view":
		return EventView
	case "borrow":
		return EventBorrow
	case "complete":
		return EventComplete
	case "bookmark_add":
		return EventBookmarkAdd
	case "note_create":
		return EventNoteCreate
	case "search":
		return EventSearch
	default:
		return EventView
	}
}

// LoanStatus is the lifecycle state of a loan transaction.
type LoanStatus string

const (
	LoanPendingApproval LoanStatus = "pending-approval"
	LoanBorrowed        LoanStatus = "borrowed"
	LoanReturnRequested LoanStatus = "return-requested"
	LoanReturned        LoanStatus = "returned"
	LoanRejected        LoanStatus = "rejected"
)

// BookStatus values relevant to candidate eligibility.
const (
	// BookAvailable marks a book eligible for recommendation.
	BookAvailable = "available"
)

// BookMeta is the denormalized metadata snapshot attached to behavioral
// records at write time, so profile building needs no joins.
type BookMeta struct {
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
	Author     string   `json:"author"`
	Publisher  string   `json:"publisher"`
	Format     string   `json:"format"`
	Year       int      `json:"year"`
}

// Interaction is one immutable behavioral record.
type Interaction struct {
	UserID    string    `json:"user_id"`
	Event     EventType `json:"event"`
	BookID    string    `json:"book_id,omitempty"`
	Meta      BookMeta  `json:"meta"`
	Timestamp time.Time `json:"timestamp"`

	// Query is the free-text search string for EventSearch records.
	Query string `json:"query,omitempty"`
}

// Loan is one borrow-lifecycle transaction. The borrowing workflow owns and
// mutates these; the engine only reads them.
type Loan struct {
	UserID     string     `json:"user_id"`
	BookID     string     `json:"book_id"`
	Meta       BookMeta   `json:"meta"`
	Status     LoanStatus `json:"status"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt time.Time  `json:"returned_at,omitempty"`
}

// Bookmark is a (user, book) pin. Existence signals interest; there is no
// weight decay.
type Bookmark struct {
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is a (user, book)-scoped annotation signaling deep engagement.
type Note struct {
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LibraryEntry is a book in the user's personal library. Matching for
// exclusion runs on ISBN and exact title independently, since entries may
// lack a reliable ISBN.
type LibraryEntry struct {
	UserID string `json:"user_id"`
	ISBN   string `json:"isbn,omitempty"`
	Title  string `json:"title"`
}

// Book is a catalog record, read-only to the engine.
type Book struct {
	ID              string   `json:"id"`
	ISBN            string   `json:"isbn,omitempty"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	Publisher       string   `json:"publisher,omitempty"`
	Format          string   `json:"format,omitempty"`
	Year            int      `json:"year,omitempty"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags,omitempty"`
	PopularityScore float64  `json:"popularity_score"`
	Status          string   `json:"status"`
}

// PrimaryCategory returns the first category, or "Uncategorized" when the
// book carries none. The diversity filter keys its per-category caps on this.
func (b *Book) PrimaryCategory() string {
	if len(b.Categories) == 0 {
		return "Uncategorized"
	}
	return b.Categories[0]
}

// EngagementLevel is a coarse activity bucket derived from the composite
// engagement score.
type EngagementLevel int

const (
	EngagementLow EngagementLevel = iota
	EngagementMedium
	EngagementHigh
	EngagementPower
)

// String returns a human-readable level name.
func (l EngagementLevel) String() string {
	switch l {
	case EngagementPower:
		return "power"
	case EngagementHigh:
		return "high"
	case EngagementMedium:
		return "medium"
	default:
		return "low"
	}
}

// Boost returns the flat score bonus applied to every candidate for users at
// this level. Highly engaged users get generally higher scores so their lists
// are less likely to be pruned by the cutoff.
func (l EngagementLevel) Boost() float64 {
	switch l {
	case EngagementPower:
		return 20
	case EngagementHigh:
		return 15
	case EngagementMedium:
		return 10
	default:
		return 5
	}
}

// engagementLevelFor maps a composite engagement score to its bucket.
func engagementLevelFor(score float64) EngagementLevel {
	switch {
	case score > 100:
		return EngagementPower
	case score > 50:
		return EngagementHigh
	case score > 20:
		return EngagementMedium
	default:
		return EngagementLow
	}
}

// Profile is the derived, per-request snapshot of a user's reading
// preferences. It is never cached or persisted; every recommendation request
// rebuilds it from the store.
type Profile struct {
	UserID string `json:"user_id"`

	TopCategories []string `json:"top_categories"`
	TopTags       []string `json:"top_tags"`
	TopAuthors    []string `json:"top_authors"`
	TopPublishers []string `json:"top_publishers"`
	TopFormats    []string `json:"top_formats"`

	// AvgPreferredYear is the weighted mean publication year of the user's
	// interactions, or zero when no year data exists.
	AvgPreferredYear float64 `json:"avg_preferred_year,omitempty"`

	// DiversityScore measures how spread-out the user's category/tag/author
	// consumption is (0-1). Defaults to 0.5 when there is no data, a neutral
	// prior so new users are not penalized in the diversity filter.
	DiversityScore float64 `json:"diversity_score"`

	TotalInteractions  int `json:"total_interactions"`
	RecentInteractions int `json:"recent_interactions"`
	BorrowCount        int `json:"borrow_count"`
	BookmarkCount      int `json:"bookmark_count"`
	NoteCount          int `json:"note_count"`

	// BorrowedBookIDs is the user's 90-day borrow/return history, used as the
	// collaborative-filter anchor and for its own-history exclusion.
	BorrowedBookIDs []string `json:"-"`

	Engagement EngagementLevel `json:"engagement"`
}

// IsEmpty reports whether the user has no behavioral history at all. Callers
// must route empty profiles to the fallback provider instead of scoring
// against them.
func (p *Profile) IsEmpty() bool {
	return p.TotalInteractions == 0 && p.BorrowCount == 0 &&
		p.BookmarkCount == 0 && p.NoteCount == 0
}

// hasCandidateSignal reports whether any generation strategy has usable input.
func (p *Profile) hasCandidateSignal() bool {
	return len(p.TopCategories) > 0 || len(p.TopTags) > 0 ||
		len(p.TopAuthors) > 0 || len(p.TopPublishers) > 0 ||
		len(p.TopFormats) > 0 || p.AvgPreferredYear > 0
}

// ScoredBook is one recommendation: a book with its relevance score (0-100)
// and up to three match-reason strings.
type ScoredBook struct {
	Book           Book     `json:"book"`
	RelevanceScore int      `json:"relevance_score"`
	MatchReasons   []string `json:"match_reasons"`
}

// Request is a recommendation request.
type Request struct {
	// UserID is an opaque user identity (email-like in practice).
	UserID string `json:"user_id"`

	// Limit is the maximum number of recommendations to return.
	// Defaults to Config.Limits.DefaultLimit if zero.
	Limit int `json:"limit,omitempty"`

	// ExcludeBookIDs are caller-supplied books to never recommend.
	ExcludeBookIDs []string `json:"exclude_book_ids,omitempty"`

	// Context is an opaque caller tag ("browse", "detail", ...). It is carried
	// through logging and metrics but never enters scoring.
	Context string `json:"context,omitempty"`

	// BookID, when set, switches the engine into similar-items mode and
	// bypasses profile building.
	BookID string `json:"book_id,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// ProfileSummary is the caller-facing digest attached to every response. Its
// shape varies by path: the full profile path fills the interaction fields,
// the similar-items path fills BasedOn, and the fallback path reports zero
// interactions.
type ProfileSummary struct {
	TotalInteractions int      `json:"total_interactions"`
	TopCategories     []string `json:"top_categories,omitempty"`
	TopAuthors        []string `json:"top_authors,omitempty"`

	// DiversityScore is reported as an integer percentage (0-100).
	DiversityScore  int    `json:"diversity_score,omitempty"`
	EngagementLevel string `json:"engagement_level,omitempty"`

	// BasedOn is the source book title in similar-items mode.
	BasedOn string `json:"based_on,omitempty"`
}

// ResponseMetadata carries timing and diagnostic information.
type ResponseMetadata struct {
	RequestID       string    `json:"request_id"`
	Mode            string    `json:"mode"`
	Context         string    `json:"context,omitempty"`
	TotalCandidates int       `json:"total_candidates"`
	Fallback        bool      `json:"fallback,omitempty"`
	LatencyMS       int64     `json:"latency_ms"`
	Timestamp       time.Time `json:"timestamp"`
}

// Response is a recommendation response.
type Response struct {
	Recommendations []ScoredBook     `json:"recommendations"`
	Profile         ProfileSummary   `json:"profile"`
	Metadata        ResponseMetadata `json:"metadata"`
}

// Neighbor is a user sharing borrow history with the target user.
type Neighbor struct {
	UserID string `json:"user_id"`
	Shared int    `json:"shared"`
}

// BorrowedBook is a book with its distinct-borrower count among a neighbor
// set, ordered by the store (count descending, then book ID).
type BorrowedBook struct {
	BookID    string `json:"book_id"`
	Borrowers int    `json:"borrowers"`
}

// CandidateQuery describes the compound OR query the candidate generator
// issues against the catalog. Empty slices disable their strategy; YearMin
// and YearMax are both zero when the year strategy is off. All strategy
// clauses are OR'd, then AND'd with the availability filter and the negative
// exclusion sets.
type CandidateQuery struct {
	Categories []string
	Tags       []string
	Authors    []string
	Publishers []string
	Formats    []string
	YearMin    int
	YearMax    int
	BookIDs    []string // collaborative-filter hits

	ExcludeISBNs   []string
	ExcludeTitles  []string
	ExcludeBookIDs []string

	Limit int
}

// noSince disables the date filter on GetLoans.
var noSince time.Time

// Store is the read contract the engine requires from the persistence layer.
// It is implemented by the database package; tests supply in-memory fakes.
// All methods must honor ctx cancellation.
type Store interface {
	// GetInteractions returns a user's interaction records since the given
	// time, sorted by timestamp descending.
	GetInteractions(ctx context.Context, userID string, since time.Time) ([]Interaction, error)

	// GetLoans returns a user's loan transactions in the given status set.
	// A zero since time disables the date filter.
	GetLoans(ctx context.Context, userID string, statuses []LoanStatus, since time.Time) ([]Loan, error)

	// GetBookmarks returns all of a user's bookmarks.
	GetBookmarks(ctx context.Context, userID string) ([]Bookmark, error)

	// GetNotes returns all of a user's notes.
	GetNotes(ctx context.Context, userID string) ([]Note, error)

	// GetLibraryEntries returns the user's personal library for exclusion
	// matching.
	GetLibraryEntries(ctx context.Context, userID string) ([]LibraryEntry, error)

	// FindCandidates returns available books matching the compound query,
	// up to q.Limit.
	FindCandidates(ctx context.Context, q CandidateQuery) ([]Book, error)

	// FindCoBorrowers returns users who borrowed at least minShared of the
	// same books as userID, ranked by shared count descending.
	FindCoBorrowers(ctx context.Context, userID string, minShared, limit int) ([]Neighbor, error)

	// GetNeighborBorrows returns books borrowed by at least minBorrowers
	// distinct users from the given set, ranked by borrower count descending.
	GetNeighborBorrows(ctx context.Context, userIDs []string, minBorrowers, limit int) ([]BorrowedBook, error)

	// GetBook fetches a single book by identity, or nil when it does not exist.
	GetBook(ctx context.Context, bookID string) (*Book, error)

	// GetPopularBooks returns available books sorted by popularity descending,
	// ties broken by year descending.
	GetPopularBooks(ctx context.Context, limit int) ([]Book, error)
}
