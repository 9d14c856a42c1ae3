// Package pagination implements the shared page-based retrieval policy used by
// the comment, notification, message and follower listings: a fixed page size,
// 1-indexed page numbers, and last-page detection from the returned item count.
// Each request is independently computable; no cursor state is persisted.
package pagination

// PageSize is the fixed number of items per page across content listings.
const PageSize = 5

// Cursor is a derived (skip, limit) pair for a page request.
type Cursor struct {
	Skip  int
	Limit int
}

// ForPage derives the cursor for a 1-indexed page number. Pages below 1 are
// treated as page 1.
func ForPage(page int) Cursor {
	if page < 1 {
		page = 1
	}
	return Cursor{
		Skip:  PageSize * (page - 1),
		Limit: PageSize,
	}
}

// IsLastPage reports whether a page holding `returned` items is the last one:
// a full page means more items may follow, a short page ends the listing.
func IsLastPage(returned int) bool {
	return returned < PageSize
}
