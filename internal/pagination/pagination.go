// Package pagination implements keyset pagination over monotonically
// increasing row IDs. Every feed endpoint pages through the same engine so
// all of them share identical semantics: strictly descending order, an
// exclusive cursor, and a nil next cursor at end of stream.
package pagination

import "gorm.io/gorm"

const (
	// DefaultLimit applies when the client sends no usable page size.
	DefaultLimit = 5
	// MaxLimit caps page sizes so a single request cannot drain a table.
	MaxLimit = 100
)

// Clamp normalizes a requested page size into [1, MaxLimit].
func Clamp(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Paginate fetches one page from query. The cursor is the last-seen ID from
// the previous page; rows are restricted to id < cursor, ANDed with whatever
// filter the caller already applied to query. It fetches limit+1 rows to
// detect a further page without a second round trip. The returned next
// cursor is the ID of the last item in the page, or nil when the result set
// is exhausted.
//
// Issuing the same cursor and filter again yields the same page as long as
// no writes intervene; this is plain keyset pagination, not a snapshot.
func Paginate[T any](query *gorm.DB, limit int, cursor uint, idOf func(*T) uint) ([]T, *uint, error) {
	limit = Clamp(limit)

	q := query
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}

	var rows []T
	if err := q.Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) <= limit {
		return rows, nil, nil
	}

	rows = rows[:limit]
	next := idOf(&rows[len(rows)-1])
	return rows, &next, nil
}
