package query

import (
	"strconv"
	"strings"

	"github.com/sells-group/scholarpath/internal/apperr"
)

// MaxPageSize caps every metric page; it is also the default size.
const MaxPageSize = 50

// ClampLimit normalizes a raw limit parameter into [1, MaxPageSize].
// Missing, non-numeric and zero values select the default.
func ClampLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n == 0 {
		return MaxPageSize
	}
	return min(max(n, 1), MaxPageSize)
}

// Cursor is the exclusive lower bound of a keyset page: the id of the
// last row the client has already seen.
type Cursor struct {
	After int64
	Set   bool
}

// ParseCursor decodes a cursor string. An empty string means "first page".
func ParseCursor(raw string) (Cursor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cursor{}, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return Cursor{}, apperr.Validation("cursor is invalid")
	}
	return Cursor{After: id, Set: true}, nil
}

// String encodes the cursor; the zero Cursor encodes as "".
func (c Cursor) String() string {
	if !c.Set {
		return ""
	}
	return strconv.FormatInt(c.After, 10)
}

// PageQuery builds the metric read for one keyset page: the filter's
// predicates plus id > cursor, ordered by id, fetching one extra row so
// the caller can tell whether another page exists.
func PageQuery(preds []Predicate, cursor Cursor, limit int) MetricQuery {
	all := make([]Predicate, 0, len(preds)+1)
	all = append(all, preds...)
	if cursor.Set {
		all = append(all, Gt(ColID, cursor.After))
	}
	return MetricQuery{Predicates: all, Order: OrderByID, Limit: limit + 1}
}

// Paginate truncates rows fetched by PageQuery to limit. When more rows
// exist it returns the cursor of the last returned item, so a follow-up
// request with id > cursor resumes exactly after it.
func Paginate[T any](rows []T, limit int, id func(T) int64) ([]T, *string) {
	limit = max(limit, 1)
	if len(rows) <= limit {
		return rows, nil
	}
	items := rows[:limit]
	next := Cursor{After: id(items[limit-1]), Set: true}.String()
	return items, &next
}
