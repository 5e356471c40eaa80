package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want int
	}{
		{"", 50},
		{"abc", 50},
		{"0", 50},
		{"-3", 1},
		{"1", 1},
		{"25", 25},
		{"50", 50},
		{"51", 50},
		{"1000", 50},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got := ClampLimit(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, MaxPageSize)
		})
	}
}

func TestParseCursor(t *testing.T) {
	t.Parallel()

	c, err := ParseCursor("")
	require.NoError(t, err)
	assert.False(t, c.Set)
	assert.Equal(t, "", c.String())

	c, err = ParseCursor("42")
	require.NoError(t, err)
	assert.True(t, c.Set)
	assert.Equal(t, int64(42), c.After)
	assert.Equal(t, "42", c.String())

	_, err = ParseCursor("abc")
	require.Error(t, err)

	_, err = ParseCursor("-1")
	require.Error(t, err)
}

func TestPageQuery(t *testing.T) {
	t.Parallel()

	preds := []Predicate{Eq(ColCampus, "UCLA")}

	q := PageQuery(preds, Cursor{}, 10)
	assert.Equal(t, OrderByID, q.Order)
	assert.Equal(t, 11, q.Limit)
	assert.Equal(t, preds, q.Predicates)

	q = PageQuery(preds, Cursor{After: 7, Set: true}, 10)
	assert.Equal(t, []Predicate{Eq(ColCampus, "UCLA"), Gt(ColID, int64(7))}, q.Predicates)
	// The caller's slice is not aliased.
	assert.Len(t, preds, 1)
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	id := func(n int64) int64 { return n }

	t.Run("short page has no cursor", func(t *testing.T) {
		t.Parallel()
		items, next := Paginate([]int64{1, 2, 3}, 5, id)
		assert.Equal(t, []int64{1, 2, 3}, items)
		assert.Nil(t, next)
	})

	t.Run("exact page has no cursor", func(t *testing.T) {
		t.Parallel()
		items, next := Paginate([]int64{1, 2}, 2, id)
		assert.Equal(t, []int64{1, 2}, items)
		assert.Nil(t, next)
	})

	t.Run("overflow row yields cursor of last item", func(t *testing.T) {
		t.Parallel()
		items, next := Paginate([]int64{4, 9, 12}, 2, id)
		assert.Equal(t, []int64{4, 9}, items)
		require.NotNil(t, next)
		assert.Equal(t, "9", *next)
	})
}

// Walking pages over an in-memory table visits every matching id exactly
// once and in order, for every page size.
func TestPaginate_WalkVisitsEveryRowOnce(t *testing.T) {
	t.Parallel()

	table := []int64{2, 3, 5, 8, 13, 21, 34, 55, 89, 144, 233}
	fetch := func(q MetricQuery) []int64 {
		var after int64 = -1
		for _, p := range q.Predicates {
			if p.Column == ColID && p.Op == OpGt {
				after = p.Value.(int64)
			}
		}
		var out []int64
		for _, id := range table {
			if id > after && len(out) < q.Limit {
				out = append(out, id)
			}
		}
		return out
	}

	for limit := 1; limit <= len(table)+1; limit++ {
		var seen []int64
		cursor := Cursor{}
		for pages := 0; pages <= len(table)+1; pages++ {
			rows := fetch(PageQuery(nil, cursor, limit))
			items, next := Paginate(rows, limit, func(n int64) int64 { return n })
			seen = append(seen, items...)
			if next == nil {
				break
			}
			var err error
			cursor, err = ParseCursor(*next)
			require.NoError(t, err)
		}
		assert.Equal(t, table, seen, "limit=%d", limit)
	}
}
