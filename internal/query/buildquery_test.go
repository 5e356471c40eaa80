package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildQuery_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", BuildQuery(map[string]any{}))
	assert.Equal(t, "", BuildQuery(nil))
	assert.Equal(t, "", BuildQuery(map[string]any{"a": "", "b": nil}))

	var unset *string
	assert.Equal(t, "", BuildQuery(map[string]any{"c": unset, "d": []int{}}))
}

func TestBuildQuery_RepeatsSlicesAndEncodesSpaces(t *testing.T) {
	t.Parallel()

	got := BuildQuery(map[string]any{
		"years":  []int{2023, 2024},
		"campus": "UC Irvine",
	})

	assert.Contains(t, got, "years=2023")
	assert.Contains(t, got, "years=2024")
	assert.Contains(t, got, "campus=UC%20Irvine")
	assert.Equal(t, "?campus=UC%20Irvine&years=2023&years=2024", got)
}

func TestBuildQuery_EscapesReservedCharacters(t *testing.T) {
	t.Parallel()

	got := BuildQuery(map[string]any{"search": "A&M + Tech", "limit": 10})
	assert.Equal(t, "?limit=10&search=A%26M%20%2B%20Tech", got)
}

func TestBuildQuery_StringSlicesSkipEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "?tag=a&tag=b", BuildQuery(map[string]any{"tag": []string{"a", "", "b"}}))
}
