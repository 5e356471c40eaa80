package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("campus and major are required"), http.StatusBadRequest},
		{"not found", NotFound("No profile data found"), http.StatusNotFound},
		{"store", Store(errors.New("relation \"metric\" does not exist")), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("profile: %w", NotFound("none")), http.StatusNotFound},
		{"eris wrapped validation", eris.Wrap(Validation("bad year"), "api"), http.StatusBadRequest},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestStore_PreservesClassification(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Store(nil))

	nf := NotFound("none")
	assert.Same(t, nf, Store(nf))

	inner := errors.New("connection refused")
	wrapped := Store(inner)
	var se *StoreError
	assert.True(t, errors.As(wrapped, &se))
	assert.ErrorIs(t, wrapped, inner)
	assert.Equal(t, "connection refused", wrapped.Error())
	assert.Same(t, wrapped, Store(wrapped))
}
