package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/profile"
	"github.com/sells-group/scholarpath/internal/store"
)

func TestDemo(t *testing.T) {
	c, err := Demo()
	require.NoError(t, err)

	assert.Len(t, c.Campuses, 5)
	assert.Len(t, c.Majors, 4)
	assert.Len(t, c.Datasets, 3)
	assert.NotEmpty(t, c.SourceSchools)
	assert.Equal(t, "UC Irvine", c.Majors[0].Campus)

	for _, m := range c.Metrics {
		assert.True(t, m.Cohort.Valid(), m.StatName)
	}
}

func TestDemo_LoadsIntoSQLite(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	c, err := Demo()
	require.NoError(t, err)
	require.NoError(t, st.Load(ctx, c))

	p, err := profile.NewService(st).Assemble(ctx, profile.Request{
		Campus: "UC Irvine",
		Cohort: model.CohortTransfer,
		Major:  "Mathematics",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2022, 2024}, p.Years)
	assert.Len(t, p.Metrics, 8)

	majors, err := st.ListMajors(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, majors, 4)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{
			"unknown field",
			"campuses:\n  - {name: UCLA, system: UC, mascot: bruin}\n",
			"seed: parse catalog",
		},
		{
			"two stat values",
			"metrics:\n  - {campus: UCLA, cohort: transfer, stat_name: x, stat_value_numeric: 1, stat_value_text: one, year: 2024, term: Fall}\n",
			"exactly one of",
		},
		{
			"no stat value",
			"metrics:\n  - {campus: UCLA, cohort: freshman, stat_name: x, year: 2024, term: Fall}\n",
			"exactly one of",
		},
		{
			"bad cohort",
			"metrics:\n  - {campus: UCLA, cohort: graduate, stat_name: x, stat_value_numeric: 1, year: 2024, term: Fall}\n",
			"unknown cohort",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, c.Metrics)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("campuses:\n  - {name: UCLA, system: UC}\n"), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, c.Campuses, 1)
	assert.Equal(t, "UCLA", c.Campuses[0].Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
