package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "metric", []string{"id", "campus"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"campus"}, []string{"id", "name", "system"}).WillReturnResult(3)

	rows := [][]any{{1, "UC Irvine", "UC"}, {2, "UCLA", "UC"}, {3, "CSU Long Beach", "CSU"}}
	n, err := CopyFrom(context.Background(), mock, "campus", []string{"id", "name", "system"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"citation"}, []string{"metric_id"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "citation", []string{"metric_id"}, [][]any{{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO citation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetSequence(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`SELECT setval\(pg_get_serial_sequence\('metric', 'id'\)`).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, ResetSequence(context.Background(), mock, "metric"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetSequence_Error(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`setval`).WillReturnError(fmt.Errorf("permission denied"))

	err = ResetSequence(context.Background(), mock, "dataset")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset sequence for dataset")
}
