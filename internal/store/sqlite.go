package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/query"
	"github.com/sells-group/scholarpath/internal/resilience"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs local
// development, the demo seed and the integration tests.
type SQLiteStore struct {
	db    *sql.DB
	retry resilience.RetryConfig
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// Pragmas are per connection; one connection keeps them in force and
	// lets ":memory:" databases work.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, retry: resilience.DefaultRetryConfig()}, nil
}

// SetRetry replaces the policy used for transient failures such as
// SQLITE_BUSY.
func (s *SQLiteStore) SetRetry(cfg resilience.RetryConfig) {
	s.retry = cfg
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS campus (
	id     INTEGER PRIMARY KEY,
	name   TEXT NOT NULL UNIQUE,
	system TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS major (
	id          INTEGER PRIMARY KEY,
	campus_id   INTEGER NOT NULL REFERENCES campus(id),
	name        TEXT NOT NULL,
	cip_code    TEXT,
	is_impacted TEXT,
	UNIQUE (campus_id, name)
);

CREATE TABLE IF NOT EXISTS source_school (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	school_type TEXT NOT NULL,
	city        TEXT,
	state       TEXT
);

CREATE TABLE IF NOT EXISTS dataset (
	id     INTEGER PRIMARY KEY,
	title  TEXT NOT NULL,
	year   INTEGER NOT NULL,
	term   TEXT,
	cohort TEXT NOT NULL CHECK (cohort IN ('transfer', 'freshman')),
	notes  TEXT
);

CREATE TABLE IF NOT EXISTS metric (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	dataset_id         INTEGER REFERENCES dataset(id),
	campus             TEXT NOT NULL,
	major              TEXT,
	discipline         TEXT,
	source_school      TEXT,
	school_type        TEXT,
	cohort             TEXT NOT NULL CHECK (cohort IN ('transfer', 'freshman')),
	stat_name          TEXT NOT NULL,
	stat_value_numeric REAL,
	stat_value_text    TEXT,
	unit               TEXT,
	percentile         TEXT,
	year               INTEGER NOT NULL,
	term               TEXT NOT NULL,
	notes              TEXT
);

CREATE TABLE IF NOT EXISTS citation (
	id                  INTEGER PRIMARY KEY,
	metric_id           INTEGER NOT NULL REFERENCES metric(id) ON DELETE CASCADE,
	title               TEXT NOT NULL,
	publisher           TEXT NOT NULL,
	year                INTEGER NOT NULL,
	source_url          TEXT NOT NULL,
	interpretation_note TEXT
);

CREATE INDEX IF NOT EXISTS idx_metric_campus_cohort_year ON metric(campus, cohort, year);
CREATE INDEX IF NOT EXISTS idx_metric_dataset_id ON metric(dataset_id);
CREATE INDEX IF NOT EXISTS idx_metric_stat_name ON metric(stat_name);
CREATE INDEX IF NOT EXISTS idx_citation_metric_id ON citation(metric_id);
CREATE INDEX IF NOT EXISTS idx_major_campus_id ON major(campus_id);
CREATE INDEX IF NOT EXISTS idx_source_school_name ON source_school(name);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func sqliteList[T any](ctx context.Context, s *SQLiteStore, op, stmt string, args []any, scan func(scanner) (T, error)) ([]T, error) {
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("sqlite", op)
	return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]T, error) {
		rows, err := s.db.QueryContext(ctx, stmt, args...)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: %s", op)
		}
		defer rows.Close() //nolint:errcheck

		out, err := collect(rows, scan)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", op)
		}
		return out, nil
	})
}

func (s *SQLiteStore) ListMetrics(ctx context.Context, q query.MetricQuery) ([]model.Metric, error) {
	stmt, args, err := dialectSQLite.metricSQL(q)
	if err != nil {
		return nil, err
	}
	metrics, err := sqliteList(ctx, s, "list metrics", stmt, args, scanMetric)
	if err != nil {
		return nil, err
	}

	cites, err := s.citations(ctx, metricIDs(metrics))
	if err != nil {
		return nil, err
	}
	for i := range metrics {
		metrics[i].Citations = citationsFor(cites, metrics[i].ID)
	}
	return metrics, nil
}

func (s *SQLiteStore) ListProvenanceRows(ctx context.Context, preds []query.Predicate, limit int) ([]model.ProvenanceRow, error) {
	q, args, err := dialectSQLite.provenanceSQL(preds, limit)
	if err != nil {
		return nil, err
	}
	rows, err := sqliteList(ctx, s, "list provenance", q, args, scanProvenance)
	if err != nil {
		return nil, err
	}

	cites, err := s.citations(ctx, provenanceIDs(rows))
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Citations = citationsFor(cites, rows[i].MetricID)
	}
	return rows, nil
}

func (s *SQLiteStore) citations(ctx context.Context, ids []int64) (map[int64][]model.Citation, error) {
	if len(ids) == 0 {
		return map[int64][]model.Citation{}, nil
	}
	q, args, err := dialectSQLite.citationSQL(ids)
	if err != nil {
		return nil, err
	}
	rows, err := sqliteList(ctx, s, "list citations", q, args, scanCitation)
	if err != nil {
		return nil, err
	}
	return groupCitations(rows), nil
}

func (s *SQLiteStore) ListSourceSchools(ctx context.Context, preds []query.Predicate, limit int) ([]model.SourceSchool, error) {
	q, args, err := dialectSQLite.sourceSchoolSQL(preds, limit)
	if err != nil {
		return nil, err
	}
	return sqliteList(ctx, s, "list source schools", q, args, scanSourceSchool)
}

func (s *SQLiteStore) ListCampuses(ctx context.Context, preds []query.Predicate) ([]model.Campus, error) {
	q, args, err := dialectSQLite.campusSQL(preds)
	if err != nil {
		return nil, err
	}
	return sqliteList(ctx, s, "list campuses", q, args, scanCampus)
}

func (s *SQLiteStore) ListMajors(ctx context.Context, preds []query.Predicate) ([]model.Major, error) {
	q, args, err := dialectSQLite.majorSQL(preds)
	if err != nil {
		return nil, err
	}
	return sqliteList(ctx, s, "list majors", q, args, scanMajor)
}

func (s *SQLiteStore) ListDatasets(ctx context.Context, preds []query.Predicate) ([]model.Dataset, error) {
	q, args, err := dialectSQLite.datasetSQL(preds)
	if err != nil {
		return nil, err
	}
	return sqliteList(ctx, s, "list datasets", q, args, scanDataset)
}

// Load inserts c inside one transaction.
func (s *SQLiteStore) Load(ctx context.Context, c model.Catalog) error {
	tables, err := catalogTables(c)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin load")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, t := range tables {
		if len(t.rows) == 0 {
			continue
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO "+t.name+" ("+strings.Join(t.columns, ", ")+") VALUES ("+marks+")")
		if err != nil {
			return eris.Wrapf(err, "sqlite: prepare insert %s", t.name)
		}
		for _, row := range t.rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				stmt.Close() //nolint:errcheck
				return eris.Wrapf(err, "sqlite: insert %s", t.name)
			}
		}
		stmt.Close() //nolint:errcheck
		zap.L().Debug("sqlite: loaded table", zap.String("table", t.name), zap.Int("rows", len(t.rows)))
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit load")
}
