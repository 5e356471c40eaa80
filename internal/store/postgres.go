package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/scholarpath/internal/db"
	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/query"
	"github.com/sells-group/scholarpath/internal/resilience"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	retry   resilience.RetryConfig
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig, retry resilience.RetryConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, retry: retry, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS campus (
	id     BIGSERIAL PRIMARY KEY,
	name   TEXT NOT NULL UNIQUE,
	system TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS major (
	id          BIGSERIAL PRIMARY KEY,
	campus_id   BIGINT NOT NULL REFERENCES campus(id),
	name        TEXT NOT NULL,
	cip_code    TEXT,
	is_impacted TEXT,
	UNIQUE (campus_id, name)
);

CREATE TABLE IF NOT EXISTS source_school (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	school_type TEXT NOT NULL,
	city        TEXT,
	state       TEXT
);

CREATE TABLE IF NOT EXISTS dataset (
	id     BIGSERIAL PRIMARY KEY,
	title  TEXT NOT NULL,
	year   INTEGER NOT NULL,
	term   TEXT,
	cohort TEXT NOT NULL CHECK (cohort IN ('transfer', 'freshman')),
	notes  TEXT
);

CREATE TABLE IF NOT EXISTS metric (
	id                 BIGSERIAL PRIMARY KEY,
	dataset_id         BIGINT REFERENCES dataset(id),
	campus             TEXT NOT NULL,
	major              TEXT,
	discipline         TEXT,
	source_school      TEXT,
	school_type        TEXT,
	cohort             TEXT NOT NULL CHECK (cohort IN ('transfer', 'freshman')),
	stat_name          TEXT NOT NULL,
	stat_value_numeric DOUBLE PRECISION,
	stat_value_text    TEXT,
	unit               TEXT,
	percentile         TEXT,
	year               INTEGER NOT NULL,
	term               TEXT NOT NULL,
	notes              TEXT
);

CREATE TABLE IF NOT EXISTS citation (
	id                  BIGSERIAL PRIMARY KEY,
	metric_id           BIGINT NOT NULL REFERENCES metric(id) ON DELETE CASCADE,
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

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) retryFor(op string) resilience.RetryConfig {
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("postgres", op)
	return cfg
}

// pgList runs one read with retries and scans every row with scan.
func pgList[T any](ctx context.Context, s *PostgresStore, op, sql string, args []any, scan func(scanner) (T, error)) ([]T, error) {
	return resilience.DoVal(ctx, s.retryFor(op), func(ctx context.Context) ([]T, error) {
		rows, err := s.pool.Query(ctx, sql, args...)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: %s", op)
		}
		defer rows.Close()

		out, err := collect(rows, scan)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s", op)
		}
		return out, nil
	})
}

func (s *PostgresStore) ListMetrics(ctx context.Context, q query.MetricQuery) ([]model.Metric, error) {
	sql, args, err := dialectPostgres.metricSQL(q)
	if err != nil {
		return nil, err
	}
	metrics, err := pgList(ctx, s, "list metrics", sql, args, scanMetric)
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

func (s *PostgresStore) ListProvenanceRows(ctx context.Context, preds []query.Predicate, limit int) ([]model.ProvenanceRow, error) {
	sql, args, err := dialectPostgres.provenanceSQL(preds, limit)
	if err != nil {
		return nil, err
	}
	rows, err := pgList(ctx, s, "list provenance", sql, args, scanProvenance)
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

func (s *PostgresStore) citations(ctx context.Context, ids []int64) (map[int64][]model.Citation, error) {
	if len(ids) == 0 {
		return map[int64][]model.Citation{}, nil
	}
	sql, args, err := dialectPostgres.citationSQL(ids)
	if err != nil {
		return nil, err
	}
	rows, err := pgList(ctx, s, "list citations", sql, args, scanCitation)
	if err != nil {
		return nil, err
	}
	return groupCitations(rows), nil
}

func (s *PostgresStore) ListSourceSchools(ctx context.Context, preds []query.Predicate, limit int) ([]model.SourceSchool, error) {
	sql, args, err := dialectPostgres.sourceSchoolSQL(preds, limit)
	if err != nil {
		return nil, err
	}
	return pgList(ctx, s, "list source schools", sql, args, scanSourceSchool)
}

func (s *PostgresStore) ListCampuses(ctx context.Context, preds []query.Predicate) ([]model.Campus, error) {
	sql, args, err := dialectPostgres.campusSQL(preds)
	if err != nil {
		return nil, err
	}
	return pgList(ctx, s, "list campuses", sql, args, scanCampus)
}

func (s *PostgresStore) ListMajors(ctx context.Context, preds []query.Predicate) ([]model.Major, error) {
	sql, args, err := dialectPostgres.majorSQL(preds)
	if err != nil {
		return nil, err
	}
	return pgList(ctx, s, "list majors", sql, args, scanMajor)
}

func (s *PostgresStore) ListDatasets(ctx context.Context, preds []query.Predicate) ([]model.Dataset, error) {
	sql, args, err := dialectPostgres.datasetSQL(preds)
	if err != nil {
		return nil, err
	}
	return pgList(ctx, s, "list datasets", sql, args, scanDataset)
}

// Load bulk-copies c inside one transaction, then advances the id
// sequences past the explicitly supplied ids.
func (s *PostgresStore) Load(ctx context.Context, c model.Catalog) error {
	tables, err := catalogTables(c)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin load")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, t := range tables {
		n, err := db.CopyFrom(ctx, tx, t.name, t.columns, t.rows)
		if err != nil {
			return err
		}
		zap.L().Debug("postgres: loaded table", zap.String("table", t.name), zap.Int64("rows", n))
	}
	for _, t := range tables {
		if !t.serial || len(t.rows) == 0 {
			continue
		}
		if err := db.ResetSequence(ctx, tx, t.name); err != nil {
			return err
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit load")
}

