// Package store reads ScholarPath metrics and reference data from
// Postgres or SQLite.
package store

import (
	"context"

	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/query"
)

// Store defines the read and load interface shared by every backend.
// Predicates are the store-neutral constraints built by package query;
// a predicate on a column the listing does not expose is an error.
type Store interface {
	// Metrics
	ListMetrics(ctx context.Context, q query.MetricQuery) ([]model.Metric, error)
	ListProvenanceRows(ctx context.Context, preds []query.Predicate, limit int) ([]model.ProvenanceRow, error)

	// Reference data
	ListSourceSchools(ctx context.Context, preds []query.Predicate, limit int) ([]model.SourceSchool, error)
	ListCampuses(ctx context.Context, preds []query.Predicate) ([]model.Campus, error)
	ListMajors(ctx context.Context, preds []query.Predicate) ([]model.Major, error)
	ListDatasets(ctx context.Context, preds []query.Predicate) ([]model.Dataset, error)

	// Loading
	Load(ctx context.Context, c model.Catalog) error

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// SourceSchoolLimit caps the source-school search.
const SourceSchoolLimit = 25
