// Package profile assembles campus admissions profiles for one cohort.
package profile

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/scholarpath/internal/apperr"
	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/query"
)

// MetricLister reads metrics matching a composed query.
type MetricLister interface {
	ListMetrics(ctx context.Context, q query.MetricQuery) ([]model.Metric, error)
}

// Request selects a profile. Transfer profiles are keyed by Major,
// freshman profiles by Discipline.
type Request struct {
	Campus     string
	Cohort     model.Cohort
	Major      string
	Discipline string
	Years      []int
}

// Validate checks that the selector required by the cohort is present.
func (r Request) Validate() error {
	switch r.Cohort {
	case model.CohortTransfer:
		if r.Campus == "" || r.Major == "" {
			return apperr.Validation("campus and major are required")
		}
	case model.CohortFreshman:
		if r.Campus == "" || r.Discipline == "" {
			return apperr.Validation("campus and discipline are required")
		}
	default:
		return apperr.Validation("unknown cohort %q", string(r.Cohort))
	}
	return nil
}

// Query returns the metric read for r, ordered by year ascending.
func (r Request) Query() query.MetricQuery {
	preds := []query.Predicate{
		query.Eq(query.ColCampus, r.Campus),
		query.Eq(query.ColCohort, string(r.Cohort)),
	}
	if r.Cohort == model.CohortTransfer {
		preds = append(preds, query.Eq(query.ColMajor, r.Major))
	} else {
		preds = append(preds, query.Eq(query.ColDiscipline, r.Discipline))
	}
	if len(r.Years) > 0 {
		preds = append(preds, query.In(query.ColYear, r.Years))
	}
	return query.MetricQuery{Predicates: preds, Order: query.OrderByYear}
}

// Service assembles profiles from a metric store.
type Service struct {
	store MetricLister
}

// NewService creates a profile Service.
func NewService(store MetricLister) *Service {
	return &Service{store: store}
}

// Assemble fetches every metric matching req. It returns a NotFoundError
// when nothing matches, so callers can tell "no data" from a failed read.
func (s *Service) Assemble(ctx context.Context, req Request) (*model.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	metrics, err := s.store.ListMetrics(ctx, req.Query())
	if err != nil {
		return nil, apperr.Store(err)
	}
	if len(metrics) == 0 {
		zap.L().Debug("profile: no rows",
			zap.String("campus", req.Campus),
			zap.String("cohort", string(req.Cohort)),
		)
		return nil, apperr.NotFound("No profile data found")
	}

	for i := range metrics {
		if metrics[i].Citations == nil {
			metrics[i].Citations = []model.Citation{}
		}
	}

	p := &model.Profile{
		Campus:  req.Campus,
		Cohort:  req.Cohort,
		Years:   DistinctYears(metrics),
		Metrics: metrics,
	}
	if req.Cohort == model.CohortTransfer {
		p.Major = &req.Major
	} else {
		p.Discipline = &req.Discipline
	}
	return p, nil
}

// DistinctYears returns the sorted set of years present in metrics.
func DistinctYears(metrics []model.Metric) []int {
	seen := make(map[int]struct{}, len(metrics))
	years := make([]int, 0)
	for _, m := range metrics {
		if _, ok := seen[m.Year]; ok {
			continue
		}
		seen[m.Year] = struct{}{}
		years = append(years, m.Year)
	}
	sort.Ints(years)
	return years
}
