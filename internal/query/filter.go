package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/sells-group/scholarpath/internal/apperr"
)

// MetricFilter is the parsed set of metric filters from a request.
// Zero values mean "not specified".
type MetricFilter struct {
	Campus       string
	Major        string
	Discipline   string
	Cohort       string
	StatName     string
	SourceSchool string
	SchoolType   string
	Year         *int
	YearMin      *int
	YearMax      *int
	Years        []int
}

// equality filters in the order they are applied.
var metricEqKeys = []Column{
	ColCampus, ColMajor, ColDiscipline, ColCohort, ColStatName, ColSourceSchool, ColSchoolType,
}

// ParseMetricFilter reads the recognized metric filters from params.
// Unrecognized names are ignored and empty values are treated as absent.
// year, year_min and year_max must be integers; non-integer entries of the
// repeatable years parameter are dropped.
func ParseMetricFilter(params url.Values) (MetricFilter, error) {
	f := MetricFilter{
		Campus:       params.Get("campus"),
		Major:        params.Get("major"),
		Discipline:   params.Get("discipline"),
		Cohort:       params.Get("cohort"),
		StatName:     params.Get("stat_name"),
		SourceSchool: params.Get("source_school"),
		SchoolType:   params.Get("school_type"),
		Years:        ParseYears(params["years"]),
	}

	var err error
	if f.Year, err = optionalInt(params, "year"); err != nil {
		return MetricFilter{}, err
	}
	if f.YearMin, err = optionalInt(params, "year_min"); err != nil {
		return MetricFilter{}, err
	}
	if f.YearMax, err = optionalInt(params, "year_max"); err != nil {
		return MetricFilter{}, err
	}
	return f, nil
}

// Predicates returns the AND-composed constraints of f. When both Year and
// Years are set, both an equality and a membership predicate are emitted;
// they are not merged, so the result only matches when Year is in Years.
func (f MetricFilter) Predicates() []Predicate {
	values := map[Column]string{
		ColCampus:       f.Campus,
		ColMajor:        f.Major,
		ColDiscipline:   f.Discipline,
		ColCohort:       f.Cohort,
		ColStatName:     f.StatName,
		ColSourceSchool: f.SourceSchool,
		ColSchoolType:   f.SchoolType,
	}

	var preds []Predicate
	for _, col := range metricEqKeys {
		if v := values[col]; v != "" {
			preds = append(preds, Eq(col, v))
		}
	}
	if f.Year != nil {
		preds = append(preds, Eq(ColYear, *f.Year))
	}
	if f.YearMin != nil {
		preds = append(preds, Gte(ColYear, *f.YearMin))
	}
	if f.YearMax != nil {
		preds = append(preds, Lte(ColYear, *f.YearMax))
	}
	if len(f.Years) > 0 {
		preds = append(preds, In(ColYear, f.Years))
	}
	return preds
}

// ProvenanceFilter selects the metrics whose provenance is grouped.
type ProvenanceFilter struct {
	Campus string
	Year   *int
}

// ParseProvenanceFilter reads campus and year from params.
func ParseProvenanceFilter(params url.Values) (ProvenanceFilter, error) {
	year, err := optionalInt(params, "year")
	if err != nil {
		return ProvenanceFilter{}, err
	}
	return ProvenanceFilter{Campus: params.Get("campus"), Year: year}, nil
}

// Predicates returns the metric constraints of f.
func (f ProvenanceFilter) Predicates() []Predicate {
	var preds []Predicate
	if f.Campus != "" {
		preds = append(preds, Eq(ColCampus, f.Campus))
	}
	if f.Year != nil {
		preds = append(preds, Eq(ColYear, *f.Year))
	}
	return preds
}

// SourceSchoolFilter searches feeder schools.
type SourceSchoolFilter struct {
	Search string
	Type   string
}

// ParseSourceSchoolFilter reads search and type from params.
func ParseSourceSchoolFilter(params url.Values) SourceSchoolFilter {
	return SourceSchoolFilter{Search: params.Get("search"), Type: params.Get("type")}
}

// Predicates returns the source-school constraints of f.
func (f SourceSchoolFilter) Predicates() []Predicate {
	var preds []Predicate
	if f.Type != "" {
		preds = append(preds, Eq(ColSchoolType, f.Type))
	}
	if f.Search != "" {
		preds = append(preds, Contains(ColName, f.Search))
	}
	return preds
}

// CampusFilter narrows the campus list to one system (UC, CSU).
type CampusFilter struct {
	System string
}

// Predicates returns the campus constraints of f.
func (f CampusFilter) Predicates() []Predicate {
	if f.System == "" {
		return nil
	}
	return []Predicate{Eq(ColSystem, f.System)}
}

// MajorFilter narrows majors by campus name and major name substrings.
type MajorFilter struct {
	Campus string
	Search string
}

// Predicates returns the major constraints of f.
func (f MajorFilter) Predicates() []Predicate {
	var preds []Predicate
	if f.Campus != "" {
		preds = append(preds, Contains(ColCampus, f.Campus))
	}
	if f.Search != "" {
		preds = append(preds, Contains(ColName, f.Search))
	}
	return preds
}

// DatasetFilter narrows datasets by year and cohort.
type DatasetFilter struct {
	Year   *int
	Cohort string
}

// ParseDatasetFilter reads year and cohort from params.
func ParseDatasetFilter(params url.Values) (DatasetFilter, error) {
	year, err := optionalInt(params, "year")
	if err != nil {
		return DatasetFilter{}, err
	}
	return DatasetFilter{Year: year, Cohort: params.Get("cohort")}, nil
}

// Predicates returns the dataset constraints of f.
func (f DatasetFilter) Predicates() []Predicate {
	var preds []Predicate
	if f.Year != nil {
		preds = append(preds, Eq(ColYear, *f.Year))
	}
	if f.Cohort != "" {
		preds = append(preds, Eq(ColCohort, f.Cohort))
	}
	return preds
}

// ParseYears converts the raw values of a repeatable years parameter,
// dropping anything that is not an integer.
func ParseYears(raw []string) []int {
	var years []int
	for _, s := range raw {
		y, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	return years
}

func optionalInt(params url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(params.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.Validation("%s must be an integer", key)
	}
	return &v, nil
}
