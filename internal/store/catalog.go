package store

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/scholarpath/internal/model"
)

// table is one bulk-load target: its name, column list and row values in
// column order.
type table struct {
	name    string
	columns []string
	rows    [][]any
	// serial is true when ids are supplied explicitly and the backing
	// sequence must be advanced afterwards.
	serial bool
}

// catalogTables validates c, assigns ids to rows that lack one, and
// flattens it into tables in foreign-key order.
func catalogTables(c model.Catalog) ([]table, error) {
	campusIDs := make(map[string]int64, len(c.Campuses))
	nextCampus := nextID(c.Campuses, func(x model.Campus) int64 { return x.ID })
	campuses := table{name: "campus", columns: []string{"id", "name", "system"}, serial: true}
	for _, cp := range c.Campuses {
		if cp.ID == 0 {
			cp.ID = nextCampus
			nextCampus++
		}
		campusIDs[cp.Name] = cp.ID
		campuses.rows = append(campuses.rows, []any{cp.ID, cp.Name, cp.System})
	}

	nextMajor := nextID(c.Majors, func(x model.Major) int64 { return x.ID })
	majors := table{name: "major", columns: []string{"id", "campus_id", "name", "cip_code", "is_impacted"}, serial: true}
	for _, mj := range c.Majors {
		if mj.ID == 0 {
			mj.ID = nextMajor
			nextMajor++
		}
		if mj.CampusID == 0 {
			id, ok := campusIDs[mj.Campus]
			if !ok {
				return nil, eris.Errorf("store: major %q references unknown campus %q", mj.Name, mj.Campus)
			}
			mj.CampusID = id
		}
		majors.rows = append(majors.rows, []any{mj.ID, mj.CampusID, mj.Name, deref(mj.CIPCode), deref(mj.IsImpacted)})
	}

	schools := table{name: "source_school", columns: []string{"name", "school_type", "city", "state"}}
	for _, s := range c.SourceSchools {
		schools.rows = append(schools.rows, []any{s.Name, string(s.SchoolType), deref(s.City), deref(s.State)})
	}

	nextDataset := nextID(c.Datasets, func(x model.Dataset) int64 { return x.ID })
	datasets := table{name: "dataset", columns: []string{"id", "title", "year", "term", "cohort", "notes"}, serial: true}
	for _, d := range c.Datasets {
		if d.ID == 0 {
			d.ID = nextDataset
			nextDataset++
		}
		if !d.Cohort.Valid() {
			return nil, eris.Errorf("store: dataset %q has unknown cohort %q", d.Title, d.Cohort)
		}
		datasets.rows = append(datasets.rows, []any{d.ID, d.Title, d.Year, deref(d.Term), string(d.Cohort), deref(d.Notes)})
	}

	nextMetric := nextID(c.Metrics, func(x model.Metric) int64 { return x.ID })
	metrics := table{
		name: "metric",
		columns: []string{
			"id", "dataset_id", "campus", "major", "discipline", "source_school", "school_type",
			"cohort", "stat_name", "stat_value_numeric", "stat_value_text", "unit", "percentile",
			"year", "term", "notes",
		},
		serial: true,
	}
	citations := table{
		name:    "citation",
		columns: []string{"metric_id", "title", "publisher", "year", "source_url", "interpretation_note"},
	}
	for _, m := range c.Metrics {
		if m.ID == 0 {
			m.ID = nextMetric
			nextMetric++
		}
		if err := validateMetric(m); err != nil {
			return nil, err
		}
		var schoolType any
		if m.SchoolType != nil {
			schoolType = string(*m.SchoolType)
		}
		metrics.rows = append(metrics.rows, []any{
			m.ID, deref(m.DatasetID), m.Campus, deref(m.Major), deref(m.Discipline), deref(m.SourceSchool), schoolType,
			string(m.Cohort), m.StatName, deref(m.StatValueNumeric), deref(m.StatValueText), deref(m.Unit), deref(m.Percentile),
			m.Year, m.Term, deref(m.Notes),
		})
		for _, ct := range m.Citations {
			citations.rows = append(citations.rows, []any{
				m.ID, ct.Title, ct.Publisher, ct.Year, ct.SourceURL, deref(ct.InterpretationNote),
			})
		}
	}

	return []table{campuses, majors, schools, datasets, metrics, citations}, nil
}

func validateMetric(m model.Metric) error {
	if !m.Cohort.Valid() {
		return eris.Errorf("store: metric %d has unknown cohort %q", m.ID, m.Cohort)
	}
	if m.Campus == "" || m.StatName == "" {
		return eris.Errorf("store: metric %d needs campus and stat_name", m.ID)
	}
	if (m.StatValueNumeric == nil) == (m.StatValueText == nil) {
		return eris.Errorf("store: metric %d must set exactly one of stat_value_numeric and stat_value_text", m.ID)
	}
	return nil
}

func nextID[T any](items []T, id func(T) int64) int64 {
	var maxID int64
	for _, it := range items {
		maxID = max(maxID, id(it))
	}
	return maxID + 1
}

// deref unwraps optional values so both drivers see a plain value or NULL.
func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
