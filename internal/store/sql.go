package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/query"
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

func (d dialect) placeholder(n int) string {
	if d == dialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// colMetricID addresses citation.metric_id; it is never exposed to callers.
const colMetricID query.Column = "metric_id"

// columnMap maps logical columns to the physical expression of one listing.
type columnMap map[query.Column]string

var (
	metricColumns = columnMap{
		query.ColID:           "m.id",
		query.ColCampus:       "m.campus",
		query.ColMajor:        "m.major",
		query.ColDiscipline:   "m.discipline",
		query.ColCohort:       "m.cohort",
		query.ColStatName:     "m.stat_name",
		query.ColSourceSchool: "m.source_school",
		query.ColSchoolType:   "m.school_type",
		query.ColYear:         "m.year",
	}
	sourceSchoolColumns = columnMap{
		query.ColName:       "name",
		query.ColSchoolType: "school_type",
	}
	campusColumns = columnMap{
		query.ColName:   "name",
		query.ColSystem: "system",
	}
	majorColumns = columnMap{
		query.ColCampus: "c.name",
		query.ColName:   "mj.name",
	}
	datasetColumns = columnMap{
		query.ColYear:   "year",
		query.ColCohort: "cohort",
	}
	citationColumns = columnMap{
		colMetricID: "metric_id",
	}
)

var comparisons = map[query.Op]string{
	query.OpEq:  "=",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLte: "<=",
}

// where renders preds as a WHERE clause. New bind values are appended to
// args so callers can place their own parameters first.
func (d dialect) where(cols columnMap, preds []query.Predicate, args []any) (string, []any, error) {
	var b strings.Builder
	b.WriteString("WHERE 1=1")

	for _, p := range preds {
		col, ok := cols[p.Column]
		if !ok {
			return "", nil, eris.Errorf("%s: cannot filter on %q", d, p.Column)
		}

		switch p.Op {
		case query.OpEq, query.OpGt, query.OpGte, query.OpLte:
			args = append(args, p.Value)
			fmt.Fprintf(&b, " AND %s %s %s", col, comparisons[p.Op], d.placeholder(len(args)))

		case query.OpIn:
			vals, _ := p.Value.([]any)
			if len(vals) == 0 {
				b.WriteString(" AND 1=0")
				continue
			}
			ph := make([]string, len(vals))
			for i, v := range vals {
				args = append(args, v)
				ph[i] = d.placeholder(len(args))
			}
			fmt.Fprintf(&b, " AND %s IN (%s)", col, strings.Join(ph, ", "))

		case query.OpContains:
			s, _ := p.Value.(string)
			args = append(args, "%"+escapeLike(s)+"%")
			like := "LIKE"
			if d == dialectPostgres {
				like = "ILIKE"
			}
			fmt.Fprintf(&b, ` AND %s %s %s ESCAPE '\'`, col, like, d.placeholder(len(args)))

		default:
			return "", nil, eris.Errorf("%s: unsupported operator %s", d, p.Op)
		}
	}
	return b.String(), args, nil
}

func (d dialect) limit(sql string, args []any, n int) (string, []any) {
	if n <= 0 {
		return sql, args
	}
	args = append(args, n)
	return sql + " LIMIT " + d.placeholder(len(args)), args
}

// escapeLike neutralizes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

const metricSelect = `SELECT m.id, m.dataset_id, m.campus, m.major, m.discipline, m.source_school, m.school_type,
	m.cohort, m.stat_name, m.stat_value_numeric, m.stat_value_text, m.unit, m.percentile,
	m.year, m.term, m.notes
FROM metric m `

func (d dialect) metricSQL(q query.MetricQuery) (string, []any, error) {
	where, args, err := d.where(metricColumns, q.Predicates, nil)
	if err != nil {
		return "", nil, err
	}
	order := " ORDER BY m.id"
	if q.Order == query.OrderByYear {
		order = " ORDER BY m.year, m.id"
	}
	sql, args := d.limit(metricSelect+where+order, args, q.Limit)
	return sql, args, nil
}

const provenanceSelect = `SELECT m.id, m.campus, d.id, d.title, d.year, d.term, d.cohort, d.notes
FROM metric m
LEFT JOIN dataset d ON d.id = m.dataset_id `

func (d dialect) provenanceSQL(preds []query.Predicate, limit int) (string, []any, error) {
	where, args, err := d.where(metricColumns, preds, nil)
	if err != nil {
		return "", nil, err
	}
	sql, args := d.limit(provenanceSelect+where+" ORDER BY m.id", args, limit)
	return sql, args, nil
}

func (d dialect) citationSQL(metricIDs []int64) (string, []any, error) {
	ids := make([]any, len(metricIDs))
	for i, id := range metricIDs {
		ids[i] = id
	}
	pred := query.Predicate{Column: colMetricID, Op: query.OpIn, Value: ids}
	where, args, err := d.where(citationColumns, []query.Predicate{pred}, nil)
	if err != nil {
		return "", nil, err
	}
	return `SELECT metric_id, title, publisher, year, source_url, interpretation_note
FROM citation ` + where + " ORDER BY id", args, nil
}

func (d dialect) sourceSchoolSQL(preds []query.Predicate, limit int) (string, []any, error) {
	where, args, err := d.where(sourceSchoolColumns, preds, nil)
	if err != nil {
		return "", nil, err
	}
	sql, args := d.limit("SELECT name, school_type, city, state FROM source_school "+where+" ORDER BY name, id", args, limit)
	return sql, args, nil
}

func (d dialect) campusSQL(preds []query.Predicate) (string, []any, error) {
	where, args, err := d.where(campusColumns, preds, nil)
	if err != nil {
		return "", nil, err
	}
	return "SELECT id, name, system FROM campus " + where + " ORDER BY name", args, nil
}

func (d dialect) majorSQL(preds []query.Predicate) (string, []any, error) {
	where, args, err := d.where(majorColumns, preds, nil)
	if err != nil {
		return "", nil, err
	}
	return `SELECT mj.id, mj.campus_id, c.name, mj.name, mj.cip_code, mj.is_impacted
FROM major mj
JOIN campus c ON c.id = mj.campus_id ` + where + " ORDER BY c.name, mj.name", args, nil
}

func (d dialect) datasetSQL(preds []query.Predicate) (string, []any, error) {
	where, args, err := d.where(datasetColumns, preds, nil)
	if err != nil {
		return "", nil, err
	}
	return "SELECT id, title, year, term, cohort, notes FROM dataset " + where + " ORDER BY year DESC, id", args, nil
}

// scanner is satisfied by both pgx.Rows and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

type rowIter interface {
	scanner
	Next() bool
	Err() error
}

func collect[T any](rows rowIter, scan func(scanner) (T, error)) ([]T, error) {
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanMetric(sc scanner) (model.Metric, error) {
	var (
		m          model.Metric
		schoolType *string
		cohort     string
	)
	err := sc.Scan(
		&m.ID, &m.DatasetID, &m.Campus, &m.Major, &m.Discipline, &m.SourceSchool, &schoolType,
		&cohort, &m.StatName, &m.StatValueNumeric, &m.StatValueText, &m.Unit, &m.Percentile,
		&m.Year, &m.Term, &m.Notes,
	)
	if err != nil {
		return model.Metric{}, err
	}
	m.Cohort = model.Cohort(cohort)
	if schoolType != nil {
		st := model.SchoolType(*schoolType)
		m.SchoolType = &st
	}
	return m, nil
}

type citationRow struct {
	metricID int64
	citation model.Citation
}

func scanCitation(sc scanner) (citationRow, error) {
	var r citationRow
	c := &r.citation
	err := sc.Scan(&r.metricID, &c.Title, &c.Publisher, &c.Year, &c.SourceURL, &c.InterpretationNote)
	return r, err
}

func groupCitations(rows []citationRow) map[int64][]model.Citation {
	out := make(map[int64][]model.Citation)
	for _, r := range rows {
		out[r.metricID] = append(out[r.metricID], r.citation)
	}
	return out
}

// citationsFor never returns nil so metrics always encode a citations array.
func citationsFor(byMetric map[int64][]model.Citation, id int64) []model.Citation {
	if c, ok := byMetric[id]; ok {
		return c
	}
	return []model.Citation{}
}

func scanProvenance(sc scanner) (model.ProvenanceRow, error) {
	var (
		r      model.ProvenanceRow
		dsID   *int64
		title  *string
		year   *int
		term   *string
		cohort *string
		notes  *string
	)
	if err := sc.Scan(&r.MetricID, &r.Campus, &dsID, &title, &year, &term, &cohort, &notes); err != nil {
		return model.ProvenanceRow{}, err
	}
	if dsID != nil {
		ds := &model.Dataset{ID: *dsID, Term: term, Notes: notes}
		if title != nil {
			ds.Title = *title
		}
		if year != nil {
			ds.Year = *year
		}
		if cohort != nil {
			ds.Cohort = model.Cohort(*cohort)
		}
		r.Dataset = ds
	}
	return r, nil
}

func scanSourceSchool(sc scanner) (model.SourceSchool, error) {
	var (
		s  model.SourceSchool
		st string
	)
	err := sc.Scan(&s.Name, &st, &s.City, &s.State)
	s.SchoolType = model.SchoolType(st)
	return s, err
}

func scanCampus(sc scanner) (model.Campus, error) {
	var c model.Campus
	err := sc.Scan(&c.ID, &c.Name, &c.System)
	return c, err
}

func scanMajor(sc scanner) (model.Major, error) {
	var m model.Major
	err := sc.Scan(&m.ID, &m.CampusID, &m.Campus, &m.Name, &m.CIPCode, &m.IsImpacted)
	return m, err
}

func scanDataset(sc scanner) (model.Dataset, error) {
	var (
		d      model.Dataset
		cohort string
	)
	err := sc.Scan(&d.ID, &d.Title, &d.Year, &d.Term, &cohort, &d.Notes)
	d.Cohort = model.Cohort(cohort)
	return d, err
}

func metricIDs(metrics []model.Metric) []int64 {
	ids := make([]int64, len(metrics))
	for i, m := range metrics {
		ids[i] = m.ID
	}
	return ids
}

func provenanceIDs(rows []model.ProvenanceRow) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.MetricID
	}
	return ids
}
