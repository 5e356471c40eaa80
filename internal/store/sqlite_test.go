package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/internal/profile"
	"github.com/sells-group/scholarpath/internal/provenance"
	"github.com/sells-group/scholarpath/internal/query"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

// fixture has two campuses, one dataset, and 23 metrics: ids 1-20 are
// UC Irvine transfer Mathematics over 2020-2024, 21-23 are UCLA freshman
// Engineering 2024 with no dataset.
func fixture() model.Catalog {
	hs := model.SchoolTypeHighSchool
	cc := model.SchoolTypeCommunityCollege
	c := model.Catalog{
		Campuses: []model.Campus{
			{ID: 1, Name: "UC Irvine", System: "UC"},
			{ID: 2, Name: "UCLA", System: "UC"},
			{ID: 3, Name: "CSU Long Beach", System: "CSU"},
		},
		Majors: []model.Major{
			{ID: 1, CampusID: 1, Name: "Mathematics", CIPCode: ptr("27.0101"), IsImpacted: ptr("no")},
			{ID: 2, CampusID: 1, Name: "Computer Science", CIPCode: ptr("11.0701"), IsImpacted: ptr("yes")},
			{ID: 3, CampusID: 2, Name: "Applied Mathematics"},
		},
		SourceSchools: []model.SourceSchool{
			{Name: "Irvine Valley College", SchoolType: cc, City: ptr("Irvine"), State: ptr("CA")},
			{Name: "Irvine High School", SchoolType: hs, City: ptr("Irvine"), State: ptr("CA")},
			{Name: "Santa Ana College", SchoolType: cc, City: ptr("Santa Ana"), State: ptr("CA")},
			{Name: "100%_Prep", SchoolType: hs},
		},
		Datasets: []model.Dataset{
			{ID: 7, Title: "UC transfers by major", Year: 2024, Term: ptr("Fall"), Cohort: model.CohortTransfer},
		},
	}

	for i := 1; i <= 20; i++ {
		m := model.Metric{
			ID:               int64(i),
			DatasetID:        ptr(int64(7)),
			Campus:           "UC Irvine",
			Major:            ptr("Mathematics"),
			Cohort:           model.CohortTransfer,
			StatName:         []string{"gpa_p25", "gpa_p50", "gpa_p75", "admit_rate"}[i%4],
			StatValueNumeric: ptr(float64(i) / 10),
			Year:             2020 + i%5,
			Term:             "Fall",
		}
		if i%2 == 0 {
			m.SourceSchool = ptr("Irvine Valley College")
			m.SchoolType = &cc
		}
		if i <= 3 {
			m.Citations = []model.Citation{
				{Title: fmt.Sprintf("cite-%d-a", i), Publisher: "UCOP", Year: 2024, SourceURL: "https://example.edu/a"},
				{Title: fmt.Sprintf("cite-%d-b", i), Publisher: "UCOP", Year: 2024, SourceURL: "https://example.edu/b", InterpretationNote: ptr("median")},
			}
		}
		c.Metrics = append(c.Metrics, m)
	}
	for i := 21; i <= 23; i++ {
		c.Metrics = append(c.Metrics, model.Metric{
			ID:            int64(i),
			Campus:        "UCLA",
			Discipline:    ptr("Engineering"),
			Cohort:        model.CohortFreshman,
			StatName:      "admit_rate",
			StatValueText: ptr("9%"),
			Year:          2024,
			Term:          "Fall",
			Citations:     []model.Citation{{Title: fmt.Sprintf("ucla-%d", i), Publisher: "UCLA", Year: 2024, SourceURL: "https://ucla.edu"}},
		})
	}
	return c
}

func newLoadedSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s := newTestSQLite(t)
	require.NoError(t, s.Load(context.Background(), fixture()))
	return s
}

func TestSQLite_ListMetrics_Filters(t *testing.T) {
	s := newLoadedSQLite(t)
	ctx := context.Background()

	all, err := s.ListMetrics(ctx, query.MetricQuery{})
	require.NoError(t, err)
	require.Len(t, all, 23)
	for i, m := range all {
		assert.Equal(t, int64(i+1), m.ID)
		assert.NotNil(t, m.Citations)
	}

	got, err := s.ListMetrics(ctx, query.MetricQuery{Predicates: []query.Predicate{
		query.Eq(query.ColCampus, "UC Irvine"),
		query.Eq(query.ColStatName, "gpa_p50"),
		query.Gte(query.ColYear, 2021),
		query.Lte(query.ColYear, 2023),
	}})
	require.NoError(t, err)
	for _, m := range got {
		assert.Equal(t, "gpa_p50", m.StatName)
		assert.GreaterOrEqual(t, m.Year, 2021)
		assert.LessOrEqual(t, m.Year, 2023)
	}
	// gpa_p50 rows are i%4==1: 1,5,9,13,17 with years 2021,2020,2024,2023,2022.
	ids := make([]int64, len(got))
	for i, m := range got {
		ids[i] = m.ID
	}
	assert.Equal(t, []int64{1, 13, 17}, ids)

	typed, err := s.ListMetrics(ctx, query.MetricQuery{Predicates: []query.Predicate{
		query.Eq(query.ColSchoolType, "CommunityCollege"),
		query.Eq(query.ColSourceSchool, "Irvine Valley College"),
	}})
	require.NoError(t, err)
	assert.Len(t, typed, 10)
	require.NotNil(t, typed[0].SchoolType)
	assert.Equal(t, model.SchoolTypeCommunityCollege, *typed[0].SchoolType)
}

func TestSQLite_ListMetrics_YearAndYearsBothApply(t *testing.T) {
	s := newLoadedSQLite(t)

	preds := query.MetricFilter{Campus: "UC Irvine", Year: ptr(2024), Years: []int{2022, 2023}}.Predicates()
	got, err := s.ListMetrics(context.Background(), query.MetricQuery{Predicates: preds})
	require.NoError(t, err)
	assert.Empty(t, got)

	preds = query.MetricFilter{Campus: "UC Irvine", Year: ptr(2024), Years: []int{2024}}.Predicates()
	got, err = s.ListMetrics(context.Background(), query.MetricQuery{Predicates: preds})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestSQLite_ListMetrics_ScansAllFields(t *testing.T) {
	s := newLoadedSQLite(t)

	got, err := s.ListMetrics(context.Background(), query.MetricQuery{
		Predicates: []query.Predicate{query.In(query.ColID, []int{2, 22})},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	uci := got[0]
	assert.Equal(t, int64(2), uci.ID)
	require.NotNil(t, uci.DatasetID)
	assert.Equal(t, int64(7), *uci.DatasetID)
	assert.Equal(t, "Mathematics", *uci.Major)
	assert.Nil(t, uci.Discipline)
	assert.Equal(t, "gpa_p75", uci.StatName)
	assert.InDelta(t, 0.2, *uci.StatValueNumeric, 1e-9)
	assert.Nil(t, uci.StatValueText)
	assert.Equal(t, 2022, uci.Year)
	require.Len(t, uci.Citations, 2)
	assert.Equal(t, "cite-2-a", uci.Citations[0].Title)
	assert.Nil(t, uci.Citations[0].InterpretationNote)
	assert.Equal(t, "median", *uci.Citations[1].InterpretationNote)

	ucla := got[1]
	assert.Nil(t, ucla.DatasetID)
	assert.Equal(t, "Engineering", *ucla.Discipline)
	assert.Equal(t, "9%", *ucla.StatValueText)
	assert.Equal(t, model.CohortFreshman, ucla.Cohort)
	assert.Len(t, ucla.Citations, 1)
}

func TestSQLite_CursorWalkVisitsEveryRowOnce(t *testing.T) {
	s := newLoadedSQLite(t)
	ctx := context.Background()

	filters := []query.MetricFilter{
		{},
		{Campus: "UC Irvine"},
		{Cohort: "freshman"},
		{StatName: "admit_rate"},
	}

	for _, f := range filters {
		want, err := s.ListMetrics(ctx, query.MetricQuery{Predicates: f.Predicates()})
		require.NoError(t, err)

		for limit := 1; limit <= 8; limit++ {
			var seen []int64
			cursor := query.Cursor{}
			for pages := 0; pages < 100; pages++ {
				rows, err := s.ListMetrics(ctx, query.PageQuery(f.Predicates(), cursor, limit))
				require.NoError(t, err)
				items, next := query.Paginate(rows, limit, func(m model.Metric) int64 { return m.ID })
				assert.LessOrEqual(t, len(items), limit)
				for _, m := range items {
					seen = append(seen, m.ID)
				}
				if next == nil {
					break
				}
				cursor, err = query.ParseCursor(*next)
				require.NoError(t, err)
			}

			require.Len(t, seen, len(want), "filter %+v limit %d", f, limit)
			for i := range want {
				assert.Equal(t, want[i].ID, seen[i])
			}
		}
	}
}

func TestSQLite_ProvenanceGroupsByDataset(t *testing.T) {
	s := newLoadedSQLite(t)

	f := query.ProvenanceFilter{Campus: "UC Irvine", Year: ptr(2021)}
	rows, err := s.ListProvenanceRows(context.Background(), f.Predicates(), provenance.MaxRows)
	require.NoError(t, err)
	// year 2021 rows: i%5==1 → 1, 6, 11, 16
	require.Len(t, rows, 4)
	require.NotNil(t, rows[0].Dataset)
	assert.Equal(t, "Fall", *rows[0].Dataset.Term)
	assert.Len(t, rows[0].Citations, 2)
	assert.Empty(t, rows[1].Citations)

	bundles := provenance.Aggregate(rows)
	require.Len(t, bundles, 1)
	assert.Equal(t, int64(7), bundles[0].Dataset.ID)
	assert.Equal(t, "Fall", bundles[0].Dataset.Term)
	assert.Len(t, bundles[0].Citations, 2)
}

func TestSQLite_ProvenanceRespectsRowCap(t *testing.T) {
	s := newLoadedSQLite(t)

	rows, err := s.ListProvenanceRows(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	ucla, err := s.ListProvenanceRows(context.Background(), []query.Predicate{query.Eq(query.ColCampus, "UCLA")}, provenance.MaxRows)
	require.NoError(t, err)
	require.Len(t, ucla, 3)
	assert.Nil(t, ucla[0].Dataset)
	assert.Empty(t, provenance.Aggregate(ucla))
}

func TestSQLite_ProfileAssembly(t *testing.T) {
	s := newLoadedSQLite(t)
	svc := profile.NewService(s)

	p, err := svc.Assemble(context.Background(), profile.Request{
		Campus: "UC Irvine",
		Cohort: model.CohortTransfer,
		Major:  "Mathematics",
		Years:  []int{2023, 2021},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2023}, p.Years)
	for i := 1; i < len(p.Metrics); i++ {
		assert.LessOrEqual(t, p.Metrics[i-1].Year, p.Metrics[i].Year)
	}

	_, err = svc.Assemble(context.Background(), profile.Request{
		Campus: "UC Irvine", Cohort: model.CohortTransfer, Major: "Basket Weaving",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No profile data found")
}

func TestSQLite_SourceSchools(t *testing.T) {
	s := newLoadedSQLite(t)
	ctx := context.Background()

	got, err := s.ListSourceSchools(ctx, query.SourceSchoolFilter{Search: "IRVINE"}.Predicates(), SourceSchoolLimit)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Irvine High School", got[0].Name)
	assert.Equal(t, "Irvine Valley College", got[1].Name)

	cc, err := s.ListSourceSchools(ctx, query.SourceSchoolFilter{Type: "CommunityCollege"}.Predicates(), SourceSchoolLimit)
	require.NoError(t, err)
	assert.Len(t, cc, 2)

	literal, err := s.ListSourceSchools(ctx, query.SourceSchoolFilter{Search: "%_"}.Predicates(), SourceSchoolLimit)
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "100%_Prep", literal[0].Name)
	assert.Nil(t, literal[0].City)

	capped, err := s.ListSourceSchools(ctx, nil, 3)
	require.NoError(t, err)
	assert.Len(t, capped, 3)
}

func TestSQLite_Lookups(t *testing.T) {
	s := newLoadedSQLite(t)
	ctx := context.Background()

	uc, err := s.ListCampuses(ctx, query.CampusFilter{System: "UC"}.Predicates())
	require.NoError(t, err)
	require.Len(t, uc, 2)
	assert.Equal(t, "UC Irvine", uc[0].Name)

	majors, err := s.ListMajors(ctx, query.MajorFilter{Campus: "irvine", Search: "math"}.Predicates())
	require.NoError(t, err)
	require.Len(t, majors, 1)
	assert.Equal(t, "UC Irvine", majors[0].Campus)
	assert.Equal(t, "27.0101", *majors[0].CIPCode)

	allMath, err := s.ListMajors(ctx, query.MajorFilter{Search: "Mathematics"}.Predicates())
	require.NoError(t, err)
	assert.Len(t, allMath, 2)

	ds, err := s.ListDatasets(ctx, query.DatasetFilter{Cohort: "transfer", Year: ptr(2024)}.Predicates())
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "UC transfers by major", ds[0].Title)

	none, err := s.ListDatasets(ctx, query.DatasetFilter{Cohort: "freshman"}.Predicates())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSQLite_UnfilterableColumn(t *testing.T) {
	s := newLoadedSQLite(t)

	_, err := s.ListCampuses(context.Background(), []query.Predicate{query.Eq(query.ColYear, 2024)})
	require.Error(t, err)
}

func TestSQLite_LoadIsAtomic(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	bad := fixture()
	bad.Majors = append(bad.Majors, model.Major{ID: 9, CampusID: 1, Name: "Mathematics"})
	require.Error(t, s.Load(ctx, bad))

	campuses, err := s.ListCampuses(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, campuses)
}

func TestSQLite_Ping(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Ping(context.Background()))
}
