// Package query turns request parameters into store-neutral filter
// predicates and implements keyset pagination over metric ids.
package query

// Column names a logical attribute a predicate constrains. Stores map
// each column onto their own physical schema.
type Column string

const (
	ColID           Column = "id"
	ColCampus       Column = "campus"
	ColMajor        Column = "major"
	ColDiscipline   Column = "discipline"
	ColCohort       Column = "cohort"
	ColStatName     Column = "stat_name"
	ColSourceSchool Column = "source_school"
	ColSchoolType   Column = "school_type"
	ColYear         Column = "year"
	ColName         Column = "name"
	ColSystem       Column = "system"
)

// Op is a predicate comparison operator.
type Op int

const (
	OpEq Op = iota
	OpGt
	OpGte
	OpLte
	OpIn
	// OpContains is a case-insensitive substring match.
	OpContains
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpLte:
		return "lte"
	case OpIn:
		return "in"
	case OpContains:
		return "contains"
	default:
		return "unknown"
	}
}

// Predicate is a single constraint. For OpIn, Value holds a []any of
// candidates; for every other operator it holds one scalar.
type Predicate struct {
	Column Column
	Op     Op
	Value  any
}

// Eq returns an equality predicate.
func Eq(col Column, v any) Predicate { return Predicate{Column: col, Op: OpEq, Value: v} }

// Gt returns a strict lower-bound predicate.
func Gt(col Column, v any) Predicate { return Predicate{Column: col, Op: OpGt, Value: v} }

// Gte returns an inclusive lower-bound predicate.
func Gte(col Column, v any) Predicate { return Predicate{Column: col, Op: OpGte, Value: v} }

// Lte returns an inclusive upper-bound predicate.
func Lte(col Column, v any) Predicate { return Predicate{Column: col, Op: OpLte, Value: v} }

// Contains returns a case-insensitive substring predicate.
func Contains(col Column, s string) Predicate {
	return Predicate{Column: col, Op: OpContains, Value: s}
}

// In returns a set-membership predicate over ints.
func In(col Column, vals []int) Predicate {
	set := make([]any, len(vals))
	for i, v := range vals {
		set[i] = v
	}
	return Predicate{Column: col, Op: OpIn, Value: set}
}

// Order selects the sort key of a metric query.
type Order int

const (
	// OrderByID sorts ascending by id; keyset pagination requires it.
	OrderByID Order = iota
	// OrderByYear sorts ascending by year, ties broken by id.
	OrderByYear
)

// MetricQuery is a fully composed metric read: the AND of Predicates,
// sorted by Order, returning at most Limit rows (0 means unbounded).
type MetricQuery struct {
	Predicates []Predicate
	Order      Order
	Limit      int
}
