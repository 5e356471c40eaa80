package model

// Cohort identifies the applicant category a statistic describes.
type Cohort string

const (
	CohortTransfer Cohort = "transfer"
	CohortFreshman Cohort = "freshman"
)

// Valid reports whether c is a known cohort.
func (c Cohort) Valid() bool {
	return c == CohortTransfer || c == CohortFreshman
}

// SchoolType classifies a feeder institution.
type SchoolType string

const (
	SchoolTypeHighSchool       SchoolType = "HighSchool"
	SchoolTypeCommunityCollege SchoolType = "CommunityCollege"
	SchoolTypeOther            SchoolType = "Other"
)

// Citation is bibliographic evidence backing a metric value.
type Citation struct {
	Title              string  `json:"title" yaml:"title"`
	Publisher          string  `json:"publisher" yaml:"publisher"`
	Year               int     `json:"year" yaml:"year"`
	SourceURL          string  `json:"source_url" yaml:"source_url"`
	InterpretationNote *string `json:"interpretation_note" yaml:"interpretation_note"`
}

// Metric is one named statistic for a campus/cohort/year/term and an
// optional major, discipline, or source school. Exactly one of
// StatValueNumeric and StatValueText is expected to be set.
type Metric struct {
	ID               int64       `json:"id" yaml:"id"`
	DatasetID        *int64      `json:"dataset_id" yaml:"dataset_id"`
	Campus           string      `json:"campus" yaml:"campus"`
	Major            *string     `json:"major" yaml:"major"`
	Discipline       *string     `json:"discipline" yaml:"discipline"`
	SourceSchool     *string     `json:"source_school" yaml:"source_school"`
	SchoolType       *SchoolType `json:"school_type" yaml:"school_type"`
	Cohort           Cohort      `json:"cohort" yaml:"cohort"`
	StatName         string      `json:"stat_name" yaml:"stat_name"`
	StatValueNumeric *float64    `json:"stat_value_numeric" yaml:"stat_value_numeric"`
	StatValueText    *string     `json:"stat_value_text" yaml:"stat_value_text"`
	Unit             *string     `json:"unit" yaml:"unit"`
	Percentile       *string     `json:"percentile" yaml:"percentile"`
	Year             int         `json:"year" yaml:"year"`
	Term             string      `json:"term" yaml:"term"`
	Notes            *string     `json:"notes" yaml:"notes"`
	Citations        []Citation  `json:"citations" yaml:"citations"`
}

// PageInfo carries the keyset cursor for the next page, if any.
type PageInfo struct {
	NextCursor *string `json:"next_cursor"`
}

// MetricPage is one page of a metric listing.
type MetricPage struct {
	Items    []Metric `json:"items"`
	PageInfo PageInfo `json:"page_info"`
}

// Profile is the admissions profile of a campus for one cohort and
// major (transfer) or discipline (freshman).
type Profile struct {
	Campus     string   `json:"campus"`
	Cohort     Cohort   `json:"cohort"`
	Major      *string  `json:"major"`
	Discipline *string  `json:"discipline"`
	Years      []int    `json:"years"`
	Metrics    []Metric `json:"metrics"`
}
