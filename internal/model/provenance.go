package model

// ProvenanceRow is a metric joined with its dataset (if linked) and its
// citations, as read from the store before grouping.
type ProvenanceRow struct {
	MetricID  int64
	Campus    string
	Dataset   *Dataset
	Citations []Citation
}

// BundleDataset is the dataset header of a provenance bundle. Term is
// always populated; an absent term is reported as "N/A".
type BundleDataset struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Year   int     `json:"year"`
	Term   string  `json:"term"`
	Cohort Cohort  `json:"cohort"`
	Notes  *string `json:"notes"`
}

// ProvenanceBundle groups every citation reachable from one dataset.
type ProvenanceBundle struct {
	Dataset   BundleDataset `json:"dataset"`
	Campus    string        `json:"campus"`
	Citations []Citation    `json:"citations"`
}
