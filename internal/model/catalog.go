package model

// Dataset is one ingested batch of metrics.
type Dataset struct {
	ID     int64   `json:"id" yaml:"id"`
	Title  string  `json:"title" yaml:"title"`
	Year   int     `json:"year" yaml:"year"`
	Term   *string `json:"term" yaml:"term"`
	Cohort Cohort  `json:"cohort" yaml:"cohort"`
	Notes  *string `json:"notes" yaml:"notes"`
}

// SourceSchool is a feeder high school or community college.
type SourceSchool struct {
	Name       string     `json:"name" yaml:"name"`
	SchoolType SchoolType `json:"school_type" yaml:"school_type"`
	City       *string    `json:"city" yaml:"city"`
	State      *string    `json:"state" yaml:"state"`
}

// Campus is a UC or CSU campus.
type Campus struct {
	ID     int64  `json:"-" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	System string `json:"system" yaml:"system"`
}

// Major is an undergraduate program offered by a campus.
type Major struct {
	ID         int64   `json:"id" yaml:"id"`
	CampusID   int64   `json:"-" yaml:"campus_id"`
	Campus     string  `json:"campus" yaml:"campus"`
	Name       string  `json:"name" yaml:"name"`
	CIPCode    *string `json:"cip_code" yaml:"cip_code"`
	IsImpacted *string `json:"is_impacted" yaml:"is_impacted"`
}

// Catalog is a complete set of reference and fact rows, used to load a
// store from a seed file.
type Catalog struct {
	Campuses      []Campus       `yaml:"campuses"`
	Majors        []Major        `yaml:"majors"`
	SourceSchools []SourceSchool `yaml:"source_schools"`
	Datasets      []Dataset      `yaml:"datasets"`
	Metrics       []Metric       `yaml:"metrics"`
}
