// Package export writes metric listings as CSV or XLSX.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/scholarpath/internal/model"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", eris.Errorf("export: unknown format %q (want csv or xlsx)", s)
	}
}

// Header is the column order of every export.
var Header = []string{
	"id", "dataset_id", "campus", "major", "discipline", "source_school", "school_type",
	"cohort", "stat_name", "stat_value_numeric", "stat_value_text", "unit", "percentile",
	"year", "term", "notes", "citations",
}

// Row renders m in Header order. Null fields are empty and citations are
// joined as "title (url)" separated by "; ".
func Row(m model.Metric) []string {
	return []string{
		strconv.FormatInt(m.ID, 10),
		optInt(m.DatasetID),
		m.Campus,
		opt(m.Major),
		opt(m.Discipline),
		opt(m.SourceSchool),
		optSchoolType(m.SchoolType),
		string(m.Cohort),
		m.StatName,
		optFloat(m.StatValueNumeric),
		opt(m.StatValueText),
		opt(m.Unit),
		opt(m.Percentile),
		strconv.Itoa(m.Year),
		m.Term,
		opt(m.Notes),
		citations(m.Citations),
	}
}

// Writer receives metrics one at a time. Close flushes the output.
type Writer interface {
	Write(m model.Metric) error
	Close() error
}

// New returns a Writer for format that writes to w.
func New(format Format, w io.Writer) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSV(w), nil
	case FormatXLSX:
		return NewXLSX(w, "metrics")
	default:
		return nil, eris.Errorf("export: unknown format %q", format)
	}
}

// CSVWriter streams rows as they arrive.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSV creates a CSVWriter.
func NewCSV(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (c *CSVWriter) header() error {
	if c.wroteHeader {
		return nil
	}
	c.wroteHeader = true
	if err := c.w.Write(Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	return nil
}

// Write appends one metric.
func (c *CSVWriter) Write(m model.Metric) error {
	if err := c.header(); err != nil {
		return err
	}
	if err := c.w.Write(Row(m)); err != nil {
		return eris.Wrap(err, "export: write csv row")
	}
	return nil
}

// Close writes the header if nothing was written and flushes.
func (c *CSVWriter) Close() error {
	if err := c.header(); err != nil {
		return err
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

// XLSXWriter builds a workbook in memory and writes it on Close.
type XLSXWriter struct {
	out   io.Writer
	file  *xlsx.File
	sheet *xlsx.Sheet
}

// NewXLSX creates an XLSXWriter with one sheet and a header row.
func NewXLSX(w io.Writer, sheetName string) (*XLSXWriter, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}
	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetString(h)
	}
	return &XLSXWriter{out: w, file: f, sheet: sheet}, nil
}

// Write appends one metric. id, dataset_id, year and the numeric value
// are stored as numbers.
func (x *XLSXWriter) Write(m model.Metric) error {
	row := x.sheet.AddRow()
	for i, v := range Row(m) {
		cell := row.AddCell()
		switch Header[i] {
		case "id":
			cell.SetInt64(m.ID)
		case "dataset_id":
			if m.DatasetID != nil {
				cell.SetInt64(*m.DatasetID)
			}
		case "year":
			cell.SetInt(m.Year)
		case "stat_value_numeric":
			if m.StatValueNumeric != nil {
				cell.SetFloat(*m.StatValueNumeric)
			}
		default:
			cell.SetString(v)
		}
	}
	return nil
}

// Close encodes the workbook to the underlying writer.
func (x *XLSXWriter) Close() error {
	if err := x.file.Write(x.out); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func opt(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func optSchoolType(t *model.SchoolType) string {
	if t == nil {
		return ""
	}
	return string(*t)
}

func citations(cs []model.Citation) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		if c.SourceURL == "" {
			parts = append(parts, c.Title)
			continue
		}
		parts = append(parts, c.Title+" ("+c.SourceURL+")")
	}
	return strings.Join(parts, "; ")
}
