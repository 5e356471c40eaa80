package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/scholarpath/internal/model"
)

// NotAvailable is rendered for missing values.
const NotAvailable = "N/A"

// StaleWarning is shown when evidence is more than three years old.
const StaleWarning = "Warning: Some evidence is older than three years."

// FormatPercent renders a rate as a percentage. Values at or below 1 are
// treated as fractions.
func FormatPercent(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	pct := *v
	if pct <= 1 {
		pct *= 100
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatGPA renders a GPA to two decimals.
func FormatGPA(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", *v)
}

// FormatValue renders a metric's numeric or text value.
func FormatValue(m model.Metric) string {
	switch {
	case m.StatValueNumeric != nil:
		return strconv.FormatFloat(*m.StatValueNumeric, 'f', -1, 64)
	case m.StatValueText != nil:
		return *m.StatValueText
	default:
		return "—"
	}
}

// KPI is one dashboard card.
type KPI struct {
	Label string
	Value string
}

// kpiStats are the card stat names in display order.
var kpiStats = []struct {
	stat   string
	label  string
	format func(*float64) string
}{
	{"admit_rate", "Admit rate", FormatPercent},
	{"gpa_p25", "GPA p25", FormatGPA},
	{"gpa_p50", "GPA p50", FormatGPA},
	{"gpa_p75", "GPA p75", FormatGPA},
}

// KPIs picks, for each card, the campus-wide metric (no source school)
// from the latest year; later rows win ties.
func KPIs(metrics []model.Metric) []KPI {
	out := make([]KPI, 0, len(kpiStats))
	for _, k := range kpiStats {
		var best *model.Metric
		for i := range metrics {
			m := &metrics[i]
			if m.StatName != k.stat || m.SourceSchool != nil {
				continue
			}
			if best == nil || m.Year >= best.Year {
				best = m
			}
		}
		var v *float64
		if best != nil {
			v = best.StatValueNumeric
		}
		out = append(out, KPI{Label: k.label, Value: k.format(v)})
	}
	return out
}

// IsStale reports whether any metric is from current year - 3 or earlier.
func IsStale(metrics []model.Metric, now time.Time) bool {
	cutoff := now.Year() - 3
	for _, m := range metrics {
		if m.Year <= cutoff {
			return true
		}
	}
	return false
}

// ToggleYear adds year to selected, or removes it if present. Order of
// selection is kept.
func ToggleYear(selected []int, year int) []int {
	out := make([]int, 0, len(selected)+1)
	found := false
	for _, y := range selected {
		if y == year {
			found = true
			continue
		}
		out = append(out, y)
	}
	if !found {
		out = append(out, year)
	}
	return out
}

func joinYears(years []int) string {
	if len(years) == 0 {
		return "n/a"
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ", ")
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "n/a"
	}
	return *s
}
