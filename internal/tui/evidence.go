// Package tui renders the ScholarPath planner, evidence drawer and
// source-school search in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/scholarpath/internal/model"
	"github.com/sells-group/scholarpath/pkg/scholarapi"
)

// Backend is the subset of the API client the views use.
type Backend interface {
	GetProfile(ctx context.Context, p scholarapi.ProfileParams) (*model.Profile, error)
	GetProvenance(ctx context.Context, campus string, year *int) ([]model.ProvenanceBundle, error)
	SearchSourceSchools(ctx context.Context, search, schoolType string) ([]model.SourceSchool, error)
	ListCampuses(ctx context.Context, system string) ([]model.Campus, error)
	ListMajors(ctx context.Context, campus, search string) ([]model.Major, error)
}

// Selection is what the planner is looking at. Focus is a major for the
// transfer cohort and a discipline for freshman.
type Selection struct {
	Campus string
	Cohort model.Cohort
	Focus  string
	Years  []int
}

// Key identifies the selection for fetch tracking; it is "" when the
// selection is incomplete.
func (s Selection) Key() string {
	if s.Campus == "" || s.Focus == "" || !s.Cohort.Valid() {
		return ""
	}
	years := make([]string, len(s.Years))
	for i, y := range s.Years {
		years[i] = strconv.Itoa(y)
	}
	return strings.Join([]string{s.Campus, string(s.Cohort), s.Focus, strings.Join(years, ",")}, "|")
}

func (s Selection) profileParams() scholarapi.ProfileParams {
	p := scholarapi.ProfileParams{Cohort: s.Cohort, Campus: s.Campus, Years: s.Years}
	if s.Cohort == model.CohortTransfer {
		p.Major = s.Focus
	} else {
		p.Discipline = s.Focus
	}
	return p
}

// Evidence is everything the planner and drawer show for a selection.
// NoData is set when the API reported that no profile rows exist.
type Evidence struct {
	Profile    *model.Profile
	Provenance []model.ProvenanceBundle
	NoData     bool
}

// LoadEvidence fetches the profile and provenance for sel in parallel.
// Provenance is narrowed to the first selected year, if any.
func LoadEvidence(ctx context.Context, b Backend, sel Selection) (Evidence, error) {
	var ev Evidence
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := b.GetProfile(gctx, sel.profileParams())
		var apiErr *scholarapi.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			ev.NoData = true
			return nil
		}
		if err != nil {
			return err
		}
		ev.Profile = p
		return nil
	})

	g.Go(func() error {
		var year *int
		if len(sel.Years) > 0 {
			year = &sel.Years[0]
		}
		bundles, err := b.GetProvenance(gctx, sel.Campus, year)
		if err != nil {
			return err
		}
		ev.Provenance = bundles
		return nil
	})

	if err := g.Wait(); err != nil {
		zap.L().Warn("tui: load evidence failed", zap.String("selection", sel.Key()), zap.Error(err))
		return Evidence{}, err
	}
	return ev, nil
}

// EvidenceError is rendered in place of the drawer body when loading fails.
const EvidenceError = "Unable to load evidence right now"

// RenderDrawer renders the evidence drawer for sel.
func RenderDrawer(sel Selection, ev Evidence, loading bool, err error, now time.Time) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Evidence Drawer"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s", sel.Campus, sel.Cohort)))
	b.WriteString("\n\n")

	if loading {
		b.WriteString(mutedStyle.Render("Loading evidence…"))
		b.WriteString("\n")
	}
	if err != nil {
		b.WriteString(errorStyle.Render(EvidenceError))
		b.WriteString("\n")
	}
	if ev.NoData {
		b.WriteString(mutedStyle.Render("No profile data for this selection."))
		b.WriteString("\n")
	}

	if p := ev.Profile; p != nil {
		if IsStale(p.Metrics, now) {
			b.WriteString(warningStyle.Render(StaleWarning))
			b.WriteString("\n")
		}
		b.WriteString(mutedStyle.Render("Profile years"))
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(joinYears(p.Years)))
		b.WriteString("\n\n")

		for _, m := range p.Metrics {
			b.WriteString(mutedStyle.Render(m.StatName))
			b.WriteString("  ")
			b.WriteString(titleStyle.Render(FormatValue(m)))
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d · %s · Unit: %s", m.Year, m.Term, orNA(m.Unit))))
			b.WriteString("\n")
			for _, c := range m.Citations {
				b.WriteString(fmt.Sprintf("  %s · %s\n    %s\n", activeStyle.Render(c.Title), c.Publisher, c.SourceURL))
			}
		}
	}

	if len(ev.Provenance) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Provenance"))
		b.WriteString("\n")
		for _, bundle := range ev.Provenance {
			b.WriteString(titleStyle.Render(bundle.Dataset.Title))
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render(fmt.Sprintf("Year %d · %s", bundle.Dataset.Year, bundle.Dataset.Term)))
			b.WriteString("\n")
			for _, c := range bundle.Citations {
				b.WriteString(fmt.Sprintf("  %s (source: %s)\n", c.Title, c.SourceURL))
			}
		}
	}

	return drawerStyle.Render(b.String())
}
