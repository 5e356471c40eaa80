package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sells-group/scholarpath/internal/fetchstate"
	"github.com/sells-group/scholarpath/internal/model"
)

// Disciplines are the freshman focus options.
var Disciplines = []string{
	"Arts & Humanities",
	"Business",
	"Engineering",
	"Life Sciences",
	"Physical Sciences",
	"Social Sciences",
}

var cohorts = []model.Cohort{model.CohortTransfer, model.CohortFreshman}

type field int

const (
	fieldCampus field = iota
	fieldCohort
	fieldFocus
	fieldYears
	fieldCount
)

func (f field) label() string {
	return [...]string{"Campus", "Cohort", "Major", "Years"}[f]
}

type campusesMsg struct {
	campuses []model.Campus
	err      error
}

type majorsMsg struct {
	campus string
	majors []model.Major
	err    error
}

type evidenceMsg struct {
	ticket fetchstate.Ticket
	ev     Evidence
	err    error
}

// Planner is the dashboard: selectors, year toggles, KPI cards and the
// metrics table, with the evidence drawer overlaid when open.
type Planner struct {
	backend Backend
	ctx     context.Context
	now     func() time.Time

	campuses []string
	campus   int
	cohort   int
	focus    []string
	focusIdx int
	years    []int
	yearIdx  int
	selected []int
	active   field

	evidence   *fetchstate.Tracker[Evidence]
	drawerOpen bool
	loadErr    error
}

// NewPlanner creates a Planner. years are the toggle options.
func NewPlanner(ctx context.Context, b Backend, years []int, now func() time.Time) Planner {
	if now == nil {
		now = time.Now
	}
	return Planner{
		backend:  b,
		ctx:      ctx,
		now:      now,
		years:    years,
		evidence: fetchstate.New[Evidence](),
	}
}

// DefaultYears returns the five academic years before now.
func DefaultYears(now time.Time) []int {
	years := make([]int, 0, 5)
	for y := now.Year() - 1; y >= now.Year()-5; y-- {
		years = append(years, y)
	}
	return years
}

// Selection returns the current selection.
func (p Planner) Selection() Selection {
	sel := Selection{Cohort: cohorts[p.cohort], Years: p.selected}
	if p.campus < len(p.campuses) {
		sel.Campus = p.campuses[p.campus]
	}
	if p.focusIdx < len(p.focus) {
		sel.Focus = p.focus[p.focusIdx]
	}
	return sel
}

// DrawerOpen reports whether the evidence drawer is shown.
func (p Planner) DrawerOpen() bool { return p.drawerOpen }

// Evidence returns the state of the current evidence fetch.
func (p Planner) Evidence() fetchstate.State[Evidence] { return p.evidence.State() }

// Init loads the campus list.
func (p Planner) Init() tea.Cmd {
	b, ctx := p.backend, p.ctx
	return func() tea.Msg {
		campuses, err := b.ListCampuses(ctx, "")
		return campusesMsg{campuses: campuses, err: err}
	}
}

// Update implements tea.Model.
func (p Planner) Update(msg tea.Msg) (Planner, tea.Cmd) {
	switch msg := msg.(type) {
	case campusesMsg:
		if msg.err != nil {
			p.loadErr = msg.err
			return p, nil
		}
		p.campuses = make([]string, 0, len(msg.campuses))
		for _, c := range msg.campuses {
			p.campuses = append(p.campuses, c.Name)
		}
		p.campus = 0
		return p, p.refreshFocus()

	case majorsMsg:
		if msg.campus != p.Selection().Campus || cohorts[p.cohort] != model.CohortTransfer {
			return p, nil
		}
		if msg.err != nil {
			p.loadErr = msg.err
			return p, nil
		}
		p.focus = make([]string, 0, len(msg.majors))
		for _, m := range msg.majors {
			if m.Campus == msg.campus {
				p.focus = append(p.focus, m.Name)
			}
		}
		p.focusIdx = 0
		return p, p.fetchEvidence()

	case evidenceMsg:
		p.evidence.Resolve(msg.ticket, msg.ev, msg.err)
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p Planner) handleKey(msg tea.KeyMsg) (Planner, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		p.active = (p.active + 1) % fieldCount
	case "shift+tab", "up":
		p.active = (p.active + fieldCount - 1) % fieldCount
	case "right", "l":
		return p.step(1)
	case "left", "h":
		return p.step(-1)
	case " ", "enter":
		if p.active == fieldYears && p.yearIdx < len(p.years) {
			p.selected = ToggleYear(p.selected, p.years[p.yearIdx])
			return p, p.fetchEvidence()
		}
	case "e":
		p.drawerOpen = !p.drawerOpen
	case "esc":
		p.drawerOpen = false
	}
	return p, nil
}

// step moves the active selector by delta.
func (p Planner) step(delta int) (Planner, tea.Cmd) {
	switch p.active {
	case fieldCampus:
		if len(p.campuses) == 0 {
			return p, nil
		}
		p.campus = wrap(p.campus+delta, len(p.campuses))
		return p, p.refreshFocus()
	case fieldCohort:
		p.cohort = wrap(p.cohort+delta, len(cohorts))
		return p, p.refreshFocus()
	case fieldFocus:
		if len(p.focus) == 0 {
			return p, nil
		}
		p.focusIdx = wrap(p.focusIdx+delta, len(p.focus))
		return p, p.fetchEvidence()
	case fieldYears:
		if len(p.years) > 0 {
			p.yearIdx = wrap(p.yearIdx+delta, len(p.years))
		}
	}
	return p, nil
}

// refreshFocus reloads the focus options after a campus or cohort change.
func (p *Planner) refreshFocus() tea.Cmd {
	p.focusIdx = 0
	if cohorts[p.cohort] == model.CohortFreshman {
		p.focus = append([]string(nil), Disciplines...)
		return p.fetchEvidence()
	}

	p.focus = nil
	campus := p.Selection().Campus
	idle := p.fetchEvidence()
	if campus == "" {
		return idle
	}
	b, ctx := p.backend, p.ctx
	return tea.Batch(idle, func() tea.Msg {
		majors, err := b.ListMajors(ctx, campus, "")
		return majorsMsg{campus: campus, majors: majors, err: err}
	})
}

// fetchEvidence starts loading evidence for the current selection. Any
// in-flight load is superseded; an incomplete selection goes idle.
func (p *Planner) fetchEvidence() tea.Cmd {
	sel := p.Selection()
	ticket, ok := p.evidence.Begin(sel.Key())
	if !ok {
		return nil
	}
	b, ctx := p.backend, p.ctx
	return func() tea.Msg {
		ev, err := LoadEvidence(ctx, b, sel)
		return evidenceMsg{ticket: ticket, ev: ev, err: err}
	}
}

// View implements tea.Model.
func (p Planner) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ScholarPath Planner"))
	b.WriteString("\n\n")

	if p.loadErr != nil {
		b.WriteString(errorStyle.Render("Unable to load options: " + p.loadErr.Error()))
		b.WriteString("\n\n")
	}

	sel := p.Selection()
	focusLabel := "Major"
	if sel.Cohort == model.CohortFreshman {
		focusLabel = "Discipline"
	}
	b.WriteString(p.selector(fieldCampus, "Campus", orDash(sel.Campus)))
	b.WriteString(p.selector(fieldCohort, "Cohort", string(sel.Cohort)))
	b.WriteString(p.selector(fieldFocus, focusLabel, orDash(sel.Focus)))
	b.WriteString(p.yearToggles())
	b.WriteString("\n")

	state := p.evidence.State()
	var metrics []model.Metric
	if state.Data.Profile != nil {
		metrics = state.Data.Profile.Metrics
	}

	cards := make([]string, 0, len(kpiStats))
	for _, k := range KPIs(metrics) {
		cards = append(cards, cardStyle.Render(mutedStyle.Render(k.Label)+"\n"+titleStyle.Render(k.Value)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n")

	switch {
	case state.IsLoading():
		b.WriteString(mutedStyle.Render("Loading…"))
	case state.Err != nil:
		b.WriteString(errorStyle.Render(EvidenceError))
	case state.Data.NoData:
		b.WriteString(mutedStyle.Render("No data for this selection."))
	default:
		b.WriteString(metricsTable(metrics))
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("tab: next field · ←/→: change · space: toggle year · e: evidence · /: search · q: quit"))

	page := b.String()
	if !p.drawerOpen {
		return page
	}
	drawer := RenderDrawer(sel, state.Data, state.IsLoading(), state.Err, p.now())
	return lipgloss.JoinHorizontal(lipgloss.Top, page, "  ", drawer)
}

func (p Planner) selector(f field, label, value string) string {
	line := fmt.Sprintf("%-10s ‹ %s ›", label, value)
	if p.active == f {
		return activeStyle.Render("▸ "+line) + "\n"
	}
	return "  " + line + "\n"
}

func (p Planner) yearToggles() string {
	parts := make([]string, 0, len(p.years))
	for i, y := range p.years {
		label := fmt.Sprintf(" %d ", y)
		if containsInt(p.selected, y) {
			label = selectedStyle.Render(label)
		}
		if p.active == fieldYears && i == p.yearIdx {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	prefix := "  "
	if p.active == fieldYears {
		prefix = activeStyle.Render("▸ ")
	}
	return prefix + fmt.Sprintf("%-10s ", "Years") + strings.Join(parts, " ") + "\n"
}

func metricsTable(metrics []model.Metric) string {
	if len(metrics) == 0 {
		return mutedStyle.Render("Select a campus, cohort and major to see metrics.")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%-6s %-6s %-14s %-10s %-8s %s", "Year", "Term", "Stat", "Value", "Unit", "Source school")))
	b.WriteString("\n")
	for _, m := range metrics {
		b.WriteString(fmt.Sprintf("%-6d %-6s %-14s %-10s %-8s %s\n",
			m.Year, m.Term, m.StatName, FormatValue(m), orNA(m.Unit), orNA(m.SourceSchool)))
	}
	return b.String()
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
