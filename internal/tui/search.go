package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sells-group/scholarpath/internal/fetchstate"
	"github.com/sells-group/scholarpath/internal/model"
)

// SchoolTypes are the search filter options.
var SchoolTypes = []model.SchoolType{model.SchoolTypeHighSchool, model.SchoolTypeCommunityCollege}

// SearchHint is shown before the first search and when nothing matched.
const SearchHint = "Use the search bar to look up a secondary school."

type schoolsMsg struct {
	ticket  fetchstate.Ticket
	schools []model.SourceSchool
	err     error
}

// Search is the source-school search page.
type Search struct {
	backend Backend
	ctx     context.Context

	query    string
	typeIdx  int
	results  *fetchstate.Tracker[[]model.SourceSchool]
	searches int
}

// NewSearch creates a Search page.
func NewSearch(ctx context.Context, b Backend) Search {
	return Search{backend: b, ctx: ctx, results: fetchstate.New[[]model.SourceSchool]()}
}

// Query returns the text typed so far.
func (s Search) Query() string { return s.query }

// SchoolType returns the selected type filter.
func (s Search) SchoolType() model.SchoolType { return SchoolTypes[s.typeIdx] }

// Results returns the state of the current search.
func (s Search) Results() fetchstate.State[[]model.SourceSchool] { return s.results.State() }

// SetQuery replaces the query text.
func (s Search) SetQuery(q string) Search {
	s.query = q
	return s
}

// Submit runs the search for the current query and type.
func (s Search) Submit() (Search, tea.Cmd) {
	s.searches++
	key := fmt.Sprintf("%d|%s|%s", s.searches, s.SchoolType(), s.query)
	ticket, _ := s.results.Begin(key)
	b, ctx, q, typ := s.backend, s.ctx, s.query, string(s.SchoolType())
	return s, func() tea.Msg {
		schools, err := b.SearchSourceSchools(ctx, q, typ)
		return schoolsMsg{ticket: ticket, schools: schools, err: err}
	}
}

// Update handles typing, type toggling and search results.
func (s Search) Update(msg tea.Msg) (Search, tea.Cmd) {
	switch msg := msg.(type) {
	case schoolsMsg:
		s.results.Resolve(msg.ticket, msg.schools, msg.err)
		return s, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			return s.Submit()
		case tea.KeyTab:
			s.typeIdx = (s.typeIdx + 1) % len(SchoolTypes)
		case tea.KeyBackspace:
			if r := []rune(s.query); len(r) > 0 {
				s.query = string(r[:len(r)-1])
			}
		case tea.KeyRunes, tea.KeySpace:
			s.query += string(msg.Runes)
		}
	}
	return s, nil
}

// View renders the page.
func (s Search) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Source School Search"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Find HS/CCC partners and pull campus medians."))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Search: %s▏   Type: %s\n\n", s.query, activeStyle.Render(spaced(string(s.SchoolType())))))

	state := s.results.State()
	switch {
	case state.IsLoading():
		b.WriteString(mutedStyle.Render("Searching…"))
		b.WriteString("\n")
	case state.Err != nil:
		b.WriteString(errorStyle.Render("Search failed: " + state.Err.Error()))
		b.WriteString("\n")
	case len(state.Data) == 0:
		b.WriteString(mutedStyle.Render(SearchHint))
		b.WriteString("\n")
	default:
		for _, school := range state.Data {
			b.WriteString(RenderSchool(school))
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter: search · tab: school type · esc: planner · ctrl+c: quit"))
	return b.String()
}

// RenderSchool renders one search result.
func RenderSchool(s model.SourceSchool) string {
	return fmt.Sprintf("%s\n%s\n%s\n\n",
		titleStyle.Render(s.Name),
		mutedStyle.Render(fmt.Sprintf("%s, %s", orNA(s.City), orNA(s.State))),
		mutedStyle.Render("Type: "+string(s.SchoolType)),
	)
}

// spaced inserts spaces before inner capitals: "HighSchool" → "High School".
func spaced(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
