package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
)

// Page selects the view an App shows.
type Page int

const (
	PagePlanner Page = iota
	PageSearch
)

// App switches between the planner and the search page.
type App struct {
	page    Page
	planner Planner
	search  Search
	width   int
}

// NewApp creates an App starting on page.
func NewApp(ctx context.Context, b Backend, page Page, now func() time.Time) App {
	if now == nil {
		now = time.Now
	}
	return App{
		page:    page,
		planner: NewPlanner(ctx, b, DefaultYears(now()), now),
		search:  NewSearch(ctx, b),
	}
}

// Page returns the current page.
func (a App) Page() Page { return a.page }

// Planner returns the planner state.
func (a App) Planner() Planner { return a.planner }

// SearchPage returns the search state.
func (a App) SearchPage() Search { return a.search }

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return a.planner.Init()
}

// Update implements tea.Model. Fetch results are routed to their page
// regardless of which page is showing.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case schoolsMsg:
		a.search, cmd = a.search.Update(msg)
		return a, cmd

	case campusesMsg, majorsMsg, evidenceMsg:
		a.planner, cmd = a.planner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.page == PagePlanner {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "/":
				a.page = PageSearch
				return a, nil
			}
			a.planner, cmd = a.planner.Update(msg)
			return a, cmd
		}
		if msg.Type == tea.KeyEsc {
			a.page = PagePlanner
			return a, nil
		}
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	}
	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	var b strings.Builder
	banner := bannerStyle
	if a.width > 0 {
		banner = banner.Width(a.width)
	}
	b.WriteString(banner.Render(Banner))
	b.WriteString("\n\n")
	if a.page == PageSearch {
		b.WriteString(a.search.View())
	} else {
		b.WriteString(a.planner.View())
	}
	return b.String()
}

// Close cancels outstanding fetch tracking.
func (a App) Close() {
	a.planner.evidence.Close()
	a.search.results.Close()
}

// Run starts the interactive program on page and blocks until it exits.
func Run(ctx context.Context, b Backend, page Page) error {
	app := NewApp(ctx, b, page, nil)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !eris.Is(err, tea.ErrProgramKilled) {
		return eris.Wrap(err, "tui: run")
	}
	return nil
}
