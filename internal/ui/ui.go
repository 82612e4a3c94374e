package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mealplan/internal/discover"
	"github.com/desertthunder/mealplan/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	DetailView
)

// DefaultPollInterval is how often the model re-reads state while the catalog is loading.
const DefaultPollInterval = 250 * time.Millisecond

// Source is the part of [discover.Aggregator] the TUI needs.
type Source interface {
	State(ctx context.Context) discover.State
	Refresh()
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	source       Source
	view         ViewState
	width        int
	height       int
	recipes      list.Model
	spinner      spinner.Model
	state        discover.State
	loaded       bool
	selected     *models.DisplayRecipe
	help         help.Model
	keys         keyMap
	pollInterval time.Duration
}

// NewModel creates a new TUI model reading from source.
func NewModel(ctx context.Context, source Source) *Model {
	recipes := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	recipes.Title = "Discover Recipes"
	recipes.SetShowHelp(false)

	return &Model{
		ctx:          ctx,
		source:       source,
		view:         ListView,
		recipes:      recipes,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:         help.New(),
		keys:         newKeyMap(),
		pollInterval: DefaultPollInterval,
	}
}

// Init reads the initial state and starts the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadState())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recipes.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.recipes, cmd = m.recipes.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStateLoaded:
		m.state = msg.data.(discover.State)
		m.loaded = true
		cmd := m.recipes.SetItems(recipeItems(m.state.AllRecipes))
		if m.state.Loading {
			return m, tea.Batch(cmd, m.poll())
		}
		return m, cmd

	case MsgRefreshed:
		m.state.Loading = true
		return m, m.loadState()
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DetailView:
		return m.renderDetail()
	default:
		return m.renderList()
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.recipes.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.recipes, cmd = m.recipes.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.recipes.SelectedItem().(recipeItem); ok {
			selected := item.recipe
			m.selected = &selected
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.recipes, cmd = m.recipes.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		m.selected = nil
	}
	return m, nil
}

func (m *Model) loadState() tea.Cmd {
	return func() tea.Msg {
		return stateLoadedMsg(m.source.State(m.ctx))
	}
}

func (m *Model) poll() tea.Cmd {
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return stateLoadedMsg(m.source.State(m.ctx))
	})
}

func (m *Model) refresh() tea.Cmd {
	return func() tea.Msg {
		m.source.Refresh()
		return refreshedMsg()
	}
}

func (m *Model) renderList() string {
	var b strings.Builder

	if !m.loaded || m.state.Loading {
		fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), styles.muted.Render("Loading recipes..."))
	}
	if m.state.Err != nil {
		fmt.Fprintf(&b, "%s\n\n", styles.err.Render(fmt.Sprintf("Could not load the catalog: %v", m.state.Err)))
	}

	if m.loaded && len(m.state.AllRecipes) == 0 && !m.state.Loading {
		b.WriteString(styles.warn.Render("No recipes to show yet."))
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.recipes.View())
		b.WriteString("\n\n")
	}

	mode := "guest"
	if m.state.Authenticated {
		mode = "signed in"
	}
	b.WriteString(styles.muted.Render(fmt.Sprintf("%d recipes • %s", len(m.state.AllRecipes), mode)))
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.filter, m.keys.refresh, m.keys.quit}))
	return b.String()
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return m.renderList()
	}
	r := m.selected

	var body strings.Builder
	fmt.Fprintf(&body, "%s\n", styles.ok.Render(fmt.Sprintf("%s • serves %d", r.Time, r.Servings)))

	if len(r.Ingredients) > 0 {
		fmt.Fprintf(&body, "\n%s\n", styles.section.Render("Ingredients"))
		for _, ing := range r.Ingredients {
			fmt.Fprintf(&body, "  • %s\n", ing)
		}
	}
	if len(r.Instructions) > 0 {
		fmt.Fprintf(&body, "\n%s\n", styles.section.Render("Instructions"))
		for i, step := range r.Instructions {
			fmt.Fprintf(&body, "  %d. %s\n", i+1, step)
		}
	}
	if len(r.Ingredients) == 0 && len(r.Instructions) == 0 {
		fmt.Fprintf(&body, "\n%s\n", styles.muted.Render("No ingredients or instructions recorded."))
	}

	title := styles.title.Render(fmt.Sprintf("%s %s", r.Image, r.Name))
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, styles.card.Render(strings.TrimRight(body.String(), "\n")), helpView)
}
