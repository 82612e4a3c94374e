package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mealplan/internal/discover"
	"github.com/desertthunder/mealplan/internal/models"
)

type fakeSource struct {
	state     discover.State
	refreshed int
}

func (f *fakeSource) State(context.Context) discover.State { return f.state }
func (f *fakeSource) Refresh()                             { f.refreshed++ }

func loadedModel(t *testing.T, state discover.State) (*Model, *fakeSource) {
	t.Helper()
	src := &fakeSource{state: state}
	m := NewModel(context.Background(), src)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(stateLoadedMsg(state))
	return m, src
}

func TestModel(t *testing.T) {
	soup := models.DisplayRecipe{
		ID:           models.IntID(1),
		Name:         "Tomato Soup",
		Time:         "20 min",
		Servings:     2,
		Image:        "🥣",
		Ingredients:  []string{"tomatoes"},
		Instructions: []string{"Simmer"},
	}

	t.Run("Loading Shows Spinner Text", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSource{})

		if !strings.Contains(m.View(), "Loading recipes") {
			t.Errorf("expected loading text, got:\n%s", m.View())
		}
	})

	t.Run("Loading State Schedules Poll", func(t *testing.T) {
		m := NewModel(context.Background(), &fakeSource{})
		_, cmd := m.Update(stateLoadedMsg(discover.State{Loading: true}))

		if cmd == nil {
			t.Error("expected a poll command while loading")
		}
	})

	t.Run("Lists Recipes", func(t *testing.T) {
		m, _ := loadedModel(t, discover.State{AllRecipes: []models.DisplayRecipe{soup}})

		view := m.View()
		if !strings.Contains(view, "Tomato Soup") {
			t.Errorf("expected recipe in list, got:\n%s", view)
		}
		if strings.Contains(view, "Loading recipes") {
			t.Error("loaded state should not show the spinner")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		m, _ := loadedModel(t, discover.State{})

		if !strings.Contains(m.View(), "No recipes to show yet") {
			t.Errorf("expected empty message, got:\n%s", m.View())
		}
	})

	t.Run("Error Banner", func(t *testing.T) {
		m, _ := loadedModel(t, discover.State{Err: context.DeadlineExceeded})

		if !strings.Contains(m.View(), "Could not load the catalog") {
			t.Errorf("expected error banner, got:\n%s", m.View())
		}
	})

	t.Run("Detail And Back", func(t *testing.T) {
		m, _ := loadedModel(t, discover.State{AllRecipes: []models.DisplayRecipe{soup}})

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != DetailView {
			t.Fatalf("expected detail view, got %v", m.view)
		}
		view := m.View()
		if !strings.Contains(view, "Ingredients") || !strings.Contains(view, "1. Simmer") {
			t.Errorf("expected recipe details, got:\n%s", view)
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != ListView || m.selected != nil {
			t.Errorf("expected list view after esc, got %v", m.view)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		m, src := loadedModel(t, discover.State{})

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
		if cmd == nil {
			t.Fatal("expected refresh command")
		}
		msg := cmd()
		if src.refreshed != 1 {
			t.Errorf("expected one refresh, got %d", src.refreshed)
		}

		_, next := m.Update(msg)
		if next == nil || !m.state.Loading {
			t.Error("expected reload after refresh")
		}
	})
}
