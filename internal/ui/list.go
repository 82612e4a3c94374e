package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mealplan/internal/models"
)

var _ list.Item = recipeItem{}

// recipeItem wraps [models.DisplayRecipe] to implement [list.Item].
type recipeItem struct {
	recipe models.DisplayRecipe
}

func (i recipeItem) FilterValue() string { return i.recipe.Name }
func (i recipeItem) Title() string       { return fmt.Sprintf("%s %s", i.recipe.Image, i.recipe.Name) }
func (i recipeItem) Description() string {
	desc := fmt.Sprintf("%s • serves %d", i.recipe.Time, i.recipe.Servings)
	if n := len(i.recipe.Ingredients); n > 0 {
		desc = fmt.Sprintf("%s • %d ingredients", desc, n)
	}
	return desc
}

func recipeItems(recipes []models.DisplayRecipe) []list.Item {
	items := make([]list.Item, len(recipes))
	for i, r := range recipes {
		items[i] = recipeItem{recipe: r}
	}
	return items
}
