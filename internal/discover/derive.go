package discover

import (
	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/shared"
)

const (
	DefaultTime     = "30 min"
	DefaultServings = 1
	UserRecipeImage = "🍽️"
)

// FromUserRecipe maps a locally authored recipe into the display shape, filling defaults for absent fields.
func FromUserRecipe(r models.UserRecipe) models.DisplayRecipe {
	d := models.DisplayRecipe{
		ID:           r.ID,
		Name:         r.DisplayName(),
		Time:         DefaultTime,
		Servings:     DefaultServings,
		Image:        UserRecipeImage,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
	}
	if r.CookTime != 0 {
		d.Time = shared.FormatMinutes(r.CookTime)
	}
	if r.Servings != 0 {
		d.Servings = r.Servings
	}
	return d
}

// DeriveDisplayList concatenates fetched and mapped user recipes, in that order, then drops
// recipes without a name and every recipe whose ID was already seen.
func DeriveDisplayList(fetched []models.DisplayRecipe, users []models.UserRecipe) []models.DisplayRecipe {
	out := make([]models.DisplayRecipe, 0, len(fetched)+len(users))
	seen := make(map[models.RecipeID]struct{}, len(fetched)+len(users))

	keep := func(r models.DisplayRecipe) {
		if _, dup := seen[r.ID]; dup {
			return
		}
		seen[r.ID] = struct{}{}
		if r.Displayable() {
			out = append(out, r)
		}
	}

	for _, r := range fetched {
		keep(r)
	}
	for _, r := range users {
		keep(FromUserRecipe(r))
	}
	return out
}
