package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/mealplan/internal/discover"
	"github.com/desertthunder/mealplan/internal/formatter"
	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/shared"
	"github.com/urfave/cli/v3"
)

// RecipesAdd stores a new user recipe.
func (r *Runner) RecipesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	recipe := models.NewPersistedRecipe(0, models.UserRecipe{
		Title:        strings.TrimSpace(cmd.String("title")),
		Name:         strings.TrimSpace(cmd.String("name")),
		CookTime:     cmd.Int("cook-time"),
		Servings:     cmd.Int("servings"),
		Ingredients:  cmd.StringSlice("ingredient"),
		Instructions: cmd.StringSlice("step"),
	})
	if recipe.Recipe.DisplayName() == "" {
		return fmt.Errorf("%w: --title or --name is required", shared.ErrMissingArgument)
	}

	if err := r.store.Create(recipe); err != nil {
		return err
	}

	r.logger.Info("recipe added", "id", recipe.ID(), "sequence", recipe.Sequence())
	return r.writePlain("✓ Added #%d %s (%s)\n", recipe.Sequence(), recipe.Recipe.DisplayName(), shortID(recipe.ID()))
}

// RecipesList prints the stored user recipes.
func (r *Runner) RecipesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if search := cmd.String("search"); search != "" {
		criteria["search"] = search
	}
	if limit := cmd.Int("limit"); limit > 0 {
		criteria["limit"] = limit
	}

	recipes, err := r.store.List(criteria)
	if err != nil {
		return err
	}

	if format != formatter.FormatText {
		display := make([]models.DisplayRecipe, 0, len(recipes))
		for _, p := range recipes {
			display = append(display, discover.FromUserRecipe(p.Recipe))
		}
		return formatter.Write(r.output, display, format)
	}

	if len(recipes) == 0 {
		return r.writePlain("No recipes yet. Add one with 'mealplan recipes add --title ...'\n")
	}

	r.writePlainHeader(fmt.Sprintf("Your recipes (%d)", len(recipes)))
	for _, p := range recipes {
		display := discover.FromUserRecipe(p.Recipe)
		r.writePlain("#%-4d %s  %s · %s · %d servings\n",
			p.Sequence(), shortID(p.ID()), display.Name, display.Time, display.Servings)
	}
	return nil
}

// RecipesShow prints one user recipe.
func (r *Runner) RecipesShow(ctx context.Context, cmd *cli.Command) error {
	recipe, err := r.findRecipe(cmd.StringArg("ref"))
	if err != nil {
		return err
	}

	r.writePlain("#%d · created %s\n", recipe.Sequence(), recipe.CreatedAt().Local().Format("2006-01-02 15:04"))
	return r.writePlain("%s", formatter.RecipeDetail(discover.FromUserRecipe(recipe.Recipe)))
}

// RecipesEdit changes the fields given on the command line and leaves the rest untouched.
func (r *Runner) RecipesEdit(ctx context.Context, cmd *cli.Command) error {
	recipe, err := r.findRecipe(cmd.StringArg("ref"))
	if err != nil {
		return err
	}

	changed := false
	if cmd.IsSet("title") {
		recipe.Recipe.Title = strings.TrimSpace(cmd.String("title"))
		changed = true
	}
	if cmd.IsSet("name") {
		recipe.Recipe.Name = strings.TrimSpace(cmd.String("name"))
		changed = true
	}
	if cmd.IsSet("cook-time") {
		recipe.Recipe.CookTime = cmd.Int("cook-time")
		changed = true
	}
	if cmd.IsSet("servings") {
		recipe.Recipe.Servings = cmd.Int("servings")
		changed = true
	}
	if cmd.IsSet("ingredient") {
		recipe.Recipe.Ingredients = cmd.StringSlice("ingredient")
		changed = true
	}
	if cmd.IsSet("step") {
		recipe.Recipe.Instructions = cmd.StringSlice("step")
		changed = true
	}
	if !changed {
		return fmt.Errorf("%w: nothing to change", shared.ErrMissingArgument)
	}

	if err := r.store.Update(recipe); err != nil {
		return err
	}

	r.logger.Info("recipe updated", "id", recipe.ID())
	return r.writePlain("✓ Updated #%d %s\n", recipe.Sequence(), recipe.Recipe.DisplayName())
}

// RecipesDelete soft-deletes a user recipe.
func (r *Runner) RecipesDelete(ctx context.Context, cmd *cli.Command) error {
	recipe, err := r.findRecipe(cmd.StringArg("ref"))
	if err != nil {
		return err
	}

	if err := r.store.Delete(recipe.ID()); err != nil {
		return err
	}

	r.logger.Info("recipe deleted", "id", recipe.ID())
	return r.writePlain("✓ Deleted #%d %s\n", recipe.Sequence(), recipe.Recipe.DisplayName())
}

func (r *Runner) findRecipe(ref string) (*models.PersistedRecipe, error) {
	if err := r.requireStore(); err != nil {
		return nil, err
	}
	return r.store.Find(strings.TrimSpace(ref))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
