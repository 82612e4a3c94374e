package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/mealplan/internal/discover"
	"github.com/desertthunder/mealplan/internal/formatter"
	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/shared"
	"github.com/desertthunder/mealplan/internal/tasks"
	"github.com/urfave/cli/v3"
)

// resolveDiscover waits for the discover list. A catalog failure is logged and the user recipes still come back.
func (r *Runner) resolveDiscover(ctx context.Context) (discover.State, error) {
	st := r.discover.Resolve(ctx)
	if st.Err != nil {
		if errors.Is(st.Err, context.Canceled) || errors.Is(st.Err, context.DeadlineExceeded) {
			return st, st.Err
		}
		r.logger.Warn("catalog unavailable, showing your recipes only", "error", st.Err)
	}
	return st, nil
}

// DiscoverList prints the merged discover list in the requested format.
func (r *Runner) DiscoverList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	st, err := r.resolveDiscover(ctx)
	if err != nil {
		return err
	}
	r.logger.Debug("discover list resolved", "recipes", len(st.AllRecipes), "authenticated", st.Authenticated)

	if output := cmd.String("output"); output != "" {
		if err := formatter.WriteFile(output, st.AllRecipes, format); err != nil {
			return err
		}
		r.logger.Infof("wrote %d recipes to %v", len(st.AllRecipes), output)
		return nil
	}

	if format == formatter.FormatText && len(st.AllRecipes) == 0 {
		return r.writePlain("No recipes to show.\n")
	}
	return formatter.Write(r.output, st.AllRecipes, format)
}

// DiscoverExport writes the discover list in every requested format and prints progress as files land.
func (r *Runner) DiscoverExport(ctx context.Context, cmd *cli.Command) error {
	var formats []formatter.Format
	for _, name := range cmd.StringSlice("format") {
		format, err := formatter.ParseFormat(name)
		if err != nil {
			return err
		}
		formats = append(formats, format)
	}

	st, err := r.resolveDiscover(ctx)
	if err != nil {
		return err
	}

	prog := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := tasks.Export(ctx, prog, st.AllRecipes, tasks.ExportOpts{
		OutputDir:  cmd.String("dir"),
		Formats:    formats,
		NumWorkers: cmd.Int("workers"),
	})
	close(prog)
	<-done
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.logger.Info("export complete", "dir", result.OutputDirectory, "ok", result.Successful, "failed", result.Failed)
	r.writePlain("\n✓ %d of %d formats written to %s\n", result.Successful, len(result.Results), result.OutputDirectory)
	if result.Failed > 0 {
		return fmt.Errorf("%d formats failed, see %s", result.Failed, result.ManifestPath)
	}
	return nil
}

// DiscoverShow prints one recipe of the discover list, matched by ID or case-insensitive name.
func (r *Runner) DiscoverShow(ctx context.Context, cmd *cli.Command) error {
	ref := strings.TrimSpace(cmd.StringArg("recipe"))
	if ref == "" {
		return fmt.Errorf("%w: recipe ID or name is required", shared.ErrMissingArgument)
	}

	st, err := r.resolveDiscover(ctx)
	if err != nil {
		return err
	}

	recipe, ok := findDisplayRecipe(st.AllRecipes, ref)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrRecipeNotFound, ref)
	}
	return r.writePlain("%s", formatter.RecipeDetail(recipe))
}

func findDisplayRecipe(recipes []models.DisplayRecipe, ref string) (models.DisplayRecipe, bool) {
	for _, recipe := range recipes {
		if recipe.ID.String() == ref {
			return recipe, true
		}
	}
	for _, recipe := range recipes {
		if strings.EqualFold(recipe.Name, ref) {
			return recipe, true
		}
	}
	return models.DisplayRecipe{}, false
}
