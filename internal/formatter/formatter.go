// package formatter renders display recipes as text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// Extension is the file extension used when writing f to disk.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return "txt"
	case FormatMarkdown:
		return "md"
	default:
		return string(f)
	}
}

// ParseFormat accepts a format name or a common alias ("md", "txt").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Render converts recipes to the given format.
func Render(recipes []models.DisplayRecipe, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return ExportToText(recipes)
	case FormatMarkdown:
		return ExportToMarkdown(recipes, "Discover")
	case FormatCSV:
		return ExportToCSV(recipes)
	case FormatJSON:
		return ExportToJSON(recipes)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// Write renders recipes to w.
func Write(w io.Writer, recipes []models.DisplayRecipe, format Format) error {
	data, err := Render(recipes, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteFile renders recipes into path.
func WriteFile(path string, recipes []models.DisplayRecipe, format Format) error {
	data, err := Render(recipes, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ExportToCSV converts recipes to CSV with columns: ID, Name, Time, Servings, Image, Ingredients, Instructions.
// List columns are joined with "; ".
func ExportToCSV(recipes []models.DisplayRecipe) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Time", "Servings", "Image", "Ingredients", "Instructions"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range recipes {
		record := []string{
			r.ID.String(),
			r.Name,
			r.Time,
			strconv.Itoa(r.Servings),
			r.Image,
			strings.Join(r.Ingredients, "; "),
			strings.Join(r.Instructions, "; "),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a titled list with one section per recipe.
func ExportToMarkdown(recipes []models.DisplayRecipe, title string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Recipes**: %d\n", len(recipes))

	for _, r := range recipes {
		fmt.Fprintf(&buf, "\n## %s %s\n\n", r.Image, r.Name)
		fmt.Fprintf(&buf, "- **Time**: %s\n", r.Time)
		fmt.Fprintf(&buf, "- **Servings**: %d\n", r.Servings)

		if len(r.Ingredients) > 0 {
			buf.WriteString("\n### Ingredients\n\n")
			for _, ing := range r.Ingredients {
				fmt.Fprintf(&buf, "- %s\n", ing)
			}
		}

		if len(r.Instructions) > 0 {
			buf.WriteString("\n### Instructions\n\n")
			for i, step := range r.Instructions {
				fmt.Fprintf(&buf, "%d. %s\n", i+1, step)
			}
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders one numbered line per recipe.
func ExportToText(recipes []models.DisplayRecipe) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Recipes: %d\n\n", len(recipes))
	for i, r := range recipes {
		fmt.Fprintf(&buf, "%d. %s %s (%s, serves %d)\n", i+1, r.Image, r.Name, r.Time, r.Servings)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the recipe list as indented JSON.
func ExportToJSON(recipes []models.DisplayRecipe) ([]byte, error) {
	if recipes == nil {
		recipes = []models.DisplayRecipe{}
	}
	return shared.MarshalJSON(recipes, true)
}

// RecipeDetail renders a single recipe with its ingredients and instructions as plain text.
func RecipeDetail(r models.DisplayRecipe) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", r.Image, r.Name)
	fmt.Fprintf(&b, "ID: %s\n", r.ID)
	fmt.Fprintf(&b, "Time: %s\n", r.Time)
	fmt.Fprintf(&b, "Servings: %d\n", r.Servings)

	if len(r.Ingredients) > 0 {
		b.WriteString("\nIngredients:\n")
		for _, ing := range r.Ingredients {
			fmt.Fprintf(&b, "  - %s\n", ing)
		}
	}

	if len(r.Instructions) > 0 {
		b.WriteString("\nInstructions:\n")
		for i, step := range r.Instructions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
		}
	}

	return b.String()
}
