package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/mealplan/internal/formatter"
	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/shared"
)

const (
	DefaultWorkers = 4
	MaxWorkers     = 8
	ManifestName   = "export_manifest.json"
)

// ExportOpts contains configuration for a bulk export.
type ExportOpts struct {
	OutputDir  string             // Output directory (default: discover_export_{epoch})
	Formats    []formatter.Format // Formats to write (default: all)
	NumWorkers int                // Concurrent writers (default: 4)
	BaseName   string             // File name without extension (default: discover)
}

// FormatResult is the outcome of writing one format.
type FormatResult struct {
	Format  formatter.Format `json:"format"`
	File    string           `json:"file,omitempty"`
	Success bool             `json:"success"`
	Error   string           `json:"error,omitempty"`
}

// ExportResult summarizes a bulk export and is what the manifest contains.
type ExportResult struct {
	ExportedAt      time.Time      `json:"exported_at"`
	RecipeCount     int            `json:"recipe_count"`
	OutputDirectory string         `json:"output_directory"`
	Successful      int            `json:"successful"`
	Failed          int            `json:"failed"`
	Results         []FormatResult `json:"results"`
	ManifestPath    string         `json:"-"`
}

// Export writes recipes once per requested format using a worker pool, then writes the manifest.
func Export(ctx context.Context, prog chan<- ProgressUpdate, recipes []models.DisplayRecipe, opts ExportOpts) (*ExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("discover_export_%d", time.Now().Unix())
	}
	if len(opts.Formats) == 0 {
		opts.Formats = formatter.Formats
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	opts.NumWorkers = min(opts.NumWorkers, MaxWorkers, len(opts.Formats))
	if opts.BaseName == "" {
		opts.BaseName = "discover"
	}

	formats := dedupe(opts.Formats)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		ExportedAt:      time.Now().UTC(),
		RecipeCount:     len(recipes),
		OutputDirectory: opts.OutputDir,
		Results:         make([]FormatResult, 0, len(formats)),
	}

	jobs := make(chan formatter.Format, len(formats))
	results := make(chan FormatResult, len(formats))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go exportWorker(ctx, &wg, jobs, results, recipes, opts)
	}

	for i, format := range formats {
		sendProgress(prog, exportingUpdate(i+1, len(formats), format, len(recipes)))
		jobs <- format
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Success {
			result.Successful++
			sendProgress(prog, exportCompletedUpdate(completed, len(formats), res))
		} else {
			result.Failed++
			sendProgress(prog, exportFailedUpdate(completed, len(formats), res))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	slices.SortFunc(result.Results, func(a, b FormatResult) int {
		return slices.Index(formats, a.Format) - slices.Index(formats, b.Format)
	})

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	sendProgress(prog, manifestUpdate(manifestPath))
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes formats from the jobs channel until it is drained or ctx is done.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan formatter.Format,
	results chan<- FormatResult,
	recipes []models.DisplayRecipe,
	opts ExportOpts,
) {
	defer wg.Done()

	for format := range jobs {
		if err := ctx.Err(); err != nil {
			results <- FormatResult{Format: format, Error: err.Error()}
			continue
		}
		results <- exportFormat(recipes, format, opts)
	}
}

func exportFormat(recipes []models.DisplayRecipe, format formatter.Format, opts ExportOpts) FormatResult {
	res := FormatResult{Format: format}

	path := filepath.Join(opts.OutputDir, opts.BaseName+"."+format.Extension())
	if err := formatter.WriteFile(path, recipes, format); err != nil {
		res.Error = err.Error()
		return res
	}

	res.File = path
	res.Success = true
	return res
}

func dedupe(formats []formatter.Format) []formatter.Format {
	out := make([]formatter.Format, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
