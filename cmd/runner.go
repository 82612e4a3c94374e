package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mealplan/internal/discover"
	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/repositories"
	"github.com/desertthunder/mealplan/internal/services"
	"github.com/desertthunder/mealplan/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	recipes    *services.RecipeService
	session    *services.Session
	store      *repositories.UserRecipeRepository
	cache      *discover.RecipeCache
	discover   *discover.Aggregator
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Store disables the recipes commands and leaves the discover list without user recipes.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Session    *services.Session
	Store      *repositories.UserRecipeRepository
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout.Duration}
	}
	if opts.Session == nil {
		opts.Session = services.NewMemorySession(nil)
	}

	api := services.NewAPIService(opts.Config.API.BaseURL, opts.HTTPClient)
	api.SetRateLimit(opts.Config.API.RateLimit)
	api.SetTokenSource(opts.Session)

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        api,
		session:    opts.Session,
		store:      opts.Store,
		output:     opts.Output,
	}
	r.SetLogger(opts.Logger)
	return r
}

// SetLogger replaces the logger and rebuilds the components that log through it.
// The discover cache is rebuilt too, so call it before anything has been fetched.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.recipes = services.NewRecipeService(r.api, r.config.API.ClientID, logger)
	r.cache = discover.NewRecipeCache(r.config.Cache.StaleTime.Duration, r.config.Cache.CacheTime.Duration, logger)
	r.discover = discover.NewAggregator(r.recipes, r.session, r.userRecipes(), r.cache, logger)
}

func (r *Runner) userRecipes() discover.UserRecipeSource {
	if r.store == nil {
		return noUserRecipes{}
	}
	return r.store
}

func (r *Runner) requireStore() error {
	if r.store == nil {
		return fmt.Errorf("%w: recipe database is not available, run 'mealplan setup database'", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, discoverCommand, recipesCommand, apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// noUserRecipes stands in for the recipe store when no database is available.
type noUserRecipes struct{}

func (noUserRecipes) Recipes() ([]models.UserRecipe, error) { return nil, nil }
func (noUserRecipes) Version() uint64                      { return 0 }
