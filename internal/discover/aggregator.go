package discover

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mealplan/internal/cache"
	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/shared"
)

// QueryName prefixes every discover cache key.
const QueryName = "discoverRecipes"

// RecipeAPI is the remote recipe catalog.
type RecipeAPI interface {
	GetDiscoverRecipes(ctx context.Context) (*models.DiscoverResponse, error)
	GetAdminRecipes(ctx context.Context) (*models.DiscoverResponse, error)
}

// AuthProvider reports whether the current user is signed in.
type AuthProvider interface {
	IsAuthenticated() bool
}

// UserRecipeSource lists the user's own recipes. Version must change whenever Recipes would return something different.
type UserRecipeSource interface {
	Recipes() ([]models.UserRecipe, error)
	Version() uint64
}

// RecipeCache is the cache the aggregator stores fetched catalogs in.
type RecipeCache = cache.Cache[[]models.DisplayRecipe]

// NewRecipeCache creates a [RecipeCache] with the discover freshness and retention windows.
func NewRecipeCache(staleTime, cacheTime time.Duration, logger *log.Logger) *RecipeCache {
	return cache.New[[]models.DisplayRecipe](cache.Options{
		StaleTime: staleTime,
		CacheTime: cacheTime,
		Logger:    logger,
	})
}

// Key returns the cache key for a given authentication state.
func Key(authenticated bool) string {
	return cache.Key(QueryName, authenticated)
}

// State is what the discover screen renders. AllRecipes may be shared between callers and must not be modified.
type State struct {
	AllRecipes    []models.DisplayRecipe `json:"allRecipes"`
	Loading       bool                   `json:"loading"`
	Err           error                  `json:"-"`
	Authenticated bool                   `json:"-"`
	UpdatedAt     time.Time              `json:"-"`
}

// Aggregator merges the remote catalog with the user's recipes.
type Aggregator struct {
	api    RecipeAPI
	auth   AuthProvider
	users  UserRecipeSource
	cache  *RecipeCache
	logger *log.Logger

	mu   sync.Mutex
	memo memo
}

// memo holds the last derived list and the inputs it was derived from.
type memo struct {
	valid        bool
	key          string
	fetchVersion uint64
	userVersion  uint64
	recipes      []models.DisplayRecipe
}

// NewAggregator wires an [Aggregator]. The cache is shared and owned by the caller, who also runs its janitor.
func NewAggregator(api RecipeAPI, auth AuthProvider, users UserRecipeSource, c *RecipeCache, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Aggregator{api: api, auth: auth, users: users, cache: c, logger: logger}
}

// Fetch returns the catalog for the given authentication state, reusing a fresh cached result.
func (a *Aggregator) Fetch(ctx context.Context, authenticated bool) ([]models.DisplayRecipe, error) {
	return a.cache.Fetch(ctx, Key(authenticated), a.fetchFunc(authenticated))
}

func (a *Aggregator) fetchFunc(authenticated bool) cache.FetchFunc[[]models.DisplayRecipe] {
	return func(ctx context.Context) ([]models.DisplayRecipe, error) {
		return a.fetchRecipes(ctx, authenticated)
	}
}

// fetchRecipes calls the endpoint for the given authentication state.
// Guests get the admin catalog, and any failure there is an empty catalog.
func (a *Aggregator) fetchRecipes(ctx context.Context, authenticated bool) ([]models.DisplayRecipe, error) {
	if authenticated {
		resp, err := a.api.GetDiscoverRecipes(ctx)
		if err != nil {
			a.logger.Warn("discover recipes request failed", "error", err)
			return nil, err
		}
		if resp == nil {
			return nil, nil
		}
		return resp.Recipes, nil
	}

	resp, err := a.api.GetAdminRecipes(ctx)
	if err != nil {
		a.logger.Debug("admin recipes unavailable, using empty catalog", "error", err)
		return []models.DisplayRecipe{}, nil
	}
	if resp == nil || resp.Recipes == nil {
		return []models.DisplayRecipe{}, nil
	}
	return resp.Recipes, nil
}

// State returns the current discover list without blocking.
//
// A fetch for the current authentication state is started in the background when the cache has
// nothing fresh. Until it completes, Loading is true and AllRecipes holds only user recipes.
func (a *Aggregator) State(ctx context.Context) State {
	authenticated := a.auth.IsAuthenticated()
	key := Key(authenticated)
	st := a.cache.Query(ctx, key, a.fetchFunc(authenticated))
	return a.build(key, authenticated, st)
}

// Resolve waits for the current authentication state's fetch, then returns [Aggregator.State].
func (a *Aggregator) Resolve(ctx context.Context) State {
	authenticated := a.auth.IsAuthenticated()
	key := Key(authenticated)

	if _, err := a.cache.Fetch(ctx, key, a.fetchFunc(authenticated)); err != nil && ctx.Err() != nil {
		st, _ := a.cache.Peek(key)
		out := a.build(key, authenticated, st)
		out.Err = ctx.Err()
		return out
	}

	st, _ := a.cache.Peek(key)
	return a.build(key, authenticated, st)
}

// Authenticated reports the current authentication state without touching the cache.
func (a *Aggregator) Authenticated() bool {
	return a.auth.IsAuthenticated()
}

// Refresh marks the current authentication state's catalog stale.
func (a *Aggregator) Refresh() {
	a.cache.Invalidate(Key(a.auth.IsAuthenticated()))
}

func (a *Aggregator) build(key string, authenticated bool, st cache.State[[]models.DisplayRecipe]) State {
	out := State{
		Loading:       !st.HasData && (st.Fetching || st.Err == nil),
		Err:           st.Err,
		Authenticated: authenticated,
		UpdatedAt:     st.UpdatedAt,
	}

	recipes, err := a.derive(key, st)
	if err != nil && out.Err == nil {
		out.Err = err
	}
	out.AllRecipes = recipes
	return out
}

// derive recomputes the display list only when the fetched catalog or the user recipes changed.
func (a *Aggregator) derive(key string, st cache.State[[]models.DisplayRecipe]) ([]models.DisplayRecipe, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	userVersion := a.users.Version()
	m := a.memo
	if m.valid && m.key == key && m.fetchVersion == st.Version && m.userVersion == userVersion {
		return m.recipes, nil
	}

	users, err := a.users.Recipes()
	if err != nil {
		a.logger.Warn("failed to load user recipes", "error", err)
		return DeriveDisplayList(st.Data, nil), err
	}

	recipes := DeriveDisplayList(st.Data, users)
	a.memo = memo{
		valid:        true,
		key:          key,
		fetchVersion: st.Version,
		userVersion:  userVersion,
		recipes:      recipes,
	}
	return recipes, nil
}
