package discover

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/mealplan/internal/cache"
	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/shared"
	tu "github.com/desertthunder/mealplan/internal/testing"
	"github.com/google/go-cmp/cmp"
)

type fixture struct {
	api   *tu.MockRecipeAPI
	auth  *tu.MockAuth
	users *tu.MockUserRecipes
	cache *RecipeCache
	agg   *Aggregator
}

func newFixture(t *testing.T, authenticated bool, users ...models.UserRecipe) *fixture {
	t.Helper()
	f := &fixture{
		api:   &tu.MockRecipeAPI{},
		auth:  tu.NewMockAuth(authenticated),
		users: tu.NewMockUserRecipes(users...),
		cache: NewRecipeCache(5*time.Minute, 10*time.Minute, nil),
	}
	f.agg = NewAggregator(f.api, f.auth, f.users, f.cache, nil)
	t.Cleanup(f.cache.Wait)
	return f
}

// newClockFixture is like newFixture but the cache reads time from clock.
func newClockFixture(t *testing.T, clock *tu.FakeClock, authenticated bool, users ...models.UserRecipe) *fixture {
	t.Helper()
	f := newFixture(t, authenticated, users...)
	f.cache = cache.New[[]models.DisplayRecipe](cache.Options{
		StaleTime:  5 * time.Minute,
		CacheTime:  10 * time.Minute,
		ErrorRetry: 30 * time.Second,
		Now:        clock.Now,
	})
	f.agg = NewAggregator(f.api, f.auth, f.users, f.cache, nil)
	t.Cleanup(f.cache.Wait)
	return f
}

func names(recipes []models.DisplayRecipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}

func TestKey(t *testing.T) {
	if got := Key(true); got != "discoverRecipes:true" {
		t.Errorf("expected discoverRecipes:true, got %s", got)
	}
	if Key(true) == Key(false) {
		t.Error("authentication states must use distinct keys")
	}
}

func TestAggregator(t *testing.T) {
	t.Run("Authenticated Uses Discover Endpoint", func(t *testing.T) {
		f := newFixture(t, true)
		soup := models.DisplayRecipe{ID: models.IntID(1), Name: "Soup", Time: "20 min", Servings: 2, Image: "soup.png"}
		f.api.Discover = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{soup}}

		st := f.agg.Resolve(context.Background())

		if st.Err != nil {
			t.Fatalf("unexpected error: %v", st.Err)
		}
		if st.Loading {
			t.Error("expected loading to be false")
		}
		if diff := cmp.Diff([]models.DisplayRecipe{soup}, st.AllRecipes); diff != "" {
			t.Errorf("recipes mismatch (-want +got):\n%s", diff)
		}
		if f.api.AdminCalls() != 0 {
			t.Errorf("expected no admin calls, got %d", f.api.AdminCalls())
		}
	})

	t.Run("Guest Admin Failure Degrades To User Recipes", func(t *testing.T) {
		f := newFixture(t, false, models.UserRecipe{ID: models.IntID(2), Title: "Pie", CookTime: 45, Servings: 4})
		f.api.AdminErr = errors.New("boom")

		st := f.agg.Resolve(context.Background())

		if st.Err != nil {
			t.Errorf("guest failures must not surface, got %v", st.Err)
		}
		want := []models.DisplayRecipe{{ID: models.IntID(2), Name: "Pie", Time: "45 min", Servings: 4, Image: "🍽️"}}
		if diff := cmp.Diff(want, st.AllRecipes); diff != "" {
			t.Errorf("recipes mismatch (-want +got):\n%s", diff)
		}
		if f.api.DiscoverCalls() != 0 {
			t.Errorf("expected no discover calls, got %d", f.api.DiscoverCalls())
		}
	})

	t.Run("Guest Missing Recipes Field Is Empty", func(t *testing.T) {
		f := newFixture(t, false)
		f.api.Admin = &models.DiscoverResponse{}

		got, err := f.agg.Fetch(context.Background(), false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil catalog, got %#v", got)
		}
	})

	t.Run("Authenticated Failure Surfaces Error", func(t *testing.T) {
		f := newFixture(t, true, models.UserRecipe{ID: models.StringID("u1"), Name: "Mine"})
		f.api.DiscErr = shared.ErrAPIRequest

		st := f.agg.Resolve(context.Background())

		if !errors.Is(st.Err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", st.Err)
		}
		if st.Loading {
			t.Error("a failed fetch is not loading")
		}
		if diff := cmp.Diff([]string{"Mine"}, names(st.AllRecipes)); diff != "" {
			t.Errorf("user recipes should still be listed (-want +got):\n%s", diff)
		}
	})

	t.Run("Loading Until Fetch Completes", func(t *testing.T) {
		f := newFixture(t, true, models.UserRecipe{ID: models.StringID("u1"), Name: "Mine"})
		f.api.Gate = make(chan struct{})
		f.api.Discover = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(1), Name: "Soup"}}}

		st := f.agg.State(context.Background())
		if !st.Loading {
			t.Error("expected loading while the first fetch is outstanding")
		}
		if diff := cmp.Diff([]string{"Mine"}, names(st.AllRecipes)); diff != "" {
			t.Errorf("expected only user recipes while loading (-want +got):\n%s", diff)
		}

		close(f.api.Gate)
		f.cache.Wait()

		st = f.agg.State(context.Background())
		if st.Loading {
			t.Error("expected loading to be false after fetch")
		}
		if diff := cmp.Diff([]string{"Soup", "Mine"}, names(st.AllRecipes)); diff != "" {
			t.Errorf("recipes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Concurrent Callers Share One Request", func(t *testing.T) {
		f := newFixture(t, true)
		f.api.Gate = make(chan struct{})
		f.api.Discover = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(1), Name: "Soup"}}}

		var wg sync.WaitGroup
		results := make([]State, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = f.agg.Resolve(context.Background())
			}(i)
		}

		f.agg.State(context.Background())
		close(f.api.Gate)
		wg.Wait()

		if f.api.DiscoverCalls() != 1 {
			t.Errorf("expected 1 request, got %d", f.api.DiscoverCalls())
		}
		for i, st := range results {
			if diff := cmp.Diff([]string{"Soup"}, names(st.AllRecipes)); diff != "" {
				t.Errorf("caller %d mismatch (-want +got):\n%s", i, diff)
			}
		}
	})

	t.Run("Fresh Result Is Reused", func(t *testing.T) {
		f := newFixture(t, true)
		f.api.Discover = &models.DiscoverResponse{}

		f.agg.Resolve(context.Background())
		f.agg.Resolve(context.Background())
		f.agg.State(context.Background())

		if f.api.DiscoverCalls() != 1 {
			t.Errorf("expected 1 request, got %d", f.api.DiscoverCalls())
		}
	})

	t.Run("Refresh Refetches", func(t *testing.T) {
		f := newFixture(t, true)
		f.api.Discover = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(1), Name: "Old"}}}
		f.agg.Resolve(context.Background())

		f.api.SetDiscover(&models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(1), Name: "New"}}}, nil)
		f.agg.Refresh()

		st := f.agg.Resolve(context.Background())
		if diff := cmp.Diff([]string{"New"}, names(st.AllRecipes)); diff != "" {
			t.Errorf("recipes mismatch (-want +got):\n%s", diff)
		}
		if f.api.DiscoverCalls() != 2 {
			t.Errorf("expected 2 requests, got %d", f.api.DiscoverCalls())
		}
	})

	t.Run("Auth Change Switches Key", func(t *testing.T) {
		f := newFixture(t, true)
		f.api.Discover = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(1), Name: "Member"}}}
		f.api.Admin = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(2), Name: "Guest"}}}

		if got := names(f.agg.Resolve(context.Background()).AllRecipes); !cmp.Equal(got, []string{"Member"}) {
			t.Errorf("expected Member, got %v", got)
		}

		f.auth.Set(false)
		st := f.agg.Resolve(context.Background())
		if !cmp.Equal(names(st.AllRecipes), []string{"Guest"}) || st.Authenticated {
			t.Errorf("expected guest state, got %+v", st)
		}

		f.auth.Set(true)
		f.agg.Resolve(context.Background())
		if f.api.DiscoverCalls() != 1 || f.api.AdminCalls() != 1 {
			t.Errorf("expected cached results per key, got discover=%d admin=%d", f.api.DiscoverCalls(), f.api.AdminCalls())
		}
	})

	t.Run("Superseded Fetch Does Not Leak Into Current Key", func(t *testing.T) {
		f := newFixture(t, true)
		f.api.Gate = make(chan struct{})
		f.api.Discover = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(1), Name: "Member"}}}
		f.api.Admin = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(2), Name: "Guest"}}}

		f.agg.State(context.Background())
		f.auth.Set(false)
		if st := f.agg.State(context.Background()); !st.Loading {
			t.Error("new key should be loading")
		}

		close(f.api.Gate)
		f.cache.Wait()

		st := f.agg.State(context.Background())
		if diff := cmp.Diff([]string{"Guest"}, names(st.AllRecipes)); diff != "" {
			t.Errorf("recipes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Derivation Is Memoized", func(t *testing.T) {
		f := newFixture(t, false, models.UserRecipe{ID: models.IntID(1), Name: "One"})
		f.api.Admin = &models.DiscoverResponse{}

		first := f.agg.Resolve(context.Background())
		f.agg.State(context.Background())
		f.agg.State(context.Background())

		if f.users.Loads() != 1 {
			t.Errorf("expected 1 user recipe load, got %d", f.users.Loads())
		}

		f.users.Set(models.UserRecipe{ID: models.IntID(1), Name: "One"}, models.UserRecipe{ID: models.IntID(2), Name: "Two"})
		second := f.agg.State(context.Background())

		if f.users.Loads() != 2 {
			t.Errorf("expected reload after change, got %d loads", f.users.Loads())
		}
		if len(first.AllRecipes) != 1 || len(second.AllRecipes) != 2 {
			t.Errorf("unexpected lists: %v then %v", names(first.AllRecipes), names(second.AllRecipes))
		}
	})

	t.Run("User Recipe Load Failure", func(t *testing.T) {
		f := newFixture(t, false)
		f.api.Admin = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(1), Name: "Guest"}}}
		f.users.Err = errors.New("disk gone")

		st := f.agg.Resolve(context.Background())
		if st.Err == nil {
			t.Error("expected user recipe error")
		}
		if diff := cmp.Diff([]string{"Guest"}, names(st.AllRecipes)); diff != "" {
			t.Errorf("remote recipes should still be listed (-want +got):\n%s", diff)
		}
	})

	t.Run("Retry After Failure Is Loading", func(t *testing.T) {
		clock := tu.NewFakeClock()
		f := newClockFixture(t, clock, true)
		f.api.DiscErr = errors.New("boom")

		if st := f.agg.Resolve(context.Background()); st.Loading || st.Err == nil {
			t.Fatalf("expected settled failure, got %+v", st)
		}

		f.api.Gate = make(chan struct{})
		clock.Advance(time.Minute)

		st := f.agg.State(context.Background())
		if !st.Loading {
			t.Error("expected loading while the retry is outstanding")
		}
		if st.Err == nil {
			t.Error("expected the previous error to stay visible during the retry")
		}

		close(f.api.Gate)
		f.cache.Wait()
		if f.api.DiscoverCalls() != 2 {
			t.Errorf("expected 2 requests, got %d", f.api.DiscoverCalls())
		}
	})

	t.Run("Eviction Then Refetch Uses New Catalog", func(t *testing.T) {
		clock := tu.NewFakeClock()
		f := newClockFixture(t, clock, false)
		f.api.Admin = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(1), Name: "Old"}}}

		if got := names(f.agg.Resolve(context.Background()).AllRecipes); !cmp.Equal(got, []string{"Old"}) {
			t.Fatalf("expected Old, got %v", got)
		}

		clock.Advance(11 * time.Minute)
		if n := f.cache.Sweep(); n != 1 {
			t.Fatalf("expected 1 evicted entry, got %d", n)
		}

		f.api.Admin = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(2), Name: "New"}}}
		st := f.agg.Resolve(context.Background())
		if diff := cmp.Diff([]string{"New"}, names(st.AllRecipes)); diff != "" {
			t.Errorf("recipes mismatch (-want +got):\n%s", diff)
		}
		if f.api.AdminCalls() != 2 {
			t.Errorf("expected 2 requests, got %d", f.api.AdminCalls())
		}
	})

	t.Run("Remove Then Refetch Uses New Catalog", func(t *testing.T) {
		f := newClockFixture(t, tu.NewFakeClock(), true)
		f.api.Discover = &models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(1), Name: "Old"}}}

		if got := names(f.agg.Resolve(context.Background()).AllRecipes); !cmp.Equal(got, []string{"Old"}) {
			t.Fatalf("expected Old, got %v", got)
		}

		f.cache.Remove(Key(true))
		f.api.SetDiscover(&models.DiscoverResponse{Recipes: []models.DisplayRecipe{{ID: models.IntID(2), Name: "New"}}}, nil)

		st := f.agg.Resolve(context.Background())
		if diff := cmp.Diff([]string{"New"}, names(st.AllRecipes)); diff != "" {
			t.Errorf("recipes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Resolve Honors Cancellation", func(t *testing.T) {
		f := newFixture(t, true)
		f.api.Gate = make(chan struct{})
		f.api.Discover = &models.DiscoverResponse{}
		defer close(f.api.Gate)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		st := f.agg.Resolve(ctx)
		if !errors.Is(st.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", st.Err)
		}
		if !st.Loading {
			t.Error("expected loading while the detached fetch is outstanding")
		}
	})
}
