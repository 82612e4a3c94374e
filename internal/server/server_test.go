package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mealplan/internal/discover"
	"github.com/desertthunder/mealplan/internal/models"
)

type fakeSource struct {
	state     discover.State
	resolved  bool
	refreshed bool
	queried   bool
}

func (f *fakeSource) State(context.Context) discover.State {
	f.queried = true
	return f.state
}
func (f *fakeSource) Authenticated() bool { return f.state.Authenticated }
func (f *fakeSource) Resolve(context.Context) discover.State {
	f.resolved = true
	return f.state
}
func (f *fakeSource) Refresh() { f.refreshed = true }

func TestBasicRouter(t *testing.T) {
	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.HandleFunc(http.MethodGet, "/x", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("Method Not Allowed", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodGet, "/x", func(w http.ResponseWriter, r *http.Request) {})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/x", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(Recover(log.New(&bytes.Buffer{})))
		router.HandleFunc(http.MethodGet, "/boom", func(w http.ResponseWriter, r *http.Request) { panic("boom") })

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		router := NewBasicRouter()
		router.Use(Logging(log.New(&buf)))
		router.HandleFunc(http.MethodGet, "/teapot", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

		out := buf.String()
		if !strings.Contains(out, "/teapot") || !strings.Contains(out, "418") {
			t.Errorf("expected path and status in log, got %q", out)
		}
	})
}

func TestDiscoverHandler(t *testing.T) {
	newRouter := func(src *fakeSource) *BasicRouter {
		router := NewBasicRouter()
		router.Handler(NewDiscoverHandler(src, log.New(&bytes.Buffer{})))
		return router
	}

	get := func(t *testing.T, router http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
		t.Helper()
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
		}
		return rec, body
	}

	t.Run("Discover", func(t *testing.T) {
		src := &fakeSource{state: discover.State{
			AllRecipes: []models.DisplayRecipe{{ID: models.IntID(1), Name: "Soup", Time: "20 min", Servings: 2, Image: "🥣"}},
		}}

		rec, body := get(t, newRouter(src), DiscoverPath)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Header().Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %s", rec.Header().Get("Content-Type"))
		}
		recipes, ok := body["allRecipes"].([]any)
		if !ok || len(recipes) != 1 {
			t.Fatalf("unexpected allRecipes %v", body["allRecipes"])
		}
		if recipes[0].(map[string]any)["id"] != float64(1) {
			t.Errorf("expected numeric id, got %v", recipes[0])
		}
		if body["loading"] != false {
			t.Errorf("expected loading false, got %v", body["loading"])
		}
		if _, ok := body["error"]; ok {
			t.Error("expected no error field")
		}
		if src.resolved || src.refreshed {
			t.Error("plain request should neither wait nor refresh")
		}
	})

	t.Run("Loading Returns Empty Array", func(t *testing.T) {
		_, body := get(t, newRouter(&fakeSource{state: discover.State{Loading: true}}), DiscoverPath)

		if recipes, ok := body["allRecipes"].([]any); !ok || len(recipes) != 0 {
			t.Errorf("expected empty array, got %v", body["allRecipes"])
		}
		if body["loading"] != true {
			t.Errorf("expected loading true, got %v", body["loading"])
		}
	})

	t.Run("Wait And Refresh", func(t *testing.T) {
		src := &fakeSource{}
		get(t, newRouter(src), DiscoverPath+"?wait=true&refresh=1")

		if !src.resolved || !src.refreshed {
			t.Errorf("expected resolve and refresh, got %+v", src)
		}
	})

	t.Run("Error Field", func(t *testing.T) {
		src := &fakeSource{state: discover.State{Err: errors.New("upstream down")}}
		_, body := get(t, newRouter(src), DiscoverPath)

		if body["error"] != "upstream down" {
			t.Errorf("expected error field, got %v", body["error"])
		}
	})

	t.Run("Health", func(t *testing.T) {
		src := &fakeSource{state: discover.State{Authenticated: true}}
		_, body := get(t, newRouter(src), HealthPath)

		if body["status"] != "ok" || body["authenticated"] != true {
			t.Errorf("unexpected health body %v", body)
		}
		if src.queried || src.resolved {
			t.Error("health check must not touch the discover list")
		}
	})
}
