package repositories

import (
	"errors"
	"testing"

	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/shared"
)

func TestUserRecipeRepositoryErrors(t *testing.T) {
	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewUserRecipeRepository(setupTestDB(t))
			p := models.NewPersistedRecipe(0, models.UserRecipe{Title: "Ghost"})
			p.SetID("nonexistent-id")

			if err := repo.Update(p); !errors.Is(err, shared.ErrRecipeNotFound) {
				t.Fatalf("expected ErrRecipeNotFound, got %v", err)
			}
			if repo.Version() != 0 {
				t.Errorf("failed update should not bump version, got %d", repo.Version())
			}
		})

		t.Run("Deleted", func(t *testing.T) {
			repo := NewUserRecipeRepository(setupTestDB(t))
			p := mustCreate(t, repo, models.UserRecipe{Title: "Soup"})
			if err := repo.Delete(p.ID()); err != nil {
				t.Fatalf("failed to delete recipe: %v", err)
			}

			p.Recipe.Title = "Soup Again"
			if err := repo.Update(p); !errors.Is(err, shared.ErrRecipeNotFound) {
				t.Fatalf("expected ErrRecipeNotFound for deleted recipe, got %v", err)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			repo := NewUserRecipeRepository(setupTestDB(t))
			p := mustCreate(t, repo, models.UserRecipe{Title: "Soup"})

			p.Recipe.Title = ""
			if err := repo.Update(p); !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			repo := NewUserRecipeRepository(setupTestDB(t))

			if err := repo.Delete("nonexistent-id"); !errors.Is(err, shared.ErrRecipeNotFound) {
				t.Fatalf("expected ErrRecipeNotFound, got %v", err)
			}
		})
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserRecipeRepository(db)
		p := mustCreate(t, repo, models.UserRecipe{Title: "Soup"})
		db.Close()

		if err := repo.Create(models.NewPersistedRecipe(0, models.UserRecipe{Title: "Stew"})); err == nil {
			t.Error("expected error creating recipe on closed database")
		}
		if _, err := repo.Get(p.ID()); err == nil || errors.Is(err, shared.ErrRecipeNotFound) {
			t.Errorf("expected database error from Get, got %v", err)
		}
		if _, err := repo.List(nil); err == nil {
			t.Error("expected error listing recipes on closed database")
		}
		if _, err := repo.Recipes(); err == nil {
			t.Error("expected error loading recipes on closed database")
		}
		if err := repo.Delete(p.ID()); err == nil {
			t.Error("expected error deleting recipe on closed database")
		}
	})

	t.Run("NextSequence", func(t *testing.T) {
		t.Run("MissingTable", func(t *testing.T) {
			db := setupTestDB(t)

			if _, err := NextSequence(db, "nonexistent"); err == nil {
				t.Fatal("expected error for missing sequence table")
			}
		})

		t.Run("Increments", func(t *testing.T) {
			db := setupTestDB(t)

			first, err := NextSequence(db, "user_recipes")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			second, err := NextSequence(db, "user_recipes")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if second != first+1 {
				t.Errorf("expected %d, got %d", first+1, second)
			}
		})
	})
}
