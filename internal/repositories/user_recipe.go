package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/shared"
)

const userRecipeColumns = `id, sequence, title, name, cook_time, servings, ingredients, instructions, created_at, updated_at, deleted_at`

// UserRecipeRepository implements models.Repository[*models.PersistedRecipe] for locally authored recipes.
//
// Every successful write bumps [UserRecipeRepository.Version] so readers can tell when [UserRecipeRepository.Recipes] changed.
type UserRecipeRepository struct {
	db      *sql.DB
	version atomic.Uint64
}

var _ models.Repository[*models.PersistedRecipe] = (*UserRecipeRepository)(nil)

// NewUserRecipeRepository creates a new UserRecipeRepository with the given database connection
func NewUserRecipeRepository(db *sql.DB) *UserRecipeRepository {
	return &UserRecipeRepository{db: db}
}

// Create inserts a new recipe with a generated ID and sequence
func (r *UserRecipeRepository) Create(recipe *models.PersistedRecipe) error {
	recipe.SetID(shared.GenerateID())
	if err := recipe.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "user_recipes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	recipe.SetSequence(sequence)

	ingredients, instructions, err := encodeLists(recipe.Recipe)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_recipes (id, sequence, title, name, cook_time, servings, ingredients, instructions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		recipe.ID(),
		sequence,
		recipe.Recipe.Title,
		recipe.Recipe.Name,
		recipe.Recipe.CookTime,
		recipe.Recipe.Servings,
		ingredients,
		instructions,
		recipe.CreatedAt(),
		recipe.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}

	r.version.Add(1)
	return nil
}

// Get retrieves a recipe by ID, excluding soft-deleted recipes
func (r *UserRecipeRepository) Get(id string) (*models.PersistedRecipe, error) {
	query := `SELECT ` + userRecipeColumns + ` FROM user_recipes WHERE id = ? AND deleted_at IS NULL`

	recipe, err := scanRecipe(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRecipeNotFound, id)
	}
	return recipe, err
}

// Find resolves a recipe by full ID, unique ID prefix, or sequence number ("#3" or "3").
func (r *UserRecipeRepository) Find(ref string) (*models.PersistedRecipe, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: recipe reference", shared.ErrMissingArgument)
	}

	if seq, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
		query := `SELECT ` + userRecipeColumns + ` FROM user_recipes WHERE sequence = ? AND deleted_at IS NULL`
		recipe, err := scanRecipe(r.db.QueryRow(query, seq))
		if err == nil {
			return recipe, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	query := `SELECT ` + userRecipeColumns + ` FROM user_recipes WHERE id LIKE ? || '%' AND deleted_at IS NULL LIMIT 2`
	recipes, err := r.query(query, ref)
	if err != nil {
		return nil, err
	}

	switch len(recipes) {
	case 0:
		return nil, fmt.Errorf("%w: %s", shared.ErrRecipeNotFound, ref)
	case 1:
		return recipes[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches more than one recipe", shared.ErrInvalidArgument, ref)
	}
}

// Update modifies an existing recipe
func (r *UserRecipeRepository) Update(recipe *models.PersistedRecipe) error {
	if err := recipe.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	ingredients, instructions, err := encodeLists(recipe.Recipe)
	if err != nil {
		return err
	}

	now := time.Now()
	query := `
		UPDATE user_recipes
		SET title = ?, name = ?, cook_time = ?, servings = ?, ingredients = ?, instructions = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		recipe.Recipe.Title,
		recipe.Recipe.Name,
		recipe.Recipe.CookTime,
		recipe.Recipe.Servings,
		ingredients,
		instructions,
		now,
		recipe.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}

	if err := requireRow(result, recipe.ID()); err != nil {
		return err
	}

	recipe.SetUpdatedAt(now)
	r.version.Add(1)
	return nil
}

// Delete soft-deletes a recipe by ID
func (r *UserRecipeRepository) Delete(id string) error {
	query := `UPDATE user_recipes SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	if err := requireRow(result, id); err != nil {
		return err
	}

	r.version.Add(1)
	return nil
}

// List retrieves recipes ordered by sequence, excluding soft-deleted recipes.
//
// Supported criteria: "search" (substring of title or name) and "limit" (int).
func (r *UserRecipeRepository) List(criteria map[string]any) ([]*models.PersistedRecipe, error) {
	query := `SELECT ` + userRecipeColumns + ` FROM user_recipes WHERE deleted_at IS NULL`
	args := []any{}

	if search, ok := criteria["search"].(string); ok && search != "" {
		query += " AND (title LIKE ? OR name LIKE ?)"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return r.query(query, args...)
}

// Recipes returns every live recipe in creation order.
func (r *UserRecipeRepository) Recipes() ([]models.UserRecipe, error) {
	persisted, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	recipes := make([]models.UserRecipe, 0, len(persisted))
	for _, p := range persisted {
		recipes = append(recipes, p.Recipe)
	}
	return recipes, nil
}

// Version returns a counter that increases on every successful write through this repository.
func (r *UserRecipeRepository) Version() uint64 {
	return r.version.Load()
}

func (r *UserRecipeRepository) query(query string, args ...any) ([]*models.PersistedRecipe, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*models.PersistedRecipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return recipes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecipe scans a row from either [sql.Row] or [sql.Rows]. [sql.ErrNoRows] is returned unwrapped.
func scanRecipe(row scanner) (*models.PersistedRecipe, error) {
	var (
		id           string
		sequence     int
		recipe       models.UserRecipe
		ingredients  string
		instructions string
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &sequence, &recipe.Title, &recipe.Name, &recipe.CookTime, &recipe.Servings,
		&ingredients, &instructions, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan recipe: %w", err)
	}

	if err := json.Unmarshal([]byte(ingredients), &recipe.Ingredients); err != nil {
		return nil, fmt.Errorf("%w: ingredients of recipe %s: %v", shared.ErrDecode, id, err)
	}
	if err := json.Unmarshal([]byte(instructions), &recipe.Instructions); err != nil {
		return nil, fmt.Errorf("%w: instructions of recipe %s: %v", shared.ErrDecode, id, err)
	}

	if len(recipe.Ingredients) == 0 {
		recipe.Ingredients = nil
	}
	if len(recipe.Instructions) == 0 {
		recipe.Instructions = nil
	}

	persisted := models.NewPersistedRecipe(sequence, recipe)
	persisted.SetID(id)
	persisted.SetCreatedAt(createdAt)
	persisted.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		persisted.SetDeletedAt(&deletedAt.Time)
	}

	return persisted, nil
}

func encodeLists(recipe models.UserRecipe) (string, string, error) {
	ingredients, err := json.Marshal(nonNil(recipe.Ingredients))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode ingredients: %w", err)
	}
	instructions, err := json.Marshal(nonNil(recipe.Instructions))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode instructions: %w", err)
	}
	return string(ingredients), string(instructions), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s not found or already deleted", shared.ErrRecipeNotFound, id)
	}
	return nil
}
