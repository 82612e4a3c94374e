package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DisplayRecipe is the display-ready shape rendered on the discover screen.
type DisplayRecipe struct {
	ID           RecipeID `json:"id"`
	Name         string   `json:"name"`
	Time         string   `json:"time"`
	Servings     int      `json:"servings"`
	Image        string   `json:"image"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
}

// UnmarshalJSON decodes a remote recipe. A name that is not a JSON string decodes as empty.
func (r *DisplayRecipe) UnmarshalJSON(data []byte) error {
	type alias DisplayRecipe
	aux := struct {
		*alias
		Name json.RawMessage `json:"name"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Name = ""
	if len(aux.Name) > 0 && aux.Name[0] == '"' {
		if err := json.Unmarshal(aux.Name, &r.Name); err != nil {
			return fmt.Errorf("invalid recipe name: %w", err)
		}
	}
	return nil
}

// Displayable reports whether the recipe has a non-empty name.
func (r DisplayRecipe) Displayable() bool {
	return r.Name != ""
}

// DiscoverResponse is the envelope returned by the discover and admin recipe endpoints.
type DiscoverResponse struct {
	Recipes []DisplayRecipe `json:"recipes,omitempty"`
}

// UserRecipe is a recipe authored locally by the current user.
//
// Zero values mean "absent": an empty Title falls back to Name, a zero CookTime or Servings falls back to defaults.
type UserRecipe struct {
	ID           RecipeID `json:"id"`
	Title        string   `json:"title,omitempty"`
	Name         string   `json:"name,omitempty"`
	CookTime     int      `json:"cook_time,omitempty"` // minutes
	Servings     int      `json:"servings,omitempty"`
	Ingredients  []string `json:"ingredients,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
}

// DisplayName returns the title when present, otherwise the name.
func (r UserRecipe) DisplayName() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// PersistedRecipe is a [UserRecipe] stored in the local database.
type PersistedRecipe struct {
	id        string
	sequence  int
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
	Recipe    UserRecipe
}

var _ Model = (*PersistedRecipe)(nil)

// NewPersistedRecipe wraps a [UserRecipe] for persistence with creation timestamps set to now.
func NewPersistedRecipe(sequence int, recipe UserRecipe) *PersistedRecipe {
	now := time.Now()
	return &PersistedRecipe{
		sequence:  sequence,
		createdAt: now,
		updatedAt: now,
		Recipe:    recipe,
	}
}

func (p *PersistedRecipe) ID() string            { return p.id }
func (p *PersistedRecipe) Sequence() int         { return p.sequence }
func (p *PersistedRecipe) CreatedAt() time.Time  { return p.createdAt }
func (p *PersistedRecipe) UpdatedAt() time.Time  { return p.updatedAt }
func (p *PersistedRecipe) DeletedAt() *time.Time { return p.deletedAt }

// SetID sets the database ID and mirrors it onto the wrapped recipe.
func (p *PersistedRecipe) SetID(id string) {
	p.id = id
	p.Recipe.ID = StringID(id)
}

func (p *PersistedRecipe) SetSequence(seq int)       { p.sequence = seq }
func (p *PersistedRecipe) SetCreatedAt(t time.Time)  { p.createdAt = t }
func (p *PersistedRecipe) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *PersistedRecipe) SetDeletedAt(t *time.Time) { p.deletedAt = t }
func (p *PersistedRecipe) IsDeleted() bool           { return p.deletedAt != nil }

// Validate requires an ID, a title or name, and non-negative cook time and servings.
func (p *PersistedRecipe) Validate() error {
	if p.id == "" {
		return fmt.Errorf("recipe id is required")
	}
	if p.Recipe.DisplayName() == "" {
		return fmt.Errorf("recipe title or name is required")
	}
	if p.Recipe.CookTime < 0 {
		return fmt.Errorf("cook time must not be negative: %d", p.Recipe.CookTime)
	}
	if p.Recipe.Servings < 0 {
		return fmt.Errorf("servings must not be negative: %d", p.Recipe.Servings)
	}
	return nil
}
