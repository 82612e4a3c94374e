package models

import (
	"encoding/json"
	"testing"
)

func TestRecipeID(t *testing.T) {
	t.Run("Kinds Are Distinct", func(t *testing.T) {
		if IntID(1) == StringID("1") {
			t.Error("numeric 1 and string \"1\" must not be equal")
		}
		if NumberID(1) != IntID(1) {
			t.Error("NumberID(1) and IntID(1) should be equal")
		}
		if !(RecipeID{}).Equal(RecipeID{}) {
			t.Error("missing IDs should be equal")
		}
	})

	t.Run("UnmarshalJSON", func(t *testing.T) {
		tests := []struct {
			name    string
			input   string
			want    RecipeID
			wantErr bool
		}{
			{"Number", `42`, IntID(42), false},
			{"Float", `1.5`, NumberID(1.5), false},
			{"String", `"abc"`, StringID("abc"), false},
			{"Null", `null`, RecipeID{}, false},
			{"Bool", `true`, RecipeID{}, true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var got RecipeID
				err := json.Unmarshal([]byte(tt.input), &got)
				if (err != nil) != tt.wantErr {
					t.Fatalf("unexpected error state: %v", err)
				}
				if !tt.wantErr && got != tt.want {
					t.Errorf("expected %#v, got %#v", tt.want, got)
				}
			})
		}
	})

	t.Run("MarshalJSON Keeps Kind", func(t *testing.T) {
		data, err := json.Marshal([]RecipeID{IntID(7), StringID("7"), {}})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `[7,"7",null]` {
			t.Errorf("unexpected JSON: %s", data)
		}
	})
}

func TestDisplayRecipe(t *testing.T) {
	t.Run("Non-String Name Decodes As Empty", func(t *testing.T) {
		var recipes []DisplayRecipe
		input := `[{"id":1,"name":123},{"id":2,"name":null},{"id":3,"name":"Soup","servings":2}]`
		if err := json.Unmarshal([]byte(input), &recipes); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}

		if recipes[0].Displayable() || recipes[1].Displayable() {
			t.Error("recipes without a string name should not be displayable")
		}
		if !recipes[2].Displayable() || recipes[2].Servings != 2 {
			t.Errorf("unexpected third recipe: %+v", recipes[2])
		}
	})

	t.Run("Missing Recipes Field", func(t *testing.T) {
		var resp DiscoverResponse
		if err := json.Unmarshal([]byte(`{}`), &resp); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if resp.Recipes != nil {
			t.Errorf("expected nil recipes, got %v", resp.Recipes)
		}
	})
}

func TestPersistedRecipe(t *testing.T) {
	tests := []struct {
		name    string
		recipe  UserRecipe
		id      string
		wantErr bool
	}{
		{"Valid", UserRecipe{Title: "Stew"}, "id-1", false},
		{"Name Only", UserRecipe{Name: "Stew"}, "id-1", false},
		{"Missing ID", UserRecipe{Title: "Stew"}, "", true},
		{"Missing Name", UserRecipe{}, "id-1", true},
		{"Negative Cook Time", UserRecipe{Title: "Stew", CookTime: -1}, "id-1", true},
		{"Negative Servings", UserRecipe{Title: "Stew", Servings: -2}, "id-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPersistedRecipe(1, tt.recipe)
			if tt.id != "" {
				p.SetID(tt.id)
			}
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("SetID Mirrors Recipe ID", func(t *testing.T) {
		p := NewPersistedRecipe(1, UserRecipe{Title: "Stew"})
		p.SetID("abc")
		if p.Recipe.ID != StringID("abc") {
			t.Errorf("expected recipe ID abc, got %v", p.Recipe.ID)
		}
	})

	t.Run("DisplayName Prefers Title", func(t *testing.T) {
		r := UserRecipe{Title: "Title", Name: "Name"}
		if r.DisplayName() != "Title" {
			t.Errorf("expected Title, got %s", r.DisplayName())
		}
	})
}
