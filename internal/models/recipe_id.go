package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type idKind uint8

const (
	idNone idKind = iota
	idNumber
	idString
)

// RecipeID identifies a recipe by either a number or a string.
//
// Two IDs are equal only when both kind and value match, so 1 and "1" are distinct.
// The zero value is a missing ID; all missing IDs compare equal.
// RecipeID is comparable and safe to use as a map key.
type RecipeID struct {
	kind  idKind
	value string
}

// NumberID returns a numeric [RecipeID].
func NumberID(n float64) RecipeID {
	return RecipeID{kind: idNumber, value: strconv.FormatFloat(n, 'f', -1, 64)}
}

// IntID returns a numeric [RecipeID] from an integer.
func IntID(n int64) RecipeID {
	return RecipeID{kind: idNumber, value: strconv.FormatInt(n, 10)}
}

// StringID returns a string [RecipeID].
func StringID(s string) RecipeID {
	return RecipeID{kind: idString, value: s}
}

// IsZero reports whether the ID is missing.
func (id RecipeID) IsZero() bool { return id.kind == idNone }

// IsNumber reports whether the ID is numeric.
func (id RecipeID) IsNumber() bool { return id.kind == idNumber }

// Equal reports whether both IDs have the same kind and value.
func (id RecipeID) Equal(other RecipeID) bool { return id == other }

// String returns the ID's value without quoting; missing IDs render as an empty string.
func (id RecipeID) String() string { return id.value }

// MarshalJSON encodes numeric IDs as JSON numbers, string IDs as JSON strings and missing IDs as null.
func (id RecipeID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idNumber:
		return []byte(id.value), nil
	case idString:
		return json.Marshal(id.value)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a JSON number, string or null.
func (id *RecipeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = RecipeID{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid recipe id: %w", err)
		}
		*id = StringID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid recipe id %s: %w", string(data), err)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("invalid recipe id %s: %w", string(data), err)
	}
	*id = NumberID(f)
	return nil
}
