// Package repositories implements SQLite persistence for locally authored recipes.
//
// Key Implementations:
//   - [UserRecipeRepository] : CRUD with soft deletes, lookups by ID prefix or sequence, and a write version counter
//
// Sequence numbers provide stable, human-readable ordering (e.g., recipe #3) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
