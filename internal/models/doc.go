// Package models defines domain entities and persistence interfaces for the mealplan discover service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing remote and display data
//   - [RecipeID] : Numeric or string recipe identifier
//   - [DisplayRecipe] : Display-ready recipe shown on the discover screen
//   - [UserRecipe] : Raw recipe authored locally by the current user
//   - [DiscoverResponse] : Envelope returned by the discover and admin endpoints
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedRecipe] : Locally stored user recipe with sequence, timestamps and soft delete
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
