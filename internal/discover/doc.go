// Package discover builds the recipe list shown on the discover screen.
//
// An [Aggregator] fetches the remote catalog through a shared [cache.Cache], choosing the
// endpoint by authentication state, and merges the result with the user's own recipes.
// The merged list keeps only named recipes and the first recipe seen for each ID, with
// remote recipes ahead of user recipes.
//
// Unauthenticated fetch failures degrade to an empty catalog. Authenticated fetch failures
// are reported through [State.Err] while user recipes are still listed.
package discover
