// Package services talks to the recipe backend and keeps the local authentication session.
//
// # Raw API Access
//
// [APIService] performs raw HTTP requests against the backend base URL and returns an [APIResponse]
// with status, headers, body and decoded JSON when the body is JSON. Requests wait on an optional
// [rate.Limiter] and carry a bearer token from an optional [oauth2.TokenSource].
//
// # Recipe Endpoints
//
// [RecipeService] wraps [APIService] with typed access to the two catalog endpoints:
//   - GET /api/recipes/discover : catalog for authenticated users, requires a token
//   - GET /api/admin/recipes : fallback catalog for guests
//
// It also exposes the health check and the OAuth2 password grant used by "auth login".
//
// # Session
//
// [Session] holds the current [oauth2.Token], persisted as JSON in the token file.
// A session is authenticated while it holds a valid, unexpired token. It implements
// [oauth2.TokenSource] so [APIService] can attach it directly.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrNotAuthenticated] : an authorized request was made without a valid token
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrDecode] : the response body did not match the expected shape
package services
