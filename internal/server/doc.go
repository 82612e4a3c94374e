// Package server exposes the discover list over HTTP.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] added first is outermost, so it sees the request first and the response last.
// [Logging] and [Recover] are the stock middleware.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so wrong methods get 405.
//
// # Handlers
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes.
//
// [DiscoverHandler] serves:
//   - GET /api/discover : {"allRecipes": [...], "loading": bool}, plus "error" when the authenticated fetch failed
//   - GET /health : liveness and current authentication state
//
// [Server] runs a router until its context is canceled and then shuts down gracefully.
package server
