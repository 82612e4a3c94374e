// Package cache implements a keyed stale-while-revalidate store for asynchronous query results.
//
// A [Cache] is owned by the composition root and injected wherever query results are needed,
// so nothing depends on ambient global state.
//
// # Windows
//
//   - StaleTime: data is fresh for this long after a successful fetch. Fresh data is served without a fetch.
//   - CacheTime: entries not used for this long are evicted by [Cache.Sweep] (or the [Cache.Run] janitor).
//     Stale data is still served, and revalidated in the background, until it is evicted.
//   - ErrorRetry: after a failed fetch, [Cache.Query] waits this long before trying again.
//
// # Coalescing
//
// Fetches are coalesced per key with [singleflight.Group]: concurrent callers share the in-flight fetch and its result.
// Fetches are detached from caller cancellation, so an abandoned fetch still populates the cache.
//
// # Access Patterns
//
//   - [Cache.Query] never blocks. It returns a [State] with Data, Loading and Err and schedules a fetch when needed.
//   - [Cache.Fetch] blocks until fresh data (or an error) is available.
package cache
