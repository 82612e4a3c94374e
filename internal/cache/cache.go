package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStaleTime  = 5 * time.Minute
	DefaultCacheTime  = 10 * time.Minute
	DefaultErrorRetry = 30 * time.Second
)

// FetchFunc loads the value for a key.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Options configures a [Cache].
type Options struct {
	StaleTime  time.Duration    // Data is fresh for this long after a successful fetch
	CacheTime  time.Duration    // Entries unused for this long are evicted by [Cache.Sweep]
	ErrorRetry time.Duration    // A failed fetch is not retried until this much time has passed
	Now        func() time.Time // Clock, defaults to [time.Now]
	Logger     *log.Logger      // Optional, defaults to a discarding logger
}

// State is a snapshot of a cache entry.
type State[T any] struct {
	Data      T
	HasData   bool      // A successful fetch has completed at least once
	Loading   bool      // No data yet and a fetch is in flight
	Fetching  bool      // A fetch is in flight, including background revalidation
	Stale     bool      // Data is older than StaleTime or was invalidated
	Err       error     // Error from the most recent fetch, cleared by the next success
	UpdatedAt time.Time // Time of the last successful fetch
	Version   uint64    // Changes on every successful fetch and is never reused by this cache, even after eviction
}

type entry[T any] struct {
	data        T
	hasData     bool
	err         error
	updatedAt   time.Time
	failedAt    time.Time
	lastUsed    time.Time
	version     uint64
	fetching    bool
	invalidated bool
	discard     bool
}

// Cache is a keyed stale-while-revalidate store.
//
// At most one fetch per key is in flight; concurrent callers for the same key share it.
// Fetches run detached from the caller's cancellation so a result is stored even after the caller gives up.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	group   singleflight.Group
	wg      sync.WaitGroup
	opts    Options
	logger  *log.Logger
	seq     uint64 // last version handed out; guarded by mu
}

// New creates a [Cache], filling zero options with defaults.
func New[T any](opts Options) *Cache[T] {
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.CacheTime <= 0 {
		opts.CacheTime = DefaultCacheTime
	}
	if opts.ErrorRetry <= 0 {
		opts.ErrorRetry = DefaultErrorRetry
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(discard{})
	}

	return &Cache[T]{
		entries: make(map[string]*entry[T]),
		opts:    opts,
		logger:  logger,
	}
}

// Key joins a query name and its parameters into a cache key, e.g. Key("discoverRecipes", true) is "discoverRecipes:true".
func Key(name string, params ...any) string {
	key := name
	for _, p := range params {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

// Query returns the current state for key without blocking.
//
// When the key has no data, or its data is stale and no fetch is running, a background fetch is started.
// Stale data keeps being served while it revalidates.
func (c *Cache[T]) Query(ctx context.Context, key string, fn FetchFunc[T]) State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.touch(key)
	if c.needsFetch(e) {
		c.start(ctx, key, e, fn)
	}
	return c.snapshot(e)
}

// Fetch returns fresh data for key, blocking on a fetch when needed.
//
// A fresh entry is returned without calling fn. Otherwise the caller joins the in-flight fetch or starts one.
// If the fetch fails, the last good data (if any) is returned along with the error.
func (c *Cache[T]) Fetch(ctx context.Context, key string, fn FetchFunc[T]) (T, error) {
	c.mu.Lock()
	e := c.touch(key)
	if e.hasData && !c.isStale(e) {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	ch := c.start(ctx, key, e, fn)
	c.mu.Unlock()

	select {
	case <-ch:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[key]; ok {
		e = cur
	}
	return e.data, e.err
}

// Peek returns the state for key without starting a fetch or marking it used.
func (c *Cache[T]) Peek(key string) (State[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return State[T]{}, false
	}
	return c.snapshot(e), true
}

// Invalidate marks key stale so the next [Cache.Query] or [Cache.Fetch] refetches it.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.invalidated = true
		e.failedAt = time.Time{}
	}
}

// Remove drops key. An entry with a fetch in flight is emptied instead, and that fetch's result is discarded.
func (c *Cache[T]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	if !e.fetching {
		delete(c.entries, key)
		return
	}

	var zero T
	*e = entry[T]{data: zero, lastUsed: e.lastUsed, fetching: true, discard: true}
}

// Len returns the number of entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep evicts entries that are not fetching and were last used at least CacheTime ago.
// It returns the number of evicted entries.
func (c *Cache[T]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.opts.Now()
	evicted := 0
	for key, e := range c.entries {
		if e.fetching || now.Sub(e.lastUsed) < c.opts.CacheTime {
			continue
		}
		delete(c.entries, key)
		evicted++
		c.logger.Debug("evicted cache entry", "key", key)
	}
	return evicted
}

// Run sweeps every interval until ctx is done, then waits for in-flight fetches to finish.
func (c *Cache[T]) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Wait()
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Wait blocks until every fetch started so far has stored its result.
func (c *Cache[T]) Wait() {
	c.wg.Wait()
}

// touch returns the entry for key, creating it if needed, and records the use. Callers hold c.mu.
func (c *Cache[T]) touch(key string) *entry[T] {
	e, ok := c.entries[key]
	if !ok {
		e = &entry[T]{}
		c.entries[key] = e
	}
	e.lastUsed = c.opts.Now()
	return e
}

func (c *Cache[T]) isStale(e *entry[T]) bool {
	return e.invalidated || c.opts.Now().Sub(e.updatedAt) >= c.opts.StaleTime
}

// needsFetch reports whether a background fetch should start. Callers hold c.mu.
func (c *Cache[T]) needsFetch(e *entry[T]) bool {
	if e.fetching {
		return false
	}
	if !e.failedAt.IsZero() && c.opts.Now().Sub(e.failedAt) < c.opts.ErrorRetry {
		return false
	}
	return !e.hasData || c.isStale(e)
}

// start joins or begins the fetch for key. Callers hold c.mu, which guarantees that a fetch seen as
// running has not yet stored its result and so is still registered with the singleflight group.
func (c *Cache[T]) start(ctx context.Context, key string, e *entry[T], fn FetchFunc[T]) <-chan singleflight.Result {
	if !e.fetching {
		e.fetching = true
		c.wg.Add(1)
		c.logger.Debug("fetching", "key", key, "stale", e.hasData)
	}

	fetchCtx := context.WithoutCancel(ctx)
	return c.group.DoChan(key, func() (any, error) {
		data, err := fn(fetchCtx)
		c.store(key, data, err)
		return nil, err
	})
}

// store records a fetch result. The singleflight call is forgotten under c.mu so any later caller
// that sees fetching == false starts a new call instead of joining this finished one.
// Entries are never deleted while fetching, so the entry for key still exists here.
func (c *Cache[T]) store(key string, data T, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.wg.Done()

	c.group.Forget(key)
	e := c.entries[key]
	e.fetching = false

	if e.discard {
		e.discard = false
		c.logger.Debug("discarding result for removed entry", "key", key)
		return
	}

	now := c.opts.Now()
	if err != nil {
		e.err = err
		e.failedAt = now
		c.logger.Debug("fetch failed", "key", key, "error", err)
		return
	}

	e.data = data
	e.hasData = true
	e.err = nil
	e.failedAt = time.Time{}
	e.updatedAt = now
	e.invalidated = false
	c.seq++
	e.version = c.seq
}

func (c *Cache[T]) snapshot(e *entry[T]) State[T] {
	return State[T]{
		Data:      e.data,
		HasData:   e.hasData,
		Loading:   !e.hasData && e.fetching,
		Fetching:  e.fetching,
		Stale:     e.hasData && c.isStale(e),
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		Version:   e.version,
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
