// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/mealplan/internal/models"
)

// MockRecipeAPI is a test double for the remote recipe catalog.
//
// When Gate is non-nil every call blocks until Gate is closed or the context is done.
type MockRecipeAPI struct {
	mu       sync.Mutex
	Discover *models.DiscoverResponse
	Admin    *models.DiscoverResponse
	DiscErr  error
	AdminErr error
	Gate     chan struct{}

	discoverCalls atomic.Int32
	adminCalls    atomic.Int32
}

func (m *MockRecipeAPI) GetDiscoverRecipes(ctx context.Context) (*models.DiscoverResponse, error) {
	m.discoverCalls.Add(1)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Discover, m.DiscErr
}

func (m *MockRecipeAPI) GetAdminRecipes(ctx context.Context) (*models.DiscoverResponse, error) {
	m.adminCalls.Add(1)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Admin, m.AdminErr
}

// SetDiscover replaces the authenticated response while calls may be in flight.
func (m *MockRecipeAPI) SetDiscover(resp *models.DiscoverResponse, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Discover, m.DiscErr = resp, err
}

func (m *MockRecipeAPI) DiscoverCalls() int { return int(m.discoverCalls.Load()) }
func (m *MockRecipeAPI) AdminCalls() int    { return int(m.adminCalls.Load()) }

func (m *MockRecipeAPI) wait(ctx context.Context) error {
	if m.Gate == nil {
		return nil
	}
	select {
	case <-m.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FakeClock is a manually advanced clock for cache windows.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// MockAuth is a switchable authentication state.
type MockAuth struct {
	authenticated atomic.Bool
}

func NewMockAuth(authenticated bool) *MockAuth {
	m := &MockAuth{}
	m.authenticated.Store(authenticated)
	return m
}

func (m *MockAuth) IsAuthenticated() bool  { return m.authenticated.Load() }
func (m *MockAuth) Set(authenticated bool) { m.authenticated.Store(authenticated) }

// MockUserRecipes is an in-memory user recipe list that counts loads.
type MockUserRecipes struct {
	mu      sync.Mutex
	recipes []models.UserRecipe
	version uint64
	loads   int
	Err     error
}

func NewMockUserRecipes(recipes ...models.UserRecipe) *MockUserRecipes {
	return &MockUserRecipes{recipes: recipes}
}

func (m *MockUserRecipes) Recipes() ([]models.UserRecipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.UserRecipe(nil), m.recipes...), nil
}

func (m *MockUserRecipes) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Set replaces the list and bumps the version.
func (m *MockUserRecipes) Set(recipes ...models.UserRecipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes = recipes
	m.version++
}

func (m *MockUserRecipes) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
