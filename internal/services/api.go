// API service for making raw HTTP requests to the recipe backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/mealplan/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// APIService provides methods for making raw HTTP requests to the recipe backend.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     oauth2.TokenSource
}

// NewAPIService creates a new API service instance for the recipe backend.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// SetRateLimit limits outgoing requests to rps per second. A non-positive rps removes the limit.
func (a *APIService) SetRateLimit(rps float64) {
	if rps <= 0 {
		a.limiter = nil
		return
	}
	a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// SetTokenSource sets where bearer tokens come from.
func (a *APIService) SetTokenSource(ts oauth2.TokenSource) {
	a.tokens = ts
}

// BaseURL returns the backend base URL without a trailing slash.
func (a *APIService) BaseURL() string {
	return a.baseURL
}

// HTTPClient returns the underlying [http.Client].
func (a *APIService) HTTPClient() *http.Client {
	return a.httpClient
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the status code is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to the specified path. A bearer token is attached when one is available.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil, false)
}

// GetAuthorized performs a GET request that requires a bearer token.
//
// Returns [shared.ErrNotAuthenticated] without sending anything when no valid token is available.
func (a *APIService) GetAuthorized(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil, true)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data, false)
}

func (a *APIService) do(ctx context.Context, method, path string, data []byte, requireAuth bool) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if err := a.authorize(req, requireAuth); err != nil {
		return nil, err
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	var jsonData any
	if err := json.Unmarshal(raw, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

func (a *APIService) authorize(req *http.Request, required bool) error {
	if a.tokens == nil {
		if required {
			return shared.ErrNotAuthenticated
		}
		return nil
	}

	token, err := a.tokens.Token()
	if err == nil && !token.Valid() {
		err = shared.ErrTokenExpired
	}
	if err != nil {
		if required {
			return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
		}
		return nil
	}

	token.SetAuthHeader(req)
	return nil
}
