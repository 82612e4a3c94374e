package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mealplan/internal/models"
	"github.com/desertthunder/mealplan/internal/shared"
	"golang.org/x/oauth2"
)

// RecipeService provides typed access to the recipe backend's catalog endpoints.
type RecipeService struct {
	api      *APIService
	clientID string
	logger   *log.Logger
}

// NewRecipeService creates a [RecipeService] on top of api.
func NewRecipeService(api *APIService, clientID string, logger *log.Logger) *RecipeService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RecipeService{api: api, clientID: clientID, logger: logger}
}

// GetDiscoverRecipes fetches the catalog shown to authenticated users.
func (s *RecipeService) GetDiscoverRecipes(ctx context.Context) (*models.DiscoverResponse, error) {
	resp, err := s.api.GetAuthorized(ctx, DiscoverRecipesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return s.decode(resp, DiscoverRecipesPath)
}

// GetAdminRecipes fetches the fallback catalog shown to guests.
func (s *RecipeService) GetAdminRecipes(ctx context.Context) (*models.DiscoverResponse, error) {
	resp, err := s.api.Get(ctx, AdminRecipesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	return s.decode(resp, AdminRecipesPath)
}

func (s *RecipeService) decode(resp *APIResponse, path string) (*models.DiscoverResponse, error) {
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, path, resp.StatusCode)
	}

	var out models.DiscoverResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrDecode, path, err)
	}

	s.logger.Debug("decoded recipes", "path", path, "count", len(out.Recipes))
	return &out, nil
}

// HealthStatus is the decoded body of the backend health check.
type HealthStatus struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}

// Health calls the backend health check.
func (s *RecipeService) Health(ctx context.Context) (*HealthStatus, error) {
	resp, err := s.api.Get(ctx, HealthPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	status := &HealthStatus{Status: "unknown"}
	if resp.IsJSON {
		if err := json.Unmarshal(resp.Body, status); err != nil {
			return nil, fmt.Errorf("%w: health: %v", shared.ErrDecode, err)
		}
	} else {
		status.Status = string(resp.Body)
	}
	return status, nil
}

// Login exchanges a username and password for a token with the OAuth2 password grant.
func (s *RecipeService) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrMissingArgument)
	}

	conf := &oauth2.Config{
		ClientID: s.clientID,
		Endpoint: oauth2.Endpoint{
			TokenURL:  s.api.BaseURL() + TokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.api.HTTPClient())
	token, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s.logger.Info("login succeeded", "user", username)
	return token, nil
}
