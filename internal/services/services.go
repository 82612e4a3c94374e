// package services implements HTTP clients for the recipe backend and the local auth session
package services

// Recipe backend endpoints.
const (
	DiscoverRecipesPath = "/api/recipes/discover"
	AdminRecipesPath    = "/api/admin/recipes"
	HealthPath          = "/health"
	TokenPath           = "/api/auth/token"
)
