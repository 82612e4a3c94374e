package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mealplan/internal/discover"
	"github.com/desertthunder/mealplan/internal/models"
)

const (
	DiscoverPath = "/api/discover"
	HealthPath   = "/health"
)

// DiscoverSource is the part of [discover.Aggregator] the handler needs.
type DiscoverSource interface {
	State(ctx context.Context) discover.State
	Resolve(ctx context.Context) discover.State
	Refresh()
	Authenticated() bool
}

// DiscoverHandler serves the merged discover list and a health check.
//
//	GET /api/discover            current state, never blocks
//	GET /api/discover?wait=true  waits for the in-flight fetch
//	GET /api/discover?refresh=1  marks the catalog stale first
type DiscoverHandler struct {
	source  DiscoverSource
	logger  *log.Logger
	started time.Time
}

// NewDiscoverHandler creates a [DiscoverHandler].
func NewDiscoverHandler(source DiscoverSource, logger *log.Logger) *DiscoverHandler {
	return &DiscoverHandler{source: source, logger: logger, started: time.Now()}
}

func (h *DiscoverHandler) Routes() []string {
	return []string{"GET " + DiscoverPath, "GET " + HealthPath}
}

type discoverResponse struct {
	AllRecipes []models.DisplayRecipe `json:"allRecipes"`
	Loading    bool                   `json:"loading"`
	Error      string                 `json:"error,omitempty"`
}

type healthResponse struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
	Uptime        string `json:"uptime"`
}

func (h *DiscoverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case DiscoverPath:
		h.serveDiscover(w, r)
	case HealthPath:
		h.serveHealth(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *DiscoverHandler) serveDiscover(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if flag(query.Get("refresh")) {
		h.source.Refresh()
	}

	var st discover.State
	if flag(query.Get("wait")) {
		st = h.source.Resolve(r.Context())
	} else {
		st = h.source.State(r.Context())
	}

	resp := discoverResponse{AllRecipes: st.AllRecipes, Loading: st.Loading}
	if resp.AllRecipes == nil {
		resp.AllRecipes = []models.DisplayRecipe{}
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
		h.logger.Warn("serving discover list with error", "error", st.Err)
	}

	writeJSON(w, http.StatusOK, resp, h.logger)
}

func (h *DiscoverHandler) serveHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Authenticated: h.source.Authenticated(),
		Uptime:        time.Since(h.started).Round(time.Second).String(),
	}, h.logger)
}

func flag(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *log.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}
