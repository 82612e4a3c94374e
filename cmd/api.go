package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/mealplan/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to the recipe backend, sending the session token when there is one.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	pretty := cmd.Bool("pretty")

	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	r.logger.Info("GET request", "path", path)

	get := r.api.Get
	if r.session.IsAuthenticated() {
		get = r.api.GetAuthorized
	}

	resp, err := get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
