package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// AuthLogin signs in with the password grant and stores the token in the session file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	password := cmd.String("password")

	r.logger.Info("signing in", "user", username, "url", r.api.BaseURL())

	token, err := r.recipes.Login(ctx, username, password)
	if err != nil {
		return err
	}

	if err := r.session.Save(token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return r.writePlain("✓ Signed in as %s\n", username)
}

// AuthStatus reports the local session and checks the backend by calling the /health endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status")

	r.writePlainHeader("Session")
	if token, err := r.session.Token(); err != nil {
		r.writePlain("✗ %v\n", err)
	} else {
		r.writePlain("✓ Signed in\n")
		if !token.Expiry.IsZero() {
			r.writePlain("Expires: %s\n", token.Expiry.Local().Format("2006-01-02 15:04"))
		}
	}

	r.writePlain("\n")
	r.writePlainHeader("Backend")
	health, err := r.recipes.Health(ctx)
	if err != nil {
		return err
	}

	authMark := "✗"
	if health.Authenticated {
		authMark = "✓"
	}
	return r.writePlain("✓ Service is healthy\nStatus: %s\nAuthenticated: %s\n", health.Status, authMark)
}

// AuthLogout forgets the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.session.IsAuthenticated() {
		r.logger.Debug("logout requested without an active session")
	}
	if err := r.session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return r.writePlain("✓ Signed out\n")
}
