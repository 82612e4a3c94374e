package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/mealplan/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve exposes the discover list over HTTP until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		r.cache.Run(ctx, r.config.Cache.SweepInterval.Duration)
	}()

	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger), server.Recover(r.logger))
	router.Handler(server.NewDiscoverHandler(r.discover, r.logger))

	// Start the first catalog fetch so early requests find it in flight.
	r.discover.State(ctx)

	err := server.NewServer(cfg.Address(), router, r.logger).Run(ctx)
	stop()
	<-janitorDone
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
