package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mealplan/internal/shared"
	"github.com/desertthunder/mealplan/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive discover browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.cache.Run(ctx, r.config.Cache.SweepInterval.Duration)

	model := ui.NewModel(ctx, r.discover)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
