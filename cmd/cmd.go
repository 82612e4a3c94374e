// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, markdown, csv or json",
		Value:   "text",
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create the config file if missing, initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles authentication against the recipe backend
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with username and password and store the token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Account username",
						Sources:  cli.EnvVars("MEALPLAN_USERNAME"),
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("MEALPLAN_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the local session and check the backend (calls /health)",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored token",
				Action: r.AuthLogout,
			},
		},
	}
}

// discoverCommand prints the merged discover list
func discoverCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "Browse the discover list (remote catalog plus your recipes)",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print the discover list",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.DiscoverList,
			},
			{
				Name:  "export",
				Usage: "Write the discover list in several formats at once, with a manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory (default: discover_export_{epoch})",
					},
					&cli.StringSliceFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Format to write (repeatable, default: all)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 4,
					},
				},
				Action: r.DiscoverExport,
			},
			{
				Name:  "show",
				Usage: "Show one recipe from the discover list by ID or name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "recipe"},
				},
				Action: r.DiscoverShow,
			},
		},
	}
}

// recipesCommand manages locally authored recipes
func recipesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recipes",
		Aliases: []string{"recipe", "r"},
		Usage:   "Manage your own recipes",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a recipe",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Recipe title"},
					&cli.StringFlag{Name: "name", Usage: "Recipe name, used when no title is given"},
					&cli.IntFlag{Name: "cook-time", Usage: "Cook time in minutes"},
					&cli.IntFlag{Name: "servings", Aliases: []string{"s"}, Usage: "Number of servings"},
					&cli.StringSliceFlag{Name: "ingredient", Aliases: []string{"i"}, Usage: "Ingredient (repeatable)"},
					&cli.StringSliceFlag{Name: "step", Usage: "Instruction step (repeatable)"},
				},
				Action: r.RecipesAdd,
			},
			{
				Name:  "list",
				Usage: "List your recipes",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.StringFlag{Name: "search", Usage: "Only recipes whose title or name contains this text"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of recipes"},
				},
				Action: r.RecipesList,
			},
			{
				Name:  "show",
				Usage: "Show a recipe by ID, ID prefix or sequence number",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Action: r.RecipesShow,
			},
			{
				Name:  "edit",
				Usage: "Change fields of a recipe",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
					&cli.StringFlag{Name: "name", Usage: "New name"},
					&cli.IntFlag{Name: "cook-time", Usage: "New cook time in minutes"},
					&cli.IntFlag{Name: "servings", Aliases: []string{"s"}, Usage: "New number of servings"},
					&cli.StringSliceFlag{Name: "ingredient", Aliases: []string{"i"}, Usage: "Replace ingredients (repeatable)"},
					&cli.StringSliceFlag{Name: "step", Usage: "Replace instruction steps (repeatable)"},
				},
				Action: r.RecipesEdit,
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "Delete a recipe",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "ref"},
				},
				Action: r.RecipesDelete,
			},
		},
	}
}

// apiCommand handles direct backend calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the recipe backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints the response body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// serveCommand runs the discover HTTP server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the discover list over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (defaults to server.host)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (defaults to server.port)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for browsing the discover list.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse the discover list interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/mealplan-tui.log",
			},
		},
		Action: r.TUI,
	}
}
