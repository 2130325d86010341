package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/regimen/internal/config"
	"github.com/hpungsan/regimen/internal/errors"
	"github.com/hpungsan/regimen/internal/mcp"
	"github.com/hpungsan/regimen/internal/shop"
	"github.com/hpungsan/regimen/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(ctrl *shop.Controller, cfg *config.Config, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "regimen",
		Usage:   "Product picker and routine assistant",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(ctrl, cfg, logger),
			mcpCmd(ctrl, cfg),
			productsCmd(ctrl),
			categoriesCmd(ctrl),
			selectionCmd(ctrl),
			toggleCmd(ctrl),
			removeCmd(ctrl),
			clearCmd(ctrl),
			routineCmd(ctrl),
			askCmd(ctrl),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(ctrl *shop.Controller, cfg *config.Config, logger *zap.Logger) *cli.Command {
	defaults := config.DefaultConfig()
	if cfg != nil {
		defaults = cfg
	}
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: defaults.Bind, Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: defaults.Port, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(ctrl, logger, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, logger)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(ctrl *shop.Controller, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run the MCP server on stdio",
		Action: func(c *cli.Context) error {
			return mcp.Run(ctrl, cfg, Version)
		},
	}
}

// productsCmd creates the products command.
func productsCmd(ctrl *shop.Controller) *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "List catalog products",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Only products in this category"},
		},
		Action: func(c *cli.Context) error {
			category := strings.TrimSpace(c.String("category"))
			products, err := ctrl.ProductsInCategory(c.Context, category)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"category": category, "products": products})
		},
	}
}

// categoriesCmd creates the categories command.
func categoriesCmd(ctrl *shop.Controller) *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List product categories",
		Action: func(c *cli.Context) error {
			categories, err := ctrl.Categories(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"categories": categories})
		},
	}
}

// selectionCmd creates the selection command.
func selectionCmd(ctrl *shop.Controller) *cli.Command {
	return &cli.Command{
		Name:  "selection",
		Usage: "Show selected products",
		Action: func(c *cli.Context) error {
			return outputJSON(ctrl.Selection())
		},
	}
}

// toggleCmd creates the toggle command.
func toggleCmd(ctrl *shop.Controller) *cli.Command {
	return &cli.Command{
		Name:      "toggle",
		Usage:     "Select a product, or deselect it if already selected",
		ArgsUsage: "<product-id>",
		Action: func(c *cli.Context) error {
			id, err := argInt(c, "product id")
			if err != nil {
				return outputError(err)
			}
			out, err := ctrl.Toggle(c.Context, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// removeCmd creates the remove command.
func removeCmd(ctrl *shop.Controller) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove the selected product at a zero-based position",
		ArgsUsage: "<position>",
		Action: func(c *cli.Context) error {
			position, err := argInt(c, "position")
			if err != nil {
				return outputError(err)
			}
			out, err := ctrl.RemoveAt(c.Context, position)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(ctrl *shop.Controller) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every selected product",
		Action: func(c *cli.Context) error {
			out, err := ctrl.Clear(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(out)
		},
	}
}

// routineCmd creates the routine command.
func routineCmd(ctrl *shop.Controller) *cli.Command {
	return &cli.Command{
		Name:  "routine",
		Usage: "Generate a routine from the selected products",
		Action: func(c *cli.Context) error {
			res := ctrl.GenerateRoutine(c.Context)
			if !res.Requested {
				return outputJSON(map[string]any{"requested": false, "notice": res.Notice})
			}
			return outputJSON(map[string]any{
				"requested": true,
				"fallback":  res.Fallback,
				"reply":     res.Reply,
			})
		},
	}
}

// askCmd creates the ask command. The conversation starts fresh on every run.
func askCmd(ctrl *shop.Controller) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask the assistant a question (argument or stdin)",
		ArgsUsage: "[question]",
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(text) == "" && stdinHasData() {
				var err error
				if text, err = readStdin(); err != nil {
					return outputError(errors.NewInternal(err))
				}
			}

			reply, ok := ctrl.Ask(c.Context, text)
			if !ok {
				return outputError(errors.NewInvalidRequest("question is required"))
			}
			return outputJSON(map[string]any{"reply": reply})
		},
	}
}

// outputJSON writes JSON output to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if rErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", rErr.Code, rErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// argInt parses the first positional argument as an integer.
func argInt(c *cli.Context, name string) (int, error) {
	if c.NArg() == 0 {
		return 0, errors.NewInvalidRequest(name + " is required")
	}
	n, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return 0, errors.NewInvalidRequest(name + " must be an integer")
	}
	return n, nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
