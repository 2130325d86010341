package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hpungsan/regimen/internal/assistant"
	"github.com/hpungsan/regimen/internal/catalog"
	"github.com/hpungsan/regimen/internal/completion"
	"github.com/hpungsan/regimen/internal/config"
	"github.com/hpungsan/regimen/internal/db"
	"github.com/hpungsan/regimen/internal/logging"
	"github.com/hpungsan/regimen/internal/mcp"
	"github.com/hpungsan/regimen/internal/selection"
	"github.com/hpungsan/regimen/internal/shop"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "mcp": true,
	"products": true, "categories": true,
	"selection": true, "toggle": true, "remove": true, "clear": true,
	"routine": true, "ask": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___ ___ __ _(_)_ __  ___ _ _
  | '_/ -_) _' | | '  \/ -_) ' \
  |_| \___\__, |_|_|_|_\___|_||_|
          |___/

  Product picker and routine assistant

  Usage: regimen <command> [options]
         regimen serve        (web UI)
         regimen --help

  MCP server mode requires piped input.`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fail("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".regimen")

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fail("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fail("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	warnUnknownDisabled(logger, cfg)

	storage, closeStorage := openStorage(baseDir, cfg, logger)
	defer closeStorage()

	ctrl := newController(context.Background(), storage, cfg, logger)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(ctrl, cfg, logger)
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'regimen --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(ctrl, cfg, Version); err != nil {
		fail("%v", err)
	}
}

// openStorage opens the SQLite selection store under baseDir. When the
// database cannot be opened the selection lives in memory for this run only.
func openStorage(baseDir string, cfg *config.Config, logger *zap.Logger) (selection.Storage, func()) {
	database, err := db.Init(baseDir)
	if err != nil {
		logger.Warn("database unavailable, selection will not persist", zap.String("dir", baseDir), zap.Error(err))
		return selection.NewMemoryStorage(), func() {}
	}
	db.ConfigurePool(database, cfg)
	return db.NewKV(database), func() { _ = database.Close() }
}

// newController wires the catalog source, persisted selection and assistant.
func newController(ctx context.Context, storage selection.Storage, cfg *config.Config, logger *zap.Logger) *shop.Controller {
	httpClient := &http.Client{Timeout: cfg.CompletionTimeout()}

	completer := completion.NewClient(completion.Config{
		URL:        cfg.CompletionURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		HTTPClient: httpClient,
	})

	return shop.New(
		catalog.FromConfig(cfg, httpClient),
		selection.Load(ctx, storage, logger),
		assistant.New(completer, logger),
		logger,
	)
}

// warnUnknownDisabled logs disabled tool or type names that match nothing.
func warnUnknownDisabled(logger *zap.Logger, cfg *config.Config) {
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", zap.Strings("tools", unknown), zap.Strings("known", mcp.AllToolNames()))
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		logger.Warn("unknown types in disabled_types", zap.Strings("types", unknown), zap.Strings("known", mcp.KnownTypes))
	}
}
