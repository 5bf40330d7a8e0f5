package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hpungsan/reelcraft/internal/config"
	"github.com/hpungsan/reelcraft/internal/db"
	"github.com/hpungsan/reelcraft/internal/generate"
	"github.com/hpungsan/reelcraft/internal/llm"
	"github.com/hpungsan/reelcraft/internal/logging"
	"github.com/hpungsan/reelcraft/internal/mcp"
	"github.com/hpungsan/reelcraft/internal/ops"
	"github.com/hpungsan/reelcraft/internal/plan"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"generate": true, "variation": true, "refine": true, "refine-batch": true,
	"restore": true, "history": true, "show": true, "sessions": true,
	"generations": true, "export": true, "lint": true, "import": true,
	"delete": true, "usage": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false
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

func printBanner() {
	fmt.Println(`
   ┏━┓┏━╸┏━╸╻  ┏━╸┏━┓┏━┓┏━╸╺┳╸
   ┣┳┛┣╸ ┣╸ ┃  ┃  ┣┳┛┣━┫┣╸  ┃
   ╹┗╸┗━╸┗━╸┗━╸┗━╸╹┗╸╹ ╹╹   ╹

  Títulos, legendas e roteiros para YouTube, TikTok e Reels

  Usage: reelcraft <command> [options]
         reelcraft --help

  MCP server mode requires piped input.`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Help and version need no database or model.
	if isHelpOrVersion() {
		app := newCLIApp(nil, zerolog.Nop())
		if err := app.Run(os.Args); err != nil {
			fail("%v", err)
		}
		return
	}

	// Unknown argument + terminal: report it instead of starting the MCP server.
	if !isCLIMode() && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'reelcraft --help' for usage.\n")
		os.Exit(1)
	}

	// A missing .env is normal; the environment may already carry the keys.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fail("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".reelcraft")

	cfg, err := config.Load(baseDir)
	if err != nil {
		fail("failed to load config: %v", err)
	}
	logger := logging.NewConsole(cfg.LogLevel)

	database, err := db.Init(baseDir)
	if err != nil {
		fail("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	client, err := llm.New(context.Background(), cfg, logger)
	if err != nil {
		fail("failed to create model client: %v", err)
	}
	defer client.Close()

	pl, err := plan.New(database, cfg)
	if err != nil {
		fail("%v", err)
	}
	svc := ops.New(database, cfg, generate.New(client, generate.WithLogger(logger)), pl, ops.WithLogger(logger))

	if isCLIMode() {
		app := newCLIApp(svc, logger)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger.Debug().Str("version", Version).Msg("starting MCP server on stdio")
	if err := mcp.Run(svc, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
