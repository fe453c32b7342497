package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/alexandremahdhaoui/gentask/internal/ctxlog"
	"github.com/alexandremahdhaoui/gentask/internal/version"
	"github.com/caarlos0/env/v11"
)

// MCPFlag starts a binary as an MCP server on its stdio.
const MCPFlag = "--mcp"

// Config holds the configuration for CLI bootstrap.
type Config struct {
	// Name is the binary name (e.g., "gentask", "gentask-engine-oapi")
	Name string

	// Version information (typically set via ldflags)
	Version        string
	CommitSHA      string
	BuildTimestamp string

	// Usage is printed by the help subcommand.
	Usage string

	// RunCLI is the function to execute in normal CLI mode
	RunCLI func(ctx context.Context, args []string) error

	// RunMCP is the function to execute in MCP server mode (optional)
	// If nil, --mcp flag will result in an error
	RunMCP func(ctx context.Context) error

	// SuccessHandler is called when RunCLI completes successfully (optional)
	SuccessHandler func(w io.Writer)

	// FailureHandler is called when RunCLI returns an error (optional)
	// Defaults to printing the error to stderr.
	FailureHandler func(w io.Writer, err error)
}

// LogEnvs configures the process logger.
type LogEnvs struct {
	// Level is one of debug, info, warn or error.
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// Format is text or json.
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// Bootstrap runs the binary described by cfg with the process arguments.
//
// This function will call os.Exit and never return.
func Bootstrap(cfg Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := Run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// Run runs the binary described by cfg and returns its exit code. Logs always
// go to stderr so that stdout stays free for the MCP stream.
func Run(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) int {
	envs := LogEnvs{} //nolint:exhaustruct // unmarshal
	if err := env.Parse(&envs); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger := ctxlog.New(stderr, envs.Level, envs.Format).With("tool", cfg.Name)
	slog.SetDefault(logger)
	ctx = ctxlog.WithLogger(ctx, logger)

	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			version.New(cfg.Name, cfg.Version, cfg.CommitSHA, cfg.BuildTimestamp).Print(stdout)
			return 0
		case "help", "--help", "-h":
			fmt.Fprint(stdout, cfg.Usage)
			return 0
		}
	}

	if slices.Contains(args, MCPFlag) {
		if cfg.RunMCP == nil {
			logger.Error("MCP mode not supported")
			return 1
		}

		if err := cfg.RunMCP(ctx); err != nil {
			logger.Error("MCP server error", "error", err)
			return 1
		}

		return 0
	}

	if err := cfg.RunCLI(ctx, args); err != nil {
		if cfg.FailureHandler != nil {
			cfg.FailureHandler(stderr, err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	if cfg.SuccessHandler != nil {
		cfg.SuccessHandler(stdout)
	}

	return 0
}
