package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alexandremahdhaoui/gentask/internal/cli"
	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"github.com/caarlos0/env/v11"
)

const Name = "gentask"

// Version information (set via ldflags during build)
var (
	Version        = "dev"
	CommitSHA      = "unknown"
	BuildTimestamp = "unknown"
)

const usage = `gentask - Run code generation units declared in gentask.yaml

Usage:
  gentask build [unit...]      Generate all units, or only the named ones
  gentask units                List declared units with their inputs and outputs
  gentask --mcp                Run as MCP server
  gentask version              Show version information

Environment Variables:
  GENTASK_CONFIG_PATH          Project file (default: gentask.yaml)
  GENTASK_PARALLELISM          Units generated concurrently (default: 4)
  GENTASK_FORCE                Regenerate up-to-date units (default: false)
  LOG_LEVEL                    debug, info, warn or error (default: info)
  LOG_FORMAT                   text or json (default: text)
`

// Envs configures gentask.
type Envs struct {
	ConfigPath  string `env:"GENTASK_CONFIG_PATH" envDefault:"gentask.yaml"`
	Parallelism int    `env:"GENTASK_PARALLELISM" envDefault:"4"`
	Force       bool   `env:"GENTASK_FORCE" envDefault:"false"`
}

// ----------------------------------------------------- MAIN ------------------------------------------------------- //

func main() {
	cli.Bootstrap(cli.Config{
		Name:           Name,
		Version:        Version,
		CommitSHA:      CommitSHA,
		BuildTimestamp: BuildTimestamp,
		Usage:          usage,
		RunCLI:         run,
		RunMCP:         runMCPServer,
		FailureHandler: printFailure,
	})
}

// ----------------------------------------------------- RUN -------------------------------------------------------- //

var (
	errRunning        = errors.New("running gentask")
	errUnknownCommand = errors.New("unknown command")
)

func run(ctx context.Context, args []string) error {
	envs := Envs{} //nolint:exhaustruct // unmarshal
	if err := env.Parse(&envs); err != nil {
		return flaterrors.Join(err, errRunning)
	}

	command := "build"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "build":
		b := newBuilder(envs, os.Stdout)
		if _, err := b.build(ctx, args, envs.Force); err != nil {
			return flaterrors.Join(err, errRunning)
		}
		return nil
	case "units":
		return listUnits(os.Stdout, envs.ConfigPath)
	default:
		fmt.Fprint(os.Stderr, usage)
		return flaterrors.Join(fmt.Errorf("with command %q", command), errUnknownCommand)
	}
}

func printFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "❌ Error\n%s\n", err.Error())
}
