package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alexandremahdhaoui/gentask/internal/cli"
	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"github.com/caarlos0/env/v11"
)

const Name = "gentask-engine-oapi"

// Version information (set via ldflags during build)
var (
	Version        = "dev"
	CommitSHA      = "unknown"
	BuildTimestamp = "unknown"
)

const usage = `gentask-engine-oapi - Generate Go clients, servers and models with oapi-codegen

Usage:
  gentask-engine-oapi <config.yaml>   Generate code from a generation config file
  gentask-engine-oapi --mcp           Run as MCP server (the gentask engine boundary)
  gentask-engine-oapi version         Show version information

Supported langs:
  go-client, go-server, go-models

Environment Variables:
  OAPI_CODEGEN                   oapi-codegen command line (default: oapi-codegen)
  OAPI_CODEGEN_OUTPUT_FILENAME   Generated file name (default: zz_generated.oapi-codegen.go)
  LOG_LEVEL                      debug, info, warn or error (default: info)
  LOG_FORMAT                     text or json (default: text)
`

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
		SuccessHandler: printSuccess,
		FailureHandler: printFailure,
	})
}

// ----------------------------------------------------- RUN -------------------------------------------------------- //

var (
	errGenerating      = errors.New("generating code")
	errMissingArgument = errors.New("missing generation config argument")
)

// run generates code from the generation config file passed as argument.
// Relative paths in the file are resolved against its directory.
func run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return flaterrors.Join(errMissingArgument, errGenerating)
	}

	envs := Envs{} //nolint:exhaustruct // unmarshal
	if err := env.Parse(&envs); err != nil {
		return flaterrors.Join(err, errGenerating)
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return flaterrors.Join(err, errGenerating)
	}

	unit := codegen.NewUnit(Name, codegen.ProjectDirs{ProjectDir: filepath.Dir(path)})
	unit.FromFile(path)

	cfg, err := unit.Snapshot()
	if err != nil {
		return flaterrors.Join(err, errGenerating)
	}

	if err := cfg.Validate(); err != nil {
		return flaterrors.Join(err, errGenerating)
	}

	if err := codegen.ValidateOutputDir(cfg.OutputDir, unit.Dirs()); err != nil {
		return flaterrors.Join(err, errGenerating)
	}

	if _, err := newEngine(envs).Generate(ctx, cfg.Options()); err != nil {
		return flaterrors.Join(err, errGenerating)
	}

	return nil
}

func printSuccess(w io.Writer) {
	fmt.Fprintln(w, "✅ Successfully generated code")
}

func printFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "❌ Error generating code\n%s\n", err.Error())
}
