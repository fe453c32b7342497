package main

import (
	"context"
	"fmt"
	"io"

	"github.com/alexandremahdhaoui/gentask/internal/ctxlog"
	"github.com/alexandremahdhaoui/gentask/internal/mcpserver"
	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"github.com/alexandremahdhaoui/gentask/pkg/mcputil"
	"github.com/caarlos0/env/v11"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// BuildInput represents the input parameters for the build tool.
type BuildInput struct {
	Units []string `json:"units,omitempty" jsonschema:"units to generate, all when empty"`
	Force bool     `json:"force,omitempty" jsonschema:"regenerate up-to-date units"`
}

// runMCPServer starts the gentask MCP server with stdio transport.
func runMCPServer(ctx context.Context) error {
	envs := Envs{} //nolint:exhaustruct // unmarshal
	if err := env.Parse(&envs); err != nil {
		return flaterrors.Join(err, errRunning)
	}

	// progress lines on stdout would corrupt the JSON-RPC stream
	server := mcpserver.New(Name, Version)
	registerTools(server, newBuilder(envs, io.Discard))

	return server.Run(ctx)
}

func registerTools(server *mcpserver.Server, b *builder) {
	mcpserver.RegisterTool(server, &mcp.Tool{
		Name:        "build",
		Description: "Run the generation units declared in gentask.yaml",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input BuildInput) (*mcp.CallToolResult, buildSummary, error) {
		ctxlog.FromContext(ctx).Info("building", "units", input.Units, "force", input.Force)

		summary, err := b.build(ctx, input.Units, input.Force || b.envs.Force)
		if err != nil {
			return mcputil.ErrorResult(fmt.Sprintf("Build failed: %v", err)), summary, nil
		}

		return mcputil.SuccessResult(fmt.Sprintf("Generated %d unit(s), %d up to date",
			len(summary.Generated), len(summary.Skipped))), summary, nil
	})
}
