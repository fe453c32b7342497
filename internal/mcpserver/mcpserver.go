// Package mcpserver exposes a code generation engine as an MCP server, the
// engine side of an isolation boundary.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/alexandremahdhaoui/gentask/internal/ctxlog"
	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/alexandremahdhaoui/gentask/pkg/mcputil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with common functionality.
type Server struct {
	server *mcp.Server
}

// New creates a new MCP server with the given name and version.
func New(name, version string) *Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	return &Server{
		server: server,
	}
}

// RegisterTool registers a tool with the MCP server.
// The handler must be a function with signature:
// func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error)
func RegisterTool[In, Out any](
	s *Server,
	tool *mcp.Tool,
	handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error),
) {
	mcp.AddTool(s.server, tool, handler)
}

// RegisterEngine exposes engine as the tool named toolName (the default
// generate tool when empty). Engine failures are reported as error results
// carrying the engine's message.
func RegisterEngine(s *Server, toolName string, engine codegen.Engine) {
	if toolName == "" {
		toolName = codegen.DefaultEngineTool
	}

	RegisterTool(s, &mcp.Tool{
		Name:        toolName,
		Description: "Generate source files from an API description",
	}, func(
		ctx context.Context,
		_ *mcp.CallToolRequest,
		opts codegen.Options,
	) (*mcp.CallToolResult, codegen.GenerateResult, error) {
		log := ctxlog.FromContext(ctx).With("lang", opts.Lang, "outputDir", opts.OutputDir)
		log.Info("generating", "inputSpec", opts.InputSpec)

		result, err := engine.Generate(ctx, opts)
		if err != nil {
			log.Error("generation failed", "error", err)
			return mcputil.ErrorResult(fmt.Sprintf("Generation failed: %v", err)), codegen.GenerateResult{}, nil
		}

		if result.OutputDir == "" {
			result.OutputDir = opts.OutputDir
		}

		log.Info("generated", "files", len(result.Files))

		return mcputil.SuccessResult(fmt.Sprintf("Generated %d files into %s", len(result.Files), result.OutputDir)),
			result, nil
	})
}

// Connect serves the MCP protocol over t without blocking.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

// Run starts the MCP server with stdio transport.
// It reads JSON-RPC requests from stdin and writes responses to stdout.
// All logs should go to stderr only to avoid corrupting the JSON-RPC stream.
// A client closing the stream is a normal shutdown.
func (s *Server) Run(ctx context.Context) error {
	err := s.server.Run(ctx, &mcp.StdioTransport{})
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}

	slog.Error("MCP server failed", "error", err)
	return err
}
