//go:build unit

package mcpserver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexandremahdhaoui/gentask/internal/mcpserver"
	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/alexandremahdhaoui/gentask/pkg/mcputil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFunc func(context.Context, codegen.Options) (codegen.GenerateResult, error)

func (f engineFunc) Generate(ctx context.Context, opts codegen.Options) (codegen.GenerateResult, error) {
	return f(ctx, opts)
}

func connect(t *testing.T, toolName string, engine codegen.Engine) *mcp.ClientSession {
	t.Helper()

	ctx := context.Background()
	clientT, serverT := mcp.NewInMemoryTransports()

	s := mcpserver.New("test-engine", "v0.0.0")
	mcpserver.RegisterEngine(s, toolName, engine)

	_, err := s.Connect(ctx, serverT)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.0"}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func TestRegisterEngine(t *testing.T) {
	t.Run("defaults the tool name", func(t *testing.T) {
		session := connect(t, "", engineFunc(func(context.Context, codegen.Options) (codegen.GenerateResult, error) {
			return codegen.GenerateResult{}, nil
		}))

		res, err := session.ListTools(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, res.Tools, 1)
		assert.Equal(t, codegen.DefaultEngineTool, res.Tools[0].Name)
	})

	t.Run("returns the generated files", func(t *testing.T) {
		var got codegen.Options
		session := connect(t, "", engineFunc(func(_ context.Context, opts codegen.Options) (codegen.GenerateResult, error) {
			got = opts
			return codegen.GenerateResult{Files: []string{"client.go", "models.go"}}, nil
		}))

		res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name: codegen.DefaultEngineTool,
			Arguments: map[string]any{
				"lang":      "go-client",
				"inputSpec": "/api/openapi.yaml",
				"outputDir": "/build/out",
				"mappings":  map[string]any{"importMappings": map[string]any{"Pet": "example.com/pets"}},
			},
		})
		require.NoError(t, err)
		require.False(t, res.IsError, mcputil.TextOf(res))

		out, err := mcputil.DecodeStructured[codegen.GenerateResult](res)
		require.NoError(t, err)
		assert.Equal(t, codegen.GenerateResult{OutputDir: "/build/out", Files: []string{"client.go", "models.go"}}, out)

		assert.Equal(t, "go-client", got.Lang)
		require.NotNil(t, got.Mappings)
		assert.Equal(t, map[string]string{"Pet": "example.com/pets"}, got.Mappings.ImportMappings)
	})

	t.Run("reports engine failures as error results", func(t *testing.T) {
		session := connect(t, "render", engineFunc(func(context.Context, codegen.Options) (codegen.GenerateResult, error) {
			return codegen.GenerateResult{}, errors.New("unknown lang")
		}))

		res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
			Name:      "render",
			Arguments: map[string]any{"lang": "x", "inputSpec": "/a", "outputDir": "/b"},
		})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "Generation failed: unknown lang", mcputil.TextOf(res))
	})
}
