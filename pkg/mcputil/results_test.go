//go:build unit

package mcputil

import (
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResults(t *testing.T) {
	errRes := ErrorResult("generation failed")
	assert.True(t, errRes.IsError)
	assert.Equal(t, "generation failed", TextOf(errRes))

	okRes := SuccessResult("done")
	assert.False(t, okRes.IsError)
	assert.Equal(t, "done", TextOf(okRes))
}

func TestTextOf(t *testing.T) {
	assert.Equal(t, "", TextOf(nil))
	assert.Equal(t, "unknown error", TextOf(&mcp.CallToolResult{IsError: true}))
	assert.Equal(t, "a\nb", TextOf(&mcp.CallToolResult{Content: []mcp.Content{
		&mcp.TextContent{Text: "a"},
		&mcp.TextContent{Text: "b"},
	}}))
}

func TestDecodeStructured(t *testing.T) {
	type payload struct {
		OutputDir string   `json:"outputDir"`
		Files     []string `json:"files"`
	}

	t.Run("decodes raw JSON", func(t *testing.T) {
		res := &mcp.CallToolResult{StructuredContent: json.RawMessage(`{"outputDir":"/out","files":["a.go"]}`)}

		got, err := DecodeStructured[payload](res)
		require.NoError(t, err)
		assert.Equal(t, payload{OutputDir: "/out", Files: []string{"a.go"}}, got)
	})

	t.Run("decodes Go values", func(t *testing.T) {
		res := &mcp.CallToolResult{StructuredContent: map[string]any{"outputDir": "/out"}}

		got, err := DecodeStructured[payload](res)
		require.NoError(t, err)
		assert.Equal(t, "/out", got.OutputDir)
	})

	t.Run("fails without structured content", func(t *testing.T) {
		_, err := DecodeStructured[payload](&mcp.CallToolResult{})
		assert.ErrorIs(t, err, errNoStructuredContent)
	})
}
