package mcputil

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrorResult creates a standardized MCP error result.
//
// Example usage:
//
//	return mcputil.ErrorResult(fmt.Sprintf("Generation failed: %v", err)), codegen.GenerateResult{}, nil
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// SuccessResult creates a standardized MCP success result.
func SuccessResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: false,
	}
}

// TextOf joins the text contents of result. It returns "unknown error" for an
// error result without any text.
func TextOf(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}

	var parts []string
	for _, content := range result.Content {
		if text, ok := content.(*mcp.TextContent); ok && text.Text != "" {
			parts = append(parts, text.Text)
		}
	}

	if len(parts) == 0 && result.IsError {
		return "unknown error"
	}

	return strings.Join(parts, "\n")
}

var (
	errDecodingStructuredContent = errors.New("decoding structured tool result")
	errNoStructuredContent       = errors.New("tool result has no structured content")
)

// DecodeStructured decodes the structured content of result into a T.
func DecodeStructured[T any](result *mcp.CallToolResult) (T, error) {
	var out T

	if result == nil || result.StructuredContent == nil {
		return out, flaterrors.Join(errNoStructuredContent, errDecodingStructuredContent)
	}

	// StructuredContent is a json.RawMessage on the client side and the
	// handler's output value on the server side.
	var raw []byte
	switch v := result.StructuredContent.(type) {
	case json.RawMessage:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return out, flaterrors.Join(err, errDecodingStructuredContent)
		}
		raw = b
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, flaterrors.Join(err, errDecodingStructuredContent)
	}

	return out, nil
}
