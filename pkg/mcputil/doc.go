// Package mcputil provides helpers shared by both sides of an MCP tool call.
//
// This package includes:
//   - ErrorResult and SuccessResult for building tool results
//   - TextOf for reading the message of a tool result
//   - DecodeStructured for decoding a structured tool result into a Go value
package mcputil
