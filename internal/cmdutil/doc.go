// Package cmdutil runs external tools on behalf of engines.
//
// This package includes:
//   - ExecuteInput/ExecuteOutput types for command execution
//   - ExecuteCommand function for running a command bound to a context
package cmdutil
