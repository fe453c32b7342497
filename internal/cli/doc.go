// Package cli bootstraps gentask binaries.
//
// Bootstrap handles:
//   - Version information initialization from ldflags
//   - Version and help subcommands (version, --version, -v, help, --help, -h)
//   - MCP server mode (--mcp anywhere in the arguments)
//   - Logger setup from LOG_LEVEL and LOG_FORMAT
//   - Cancellation on SIGINT and SIGTERM
//   - Standardized error handling and exit codes
//
// Example usage:
//
//	func main() {
//	    cli.Bootstrap(cli.Config{
//	        Name:           Name,
//	        Version:        Version,
//	        CommitSHA:      CommitSHA,
//	        BuildTimestamp: BuildTimestamp,
//	        Usage:          usage,
//	        RunCLI:         run,
//	        RunMCP:         runMCPServer,
//	    })
//	}
package cli
