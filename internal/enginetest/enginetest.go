// Package enginetest checks the contract every gentask binary honors: a
// version subcommand and, for engines, an MCP server exposing their tool.
package enginetest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Engine represents a binary to be tested.
type Engine struct {
	// Name is the binary name (e.g., "gentask", "gentask-engine-oapi")
	Name string
	// BinaryPath is the path to the binary (e.g., "./build/bin/gentask")
	BinaryPath string
	// Tool is the tool the binary must expose in MCP mode
	Tool string
}

// RepoRoot returns the closest parent directory holding a go.mod.
func RepoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find repository root (no go.mod found)")
		}
		dir = parent
	}
}

// AllEngines returns every binary built into <repoRoot>/build/bin.
func AllEngines(repoRoot string) []Engine {
	buildBin := filepath.Join(repoRoot, "build", "bin")

	return []Engine{
		{Name: "gentask", BinaryPath: filepath.Join(buildBin, "gentask"), Tool: "build"},
		{Name: "gentask-engine-oapi", BinaryPath: filepath.Join(buildBin, "gentask-engine-oapi"), Tool: "generate"},
	}
}

// RequireBinary skips the test when the binary was not built and fails it
// when the binary is not executable.
func RequireBinary(t *testing.T, engine Engine) {
	t.Helper()

	info, err := os.Stat(engine.BinaryPath)
	if os.IsNotExist(err) {
		t.Skipf("Binary not found: %s", engine.BinaryPath)
	}
	if err != nil {
		t.Fatal(err)
	}

	if info.Mode()&0o111 == 0 {
		t.Fatalf("Binary is not executable: %s", engine.BinaryPath)
	}
}

// TestVersionCommand tests that the binary supports version commands.
func TestVersionCommand(t *testing.T, engine Engine) {
	t.Helper()
	RequireBinary(t, engine)

	for _, flag := range []string{"version", "--version", "-v"} {
		t.Run(fmt.Sprintf("%s_%s", engine.Name, flag), func(t *testing.T) {
			cmd := exec.Command(engine.BinaryPath, flag)
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			if err := cmd.Run(); err != nil {
				t.Fatalf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout.String(), stderr.String())
			}

			output := stdout.String()
			for _, field := range []string{engine.Name + " version", "commit:", "built:", "go:", "platform:"} {
				if !strings.Contains(output, field) {
					t.Errorf("Version output missing expected field '%s'\nOutput: %s", field, output)
				}
			}
		})
	}
}

// TestMCPMode tests that the binary serves MCP on its stdio and exposes its
// tool.
func TestMCPMode(t *testing.T, engine Engine) {
	t.Helper()
	RequireBinary(t, engine)

	t.Run(fmt.Sprintf("%s_mcp_mode", engine.Name), func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var stderr bytes.Buffer
		cmd := exec.Command(engine.BinaryPath, "--mcp")
		cmd.Stderr = &stderr

		client := mcp.NewClient(&mcp.Implementation{Name: "enginetest", Version: "v0.0.0"}, nil)

		session, err := client.Connect(ctx, &mcp.CommandTransport{Command: cmd}, nil)
		if err != nil {
			t.Fatalf("Failed to connect to MCP server: %v\nStderr: %s", err, stderr.String())
		}
		defer func() { _ = session.Close() }()

		res, err := session.ListTools(ctx, nil)
		if err != nil {
			t.Fatalf("Failed to list tools: %v", err)
		}

		for _, tool := range res.Tools {
			if tool.Name == engine.Tool {
				return
			}
		}

		t.Errorf("Tool %q not exposed by %s", engine.Tool, engine.Name)
	})
}
