// Package isolation loads code generation engines behind an isolation
// boundary: a private directory exposing only the engine's own artifacts, and
// a separate process started with an environment built from scratch.
//
// The host process never loads engine code. It talks to the engine over MCP
// on the child's stdio, so the engine and the host can depend on different
// versions of the same libraries.
package isolation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	"github.com/alexandremahdhaoui/gentask/internal/ctxlog"
	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	libDirName = "lib"
	tmpDirName = "tmp"

	// MCPFlag is appended to the entry point arguments to start it as an MCP server.
	MCPFlag = "--mcp"
)

var (
	errCreatingBoundary     = errors.New("creating isolation boundary")
	errLinkingArtifacts     = errors.New("linking engine artifacts")
	errLocatingEntryPoint   = errors.New("locating engine entry point")
	errStartingEngine       = errors.New("starting engine")
	errToolNotExposed       = errors.New("engine does not expose the generate tool")
	errDuplicateArtifact    = errors.New("duplicate artifact name")
	errEntryPointNotInSet   = errors.New("entry point is not one of the engine artifacts")
	errEntryPointNotRunning = errors.New("entry point is not an executable file")
)

// TransportFunc returns the MCP transport used to talk to the engine started
// by cmd.
type TransportFunc func(cmd *exec.Cmd) mcp.Transport

// CommandTransport starts cmd and talks MCP over its stdin and stdout.
func CommandTransport(cmd *exec.Cmd) mcp.Transport {
	return &mcp.CommandTransport{Command: cmd}
}

// Loader builds one isolation boundary per Load call. It implements
// codegen.EngineLoader.
type Loader struct {
	tempDir   string
	stderr    io.Writer
	transport TransportFunc
	client    *mcp.Implementation
}

var _ codegen.EngineLoader = (*Loader)(nil)

// Option configures a Loader.
type Option func(*Loader)

// WithTempDir sets the parent directory of boundary directories.
// Defaults to os.TempDir().
func WithTempDir(dir string) Option {
	return func(l *Loader) { l.tempDir = dir }
}

// WithStderr sets where the engine's stderr (its logs) is written.
// Defaults to os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(l *Loader) { l.stderr = w }
}

// WithTransport replaces the transport used to reach the engine.
func WithTransport(fn TransportFunc) Option {
	return func(l *Loader) { l.transport = fn }
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		tempDir:   "",
		stderr:    os.Stderr,
		transport: CommandTransport,
		client: &mcp.Implementation{
			Name:    "gentask",
			Version: "v1.0.0",
		},
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load builds an isolation boundary for spec, starts the engine inside it and
// checks that it exposes the generate tool. environ entries (KEY=VALUE) are
// added to the engine environment last. Failures are *codegen.EngineLoadError;
// a partially built boundary is released before returning.
func (l *Loader) Load(ctx context.Context, spec codegen.EngineSpec, environ []string) (codegen.EngineInstance, error) {
	fail := func(b *Boundary, err error) (codegen.EngineInstance, error) {
		if b != nil {
			err = flaterrors.Join(err, b.Close())
		}
		return nil, &codegen.EngineLoadError{EntryPoint: spec.EntryPoint, Err: err}
	}

	if err := spec.Validate(); err != nil {
		return fail(nil, err)
	}

	dir, err := os.MkdirTemp(l.tempDir, "gentask-engine-*")
	if err != nil {
		return fail(nil, flaterrors.Join(err, errCreatingBoundary))
	}

	b := &Boundary{
		dir:  dir,
		tool: spec.ToolName(),
	}

	libDir := filepath.Join(dir, libDirName)
	tmpDir := filepath.Join(dir, tmpDirName)
	for _, d := range []string{libDir, tmpDir} {
		if err := os.Mkdir(d, 0o700); err != nil {
			return fail(b, flaterrors.Join(err, errCreatingBoundary))
		}
	}

	if err := linkArtifacts(libDir, spec.Artifacts); err != nil {
		return fail(b, flaterrors.Join(err, errLinkingArtifacts))
	}

	entryPoint, err := locateEntryPoint(libDir, spec.EntryPoint)
	if err != nil {
		return fail(b, flaterrors.Join(err, errLocatingEntryPoint))
	}

	env, err := buildEnviron(boundaryDirs{root: dir, lib: libDir, tmp: tmpDir}, spec, environ)
	if err != nil {
		return fail(b, flaterrors.Join(err, errCreatingBoundary))
	}

	cmd := exec.Command(entryPoint, append(slices.Clone(spec.Args), MCPFlag)...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stderr = l.stderr

	ctxlog.FromContext(ctx).Debug("starting engine",
		"entryPoint", spec.EntryPoint, "boundary", dir, "artifacts", len(spec.Artifacts))

	client := mcp.NewClient(l.client, nil)

	session, err := client.Connect(ctx, l.transport(cmd), nil)
	if err != nil {
		return fail(b, flaterrors.Join(err, errStartingEngine))
	}
	b.session = session

	if err := b.checkTool(ctx); err != nil {
		return fail(b, err)
	}

	return b, nil
}

// linkArtifacts makes every artifact visible in libDir under its base name.
func linkArtifacts(libDir string, artifacts []string) error {
	seen := make(map[string]string, len(artifacts))

	for _, artifact := range artifacts {
		abs, err := filepath.Abs(artifact)
		if err != nil {
			return err
		}

		if _, err := os.Stat(abs); err != nil {
			return err
		}

		name := filepath.Base(abs)
		if prev, ok := seen[name]; ok {
			return flaterrors.Join(fmt.Errorf("%q and %q are both named %q", prev, abs, name), errDuplicateArtifact)
		}
		seen[name] = abs

		if err := os.Symlink(abs, filepath.Join(libDir, name)); err != nil {
			return err
		}
	}

	return nil
}

// locateEntryPoint finds the entry point among the linked artifacts.
func locateEntryPoint(libDir, name string) (string, error) {
	path := filepath.Join(libDir, name)

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", flaterrors.Join(fmt.Errorf("with name %q", name), errEntryPointNotInSet)
	}
	if err != nil {
		return "", err
	}

	if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
		return "", flaterrors.Join(fmt.Errorf("with name %q and mode %s", name, info.Mode()), errEntryPointNotRunning)
	}

	return path, nil
}

func (b *Boundary) checkTool(ctx context.Context) error {
	res, err := b.session.ListTools(ctx, nil)
	if err != nil {
		return flaterrors.Join(err, errStartingEngine)
	}

	for _, tool := range res.Tools {
		if tool.Name == b.tool {
			return nil
		}
	}

	return flaterrors.Join(fmt.Errorf("with tool name %q", b.tool), errToolNotExposed)
}
