package codegen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
)

// DefaultEngineTool is the tool an engine exposes to run a generation.
const DefaultEngineTool = "generate"

// Engine generates source files from Options.
type Engine interface {
	// Generate runs one generation. It blocks until the engine returns.
	Generate(ctx context.Context, opts Options) (GenerateResult, error)
}

// EngineInstance is an Engine living behind an isolation boundary. Close
// releases the boundary; it must be called exactly once the caller is done,
// whatever the outcome of Generate.
type EngineInstance interface {
	Engine
	Close() error
}

// EngineLoader builds an isolation boundary for an engine and instantiates
// the engine inside it. The environ entries are KEY=VALUE settings that must
// be visible to the engine.
type EngineLoader interface {
	Load(ctx context.Context, spec EngineSpec, environ []string) (EngineInstance, error)
}

// EngineSpec describes a code generation engine and the closed set of
// artifacts it is loaded from.
type EngineSpec struct {
	// Artifacts are the files making up the engine. They are the only files
	// visible to the engine through its isolation boundary.
	Artifacts []string `json:"artifacts,omitempty"`

	// EntryPoint is the base name of the executable artifact to start.
	EntryPoint string `json:"entryPoint"`

	// Tool is the name of the generate tool exposed by the engine.
	// Defaults to DefaultEngineTool.
	Tool string `json:"tool,omitempty"`

	// Args are passed to the entry point before the --mcp flag.
	Args []string `json:"args,omitempty"`

	// Env contains environment variables set for the engine.
	// Precedence: envFile < inline env (this field) < system properties.
	Env map[string]string `json:"env,omitempty"`

	// EnvFile is the path to an environment file loaded for the engine.
	EnvFile string `json:"envFile,omitempty"`
}

// ToolName returns the tool to call, applying the default.
func (s EngineSpec) ToolName() string {
	if s.Tool == "" {
		return DefaultEngineTool
	}
	return s.Tool
}

// Validate validates the EngineSpec
func (s EngineSpec) Validate() error {
	errs := NewValidationErrors()

	if err := ValidateRequired(s.EntryPoint, "entryPoint", "EngineSpec"); err != nil {
		errs.Add(err)
	} else if filepath.Base(s.EntryPoint) != s.EntryPoint {
		errs.AddErrorf("EngineSpec: entryPoint %q must be a base name, not a path", s.EntryPoint)
	}

	if len(s.Artifacts) == 0 {
		errs.AddErrorf("EngineSpec %q: at least one artifact is required", s.EntryPoint)
	}

	for i, artifact := range s.Artifacts {
		if err := ValidateRequired(artifact, fmt.Sprintf("artifacts[%d]", i), "EngineSpec"); err != nil {
			errs.Add(err)
		}
	}

	return errs.ErrorOrNil()
}

var errFingerprintingEngine = errors.New("computing engine fingerprint")

// Fingerprint hashes the spec together with the content of every artifact, so
// that changing the engine, or rebuilding one of its artifacts, changes it.
func (s EngineSpec) Fingerprint() (string, error) {
	h := sha256.New()

	b, err := json.Marshal(s)
	if err != nil {
		return "", flaterrors.Join(err, errFingerprintingEngine)
	}
	_, _ = h.Write(b)

	if err := hashFiles(h, s.Artifacts); err != nil {
		return "", flaterrors.Join(err, errFingerprintingEngine)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
