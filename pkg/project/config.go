// Package project reads the project file declaring the generation units of a
// build and the engine they run on.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"sigs.k8s.io/yaml"
)

const (
	ConfigPath = "gentask.yaml"

	// DefaultArtifactStorePath is relative to the root directory.
	DefaultArtifactStorePath = ".gentask/artifacts.yaml"
)

// ----------------------------------------------------- PROJECT CONFIG --------------------------------------------- //

type Config struct {
	Name string `json:"name"`

	// RootDir is the top-level directory of the build. Relative paths are
	// resolved against the directory of the project file, which is also the
	// default.
	RootDir string `json:"rootDir,omitempty"`

	// ArtifactStorePath records successful runs for up-to-date checks.
	ArtifactStorePath string `json:"artifactStorePath,omitempty"`

	Engine codegen.EngineSpec `json:"engine"`
	Units  []UnitSpec         `json:"units"`
}

// UnitSpec declares one generation unit.
type UnitSpec struct {
	Name string `json:"name"`

	// ProjectDir is the directory of the declaring project, relative to the
	// root directory. Defaults to the root directory.
	ProjectDir string `json:"projectDir,omitempty"`

	// ConfigFile is loaded first, relative to ProjectDir.
	ConfigFile string `json:"configFile,omitempty"`

	// Config overrides the values of ConfigFile.
	Config codegen.Config `json:"config"`
}

var (
	errReadingProjectConfig = errors.New("reading project config")
	errInvalidProjectConfig = errors.New("invalid project config")
	errUnitNotFound         = errors.New("generation unit not found")
)

// ReadConfigFromPath reads the project file at path, applies defaults and
// validates it. Relative paths, engine artifacts and env file included, are
// resolved against the root directory.
func ReadConfigFromPath(path string) (Config, error) {
	b, err := os.ReadFile(path) //nolint:varnamelen
	if err != nil {
		return Config{}, flaterrors.Join(err, errReadingProjectConfig)
	}

	out := Config{} //nolint:exhaustruct // unmarshal

	if err := yaml.UnmarshalStrict(b, &out); err != nil {
		return Config{}, flaterrors.Join(err, errReadingProjectConfig)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Config{}, flaterrors.Join(err, errReadingProjectConfig)
	}

	out.RootDir = resolve(base, out.RootDir)
	if out.ArtifactStorePath == "" {
		out.ArtifactStorePath = DefaultArtifactStorePath
	}
	out.ArtifactStorePath = resolve(out.RootDir, out.ArtifactStorePath)

	for i, artifact := range out.Engine.Artifacts {
		if artifact != "" {
			out.Engine.Artifacts[i] = resolve(out.RootDir, artifact)
		}
	}
	if out.Engine.EnvFile != "" {
		out.Engine.EnvFile = resolve(out.RootDir, out.Engine.EnvFile)
	}

	if err := out.Validate(); err != nil {
		return Config{}, flaterrors.Join(err, errInvalidProjectConfig)
	}

	return out, nil
}

// Validate validates the project config. Engine artifacts may be empty: the
// entry point is then resolved on the host PATH.
func (c Config) Validate() error {
	errs := codegen.NewValidationErrors()

	errs.Add(codegen.ValidateRequired(c.Name, "name", "project"))
	errs.Add(codegen.ValidateRequired(c.Engine.EntryPoint, "engine.entryPoint", "project"))

	if len(c.Units) == 0 {
		errs.AddErrorf("project %q: at least one unit is required", c.Name)
	}

	seen := make(map[string]bool, len(c.Units))
	for i, u := range c.Units {
		if u.Name == "" {
			errs.AddErrorf("project %q: units[%d].name is required", c.Name, i)
			continue
		}
		if seen[u.Name] {
			errs.AddErrorf("project %q: duplicate unit name %q", c.Name, u.Name)
		}
		seen[u.Name] = true
	}

	return errs.ErrorOrNil()
}

// Unit returns the spec of the unit called name.
func (c Config) Unit(name string) (UnitSpec, error) {
	for _, u := range c.Units {
		if u.Name == name {
			return u, nil
		}
	}

	return UnitSpec{}, flaterrors.Join(fmt.Errorf("with name %q", name), errUnitNotFound)
}

// Build declares u as a codegen.Unit: ConfigFile is loaded first, then the
// inline Config is applied on top of it.
func (c Config) Build(u UnitSpec) *codegen.Unit {
	unit := codegen.NewUnit(u.Name, codegen.ProjectDirs{
		ProjectDir: resolve(c.RootDir, u.ProjectDir),
		RootDir:    c.RootDir,
	})

	if u.ConfigFile != "" {
		unit.FromFile(u.ConfigFile)
	}

	unit.Configure(u.Config)

	return unit
}

// BuildAll declares every unit of the project, in declaration order.
func (c Config) BuildAll() []*codegen.Unit {
	out := make([]*codegen.Unit, 0, len(c.Units))
	for _, u := range c.Units {
		out = append(out, c.Build(u))
	}
	return out
}

func resolve(base, path string) string {
	if path == "" {
		return base
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
