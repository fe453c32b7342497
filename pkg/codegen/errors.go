package codegen

import (
	"fmt"
	"strings"
)

// Stage names the step of a generation task at which it failed.
type Stage string

const (
	// StageValidation covers required-field checks.
	StageValidation Stage = "validation"
	// StageOutputCheck covers the destructive-output check.
	StageOutputCheck Stage = "output-check"
	// StageGuard covers acquiring and releasing the invocation guard.
	StageGuard Stage = "guard"
	// StageLoad covers building the isolation boundary and locating the engine.
	StageLoad Stage = "engine-load"
	// StageGenerate covers the engine's own generation.
	StageGenerate Stage = "generate"
	// StageRelease covers tearing the isolation boundary down.
	StageRelease Stage = "engine-release"
)

// ConfigurationError reports a configuration that cannot be invoked: missing
// required fields or an unreadable configuration file.
type ConfigurationError struct {
	// Missing lists the required fields that were not set.
	Missing []string
	// Err is the underlying cause.
	Err error
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 && e.Err == nil {
		return fmt.Sprintf("configuration error: missing required fields: %s", strings.Join(e.Missing, ", "))
	}

	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProtectedDir identifies a directory that generation must never write into.
type ProtectedDir string

const (
	// ProtectedProjectDir is the directory of the project declaring the unit.
	ProtectedProjectDir ProtectedDir = "project directory"
	// ProtectedRootDir is the top-level directory of a multi-module layout.
	ProtectedRootDir ProtectedDir = "root directory"
)

// DestructiveOutputError reports an output directory that points at a
// protected directory.
type DestructiveOutputError struct {
	OutputDir string
	Protected ProtectedDir
	// Dir is the protected directory that matched.
	Dir string
}

func (e *DestructiveOutputError) Error() string {
	return fmt.Sprintf(
		"refusing to generate into %q: output directory is the %s %q and would be overwritten",
		e.OutputDir, e.Protected, e.Dir)
}

// EngineLoadError reports a failure to build the isolation boundary or to
// locate and start the engine entry point.
type EngineLoadError struct {
	EntryPoint string
	Err        error
}

func (e *EngineLoadError) Error() string {
	return fmt.Sprintf("cannot load engine %q: %v", e.EntryPoint, e.Err)
}

func (e *EngineLoadError) Unwrap() error { return e.Err }

// EngineGenerationError reports a failure returned by the engine itself.
type EngineGenerationError struct {
	Lang string
	// Message is the engine's own failure message.
	Message string
	Err     error
}

func (e *EngineGenerationError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("engine failed generating %q: %s: %v", e.Lang, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("engine failed generating %q: %s", e.Lang, e.Message)
	default:
		return fmt.Sprintf("engine failed generating %q: %v", e.Lang, e.Err)
	}
}

func (e *EngineGenerationError) Unwrap() error { return e.Err }

// TaskError is the single failure reported to the host build for a unit.
type TaskError struct {
	Unit  string
	Stage Stage
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("generation unit %q failed at %s: %v", e.Unit, e.Stage, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }
