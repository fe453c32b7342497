// Package codegen holds the configuration model of a generation unit and the
// invocation contract shared with code generation engines.
//
// This package includes:
//   - Config, the declarative options of one generation unit, and Unit, its
//     mutable, project-aware builder
//   - Options, the one-way projection of a Config sent to an engine
//   - Engine, EngineInstance and EngineLoader, the capability interfaces of
//     an engine loaded behind an isolation boundary
//   - the error taxonomy reported by a generation task
package codegen
