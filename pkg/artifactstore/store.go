// Package artifactstore records the outputs of successful generation runs so
// that later runs can tell whether a unit is up to date.
package artifactstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"sigs.k8s.io/yaml"
)

// TypeGeneratedSource is the type of artifacts written by generation units.
const TypeGeneratedSource = "generated-source"

type Artifact struct {
	// Name of the generation unit that produced the artifact
	Name string `json:"name"`
	// Type of artifact, e.g. "generated-source"
	Type string `json:"type"`
	// Location of the artifact, a file:// URL to the output directory
	Location string `json:"location"`
	// Timestamp when the artifact was generated (RFC3339, with optional fraction)
	Timestamp string `json:"timestamp"`
	// Version is the fingerprint of the unit's options and inputs
	Version string `json:"version"`
	// InvocationID identifies the run that produced the artifact
	InvocationID string `json:"invocationID,omitempty"`
	// Files lists the generated files, relative to Location
	Files []string `json:"files,omitempty"`
}

type Store struct {
	Version     string     `json:"version"`
	LastUpdated time.Time  `json:"lastUpdated"`
	Artifacts   []Artifact `json:"artifacts"`
}

var (
	errReadingArtifactStore = errors.New("reading artifact store")
	errWritingArtifactStore = errors.New("writing artifact store")
	errArtifactNotFound     = errors.New("artifact not found")
)

const storeVersion = "1.0"

// Read reads the artifact store from the specified path.
// Returns an error if the file doesn't exist.
func Read(path string) (Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Store{}, flaterrors.Join(err, errReadingArtifactStore)
	}

	out := Store{} //nolint:exhaustruct // unmarshal

	if err := yaml.Unmarshal(b, &out); err != nil {
		return Store{}, flaterrors.Join(err, errReadingArtifactStore)
	}

	if out.Artifacts == nil {
		out.Artifacts = []Artifact{}
	}
	if out.Version == "" {
		out.Version = storeVersion
	}

	return out, nil
}

// ReadOrCreate reads the artifact store from the specified path.
// If the file doesn't exist, it returns an initialized empty store.
func ReadOrCreate(path string) (Store, error) {
	store, err := Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return Store{
			Version:     storeVersion,
			LastUpdated: time.Now().UTC(),
			Artifacts:   []Artifact{},
		}, nil
	}
	if err != nil {
		return Store{}, err
	}

	return store, nil
}

// Write writes the artifact store to the specified path, creating its parent
// directory when needed.
func Write(path string, store Store) error {
	b, err := yaml.Marshal(store)
	if err != nil {
		return flaterrors.Join(err, errWritingArtifactStore)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return flaterrors.Join(err, errWritingArtifactStore)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return flaterrors.Join(err, errWritingArtifactStore)
	}

	return nil
}

// AddOrUpdate adds a new artifact to the store or updates an existing one.
// If an artifact with the same name, type, and version exists, it updates it.
// Otherwise, it appends a new artifact.
func AddOrUpdate(store *Store, artifact Artifact) {
	if store == nil {
		return
	}

	store.LastUpdated = time.Now().UTC()

	for i, existing := range store.Artifacts {
		if existing.Name == artifact.Name &&
			existing.Type == artifact.Type &&
			existing.Version == artifact.Version {
			store.Artifacts[i] = artifact
			return
		}
	}

	store.Artifacts = append(store.Artifacts, artifact)
}

// Latest finds the most recent artifact with the given name. On equal
// timestamps the last recorded one wins. Artifacts with an invalid timestamp
// are ignored.
func Latest(store Store, name string) (Artifact, error) {
	var latest Artifact
	var latestTime time.Time
	found := false

	for _, artifact := range store.Artifacts {
		if artifact.Name != name {
			continue
		}

		t, err := time.Parse(time.RFC3339, artifact.Timestamp)
		if err != nil {
			continue
		}

		if !found || !t.Before(latestTime) {
			latest = artifact
			latestTime = t
			found = true
		}
	}

	if !found {
		return Artifact{}, flaterrors.Join(fmt.Errorf("with name %q", name), errArtifactNotFound)
	}

	return latest, nil
}

// UpToDate reports whether the latest artifact of name was generated with
// fingerprint and its location still exists.
func UpToDate(store Store, name, fingerprint string) bool {
	artifact, err := Latest(store, name)
	if err != nil || artifact.Version != fingerprint {
		return false
	}

	_, err = os.Stat(LocationPath(artifact.Location))

	return err == nil
}

// Location renders dir as an artifact location.
func Location(dir string) string {
	return "file://" + filepath.ToSlash(dir)
}

// LocationPath returns the local path of a file:// location.
func LocationPath(location string) string {
	return filepath.FromSlash(strings.TrimPrefix(location, "file://"))
}

// Prune keeps only the latest artifact of every name.
func Prune(store *Store) {
	if store == nil {
		return
	}

	kept := make([]Artifact, 0, len(store.Artifacts))
	seen := make(map[string]bool)

	for _, artifact := range store.Artifacts {
		if seen[artifact.Name] {
			continue
		}
		seen[artifact.Name] = true

		if latest, err := Latest(*store, artifact.Name); err == nil {
			kept = append(kept, latest)
		}
	}

	store.Artifacts = kept
}
