//go:build unit

package artifactstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func TestReadOrCreate(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		store, err := ReadOrCreate(filepath.Join(t.TempDir(), "artifacts.yaml"))
		require.NoError(t, err)
		assert.Equal(t, storeVersion, store.Version)
		assert.Empty(t, store.Artifacts)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "artifacts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("artifacts: {"), 0o600))

		_, err := ReadOrCreate(path)
		assert.ErrorIs(t, err, errReadingArtifactStore)
	})
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gentask", "artifacts.yaml")

	store, err := ReadOrCreate(path)
	require.NoError(t, err)

	AddOrUpdate(&store, Artifact{
		Name:      "petstore",
		Type:      TypeGeneratedSource,
		Location:  Location("/build/out"),
		Timestamp: at(time.Now()),
		Version:   "abc",
		Files:     []string{"client.go"},
	})
	require.NoError(t, Write(path, store))

	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got.Artifacts, 1)
	assert.Equal(t, store.Artifacts[0], got.Artifacts[0])
}

func TestAddOrUpdate(t *testing.T) {
	store := Store{}
	now := time.Now()

	AddOrUpdate(&store, Artifact{Name: "a", Type: TypeGeneratedSource, Version: "v1", Timestamp: at(now)})
	AddOrUpdate(&store, Artifact{Name: "a", Type: TypeGeneratedSource, Version: "v1", Timestamp: at(now.Add(time.Hour))})
	AddOrUpdate(&store, Artifact{Name: "a", Type: TypeGeneratedSource, Version: "v2", Timestamp: at(now.Add(time.Minute))})

	require.Len(t, store.Artifacts, 2)
	assert.Equal(t, at(now.Add(time.Hour)), store.Artifacts[0].Timestamp)

	latest, err := Latest(store, "a")
	require.NoError(t, err)
	assert.Equal(t, "v1", latest.Version)

	_, err = Latest(store, "b")
	assert.ErrorIs(t, err, errArtifactNotFound)

	Prune(&store)
	require.Len(t, store.Artifacts, 1)
	assert.Equal(t, "v1", store.Artifacts[0].Version)

	// Should not panic
	AddOrUpdate(nil, Artifact{})
	Prune(nil)
}

func TestUpToDate(t *testing.T) {
	out := t.TempDir()

	store := Store{}
	AddOrUpdate(&store, Artifact{
		Name:      "petstore",
		Type:      TypeGeneratedSource,
		Location:  Location(out),
		Timestamp: at(time.Now()),
		Version:   "abc",
	})

	assert.True(t, UpToDate(store, "petstore", "abc"))
	assert.False(t, UpToDate(store, "petstore", "def"))
	assert.False(t, UpToDate(store, "other", "abc"))

	require.NoError(t, os.RemoveAll(out))
	assert.False(t, UpToDate(store, "petstore", "abc"))
}
