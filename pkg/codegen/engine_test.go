//go:build unit

package codegen_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineSpec_Fingerprint(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "engine")
	require.NoError(t, os.WriteFile(artifact, []byte("v1"), 0o755))

	spec := codegen.EngineSpec{EntryPoint: "engine", Artifacts: []string{artifact}}

	fingerprint, err := spec.Fingerprint()
	require.NoError(t, err)

	again, err := spec.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fingerprint, again)

	t.Run("env changes it", func(t *testing.T) {
		changed := spec
		changed.Env = map[string]string{"OAPI_CODEGEN": "oapi-codegen-v2"}

		got, err := changed.Fingerprint()
		require.NoError(t, err)
		assert.NotEqual(t, fingerprint, got)
	})

	t.Run("entry point changes it", func(t *testing.T) {
		changed := spec
		changed.EntryPoint = "other"

		got, err := changed.Fingerprint()
		require.NoError(t, err)
		assert.NotEqual(t, fingerprint, got)
	})

	t.Run("artifact content changes it", func(t *testing.T) {
		require.NoError(t, os.WriteFile(artifact, []byte("v2"), 0o755))

		got, err := spec.Fingerprint()
		require.NoError(t, err)
		assert.NotEqual(t, fingerprint, got)
	})

	t.Run("missing artifact", func(t *testing.T) {
		missing := spec
		missing.Artifacts = []string{filepath.Join(dir, "missing")}

		_, err := missing.Fingerprint()
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
