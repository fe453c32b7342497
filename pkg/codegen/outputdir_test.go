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

func TestValidateOutputDir(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "service")
	require.NoError(t, os.Mkdir(project, 0o755))

	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(project, link))

	dirs := codegen.ProjectDirs{ProjectDir: project, RootDir: root}

	for _, tc := range []struct {
		name      string
		outputDir string
		protected codegen.ProtectedDir
	}{
		{name: "generated sources", outputDir: filepath.Join(project, "build", "generated-src", "api")},
		{name: "sibling of the project", outputDir: filepath.Join(root, "other")},
		{name: "project directory", outputDir: project, protected: codegen.ProtectedProjectDir},
		{name: "unclean project directory", outputDir: project + "/./", protected: codegen.ProtectedProjectDir},
		{name: "symlink to the project", outputDir: link, protected: codegen.ProtectedProjectDir},
		{name: "root directory", outputDir: root, protected: codegen.ProtectedRootDir},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := codegen.ValidateOutputDir(tc.outputDir, dirs)
			if tc.protected == "" {
				assert.NoError(t, err)
				return
			}

			var destructive *codegen.DestructiveOutputError
			require.ErrorAs(t, err, &destructive)
			assert.Equal(t, tc.protected, destructive.Protected)
			assert.Equal(t, tc.outputDir, destructive.OutputDir)
			assert.Contains(t, err.Error(), string(tc.protected))
		})
	}

	t.Run("single-module project names the project directory", func(t *testing.T) {
		err := codegen.ValidateOutputDir(project, codegen.ProjectDirs{ProjectDir: project, RootDir: project})

		var destructive *codegen.DestructiveOutputError
		require.ErrorAs(t, err, &destructive)
		assert.Equal(t, codegen.ProtectedProjectDir, destructive.Protected)
	})
}
