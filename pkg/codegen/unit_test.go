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

func TestNewUnit(t *testing.T) {
	project := t.TempDir()

	u := codegen.NewUnit("petstore", codegen.ProjectDirs{ProjectDir: project})

	assert.Equal(t, "petstore", u.Name())
	assert.Equal(t, project, u.Dirs().RootDir)
	assert.Equal(t, filepath.Join(project, "build", "generated-src", "petstore"), u.OutputDir())
	assert.Equal(t, []string{u.OutputDir()}, u.Outputs())
	assert.Empty(t, u.Inputs())
}

func TestUnit_FromFile(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "codegen.yaml", `
inputSpec: api/openapi.yaml
lang: go-client
modelPackage: models
importMappings:
  Pet: example.com/pets
`)

	t.Run("options set afterwards override the file", func(t *testing.T) {
		u := codegen.NewUnit("api", codegen.ProjectDirs{ProjectDir: project})
		u.FromFile("codegen.yaml")
		u.SetLang("go-server")
		u.AddImportMappings(map[string]string{"Order": "example.com/orders"})

		cfg, err := u.Snapshot()
		require.NoError(t, err)

		assert.Equal(t, "go-server", cfg.Lang)
		assert.Equal(t, "models", cfg.ModelPackage)
		assert.Equal(t, filepath.Join(project, "api", "openapi.yaml"), cfg.InputSpec)
		assert.Equal(t, filepath.Join(project, "build", "generated-src", "api"), cfg.OutputDir)
		assert.Equal(t, map[string]string{
			"Pet":   "example.com/pets",
			"Order": "example.com/orders",
		}, cfg.ImportMappings)
		assert.Equal(t, filepath.Join(project, "codegen.yaml"), u.ConfigFile())
	})

	t.Run("replaces earlier options", func(t *testing.T) {
		u := codegen.NewUnit("api", codegen.ProjectDirs{ProjectDir: project})
		u.SetAuth("token")
		u.FromFile(filepath.Join(project, "codegen.yaml"))

		assert.Empty(t, u.Auth())
		assert.Equal(t, "go-client", u.Lang())
	})

	t.Run("failure is reported by Snapshot", func(t *testing.T) {
		u := codegen.NewUnit("api", codegen.ProjectDirs{ProjectDir: project})
		u.FromFile("missing.yaml")
		u.SetLang("x")

		cfg, err := u.Snapshot()

		var cfgErr *codegen.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "x", cfg.Lang)
	})
}

func TestUnit_Mutators(t *testing.T) {
	u := codegen.NewUnit("api", codegen.ProjectDirs{ProjectDir: t.TempDir()})

	u.SetTypeMappings(map[string]string{"date": "string"})
	u.AddTypeMappings(map[string]string{"uuid": "string"})
	u.AddTypeMappings(map[string]string{"date": "Time"})
	assert.Equal(t, map[string]string{"date": "Time", "uuid": "string"}, u.TypeMappings())

	u.SetTypeMappings(map[string]string{"x": "y"})
	assert.Equal(t, map[string]string{"x": "y"}, u.TypeMappings())

	u.AddLanguageSpecificPrimitives("string", "int")
	u.AddLanguageSpecificPrimitives("string")
	assert.Equal(t, []string{"int", "string"}, u.LanguageSpecificPrimitives())

	assert.False(t, u.Verbose())
	u.SetVerbose(true)
	assert.True(t, u.Verbose())

	got := u.TypeMappings()
	got["mutated"] = "yes"
	assert.NotContains(t, u.TypeMappings(), "mutated")
}

func TestUnit_Snapshot(t *testing.T) {
	u := codegen.NewUnit("api", codegen.ProjectDirs{ProjectDir: t.TempDir()})
	u.AddSystemProperties(map[string]string{"models": ""})

	cfg, err := u.Snapshot()
	require.NoError(t, err)

	u.AddSystemProperties(map[string]string{"apis": ""})
	u.SetLang("late")

	assert.Equal(t, map[string]string{"models": ""}, cfg.SystemProperties)
	assert.Empty(t, cfg.Lang)
}

func TestUnit_Fingerprint(t *testing.T) {
	project := t.TempDir()
	spec := writeFile(t, project, "openapi.yaml", "openapi: 3.0.0\n")

	u := codegen.NewUnit("api", codegen.ProjectDirs{ProjectDir: project})
	u.SetLang("x")
	u.SetInputSpec(spec)

	first, err := u.Fingerprint()
	require.NoError(t, err)

	again, err := u.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, first, again)

	require.NoError(t, os.WriteFile(spec, []byte("openapi: 3.1.0\n"), 0o644))
	changed, err := u.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)

	u.SetLang("y")
	relang, err := u.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, changed, relang)

	u.SetInputSpec("missing.yaml")
	_, err = u.Fingerprint()
	assert.Error(t, err)
}
