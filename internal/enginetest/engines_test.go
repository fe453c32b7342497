//go:build e2e

package enginetest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexandremahdhaoui/gentask/internal/enginetest"
	"github.com/alexandremahdhaoui/gentask/internal/guard"
	"github.com/alexandremahdhaoui/gentask/internal/isolation"
	"github.com/alexandremahdhaoui/gentask/internal/runner"
	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOAPICodegen writes the output file named in its --config file. It only
// uses shell builtins: inside the boundary PATH holds the engine artifacts.
const fakeOAPICodegen = `#!/bin/sh
while IFS= read -r line; do
  case "$line" in
    output:*) out="${line#output: }" ;;
    package:*) pkg="${line#package: }" ;;
  esac
done < "$2"
printf 'package %s\n' "$pkg" > "$out"
`

func TestAllEngines(t *testing.T) {
	for _, engine := range enginetest.AllEngines(enginetest.RepoRoot(t)) {
		t.Run(engine.Name, func(t *testing.T) {
			enginetest.TestVersionCommand(t, engine)
			enginetest.TestMCPMode(t, engine)
		})
	}
}

func TestIsolatedGeneration(t *testing.T) {
	engineBin := enginetest.AllEngines(enginetest.RepoRoot(t))[1]
	enginetest.RequireBinary(t, engineBin)

	toolDir := t.TempDir()
	oapiCodegen := filepath.Join(toolDir, "oapi-codegen")
	require.NoError(t, os.WriteFile(oapiCodegen, []byte(fakeOAPICodegen), 0o755))

	project := t.TempDir()
	spec := filepath.Join(project, "openapi.yaml")
	require.NoError(t, os.WriteFile(spec, []byte("openapi: 3.0.0\n"), 0o644))

	unit := codegen.NewUnit("petstore", codegen.ProjectDirs{ProjectDir: project})
	unit.SetLang("go-models")
	unit.SetInputSpec(spec)
	unit.AddSystemProperties(map[string]string{"GENTASK_E2E_PROPERTY": "on"})

	settings := guard.NewMapSettings(nil)
	r := runner.New(
		isolation.NewLoader(isolation.WithTempDir(t.TempDir())),
		codegen.EngineSpec{
			Artifacts:  []string{engineBin.BinaryPath, oapiCodegen},
			EntryPoint: engineBin.Name,
		},
		runner.WithGuard(guard.New(settings)),
	)

	report, err := r.Run(context.Background(), unit)
	require.NoError(t, err)
	require.NoError(t, report.ReleaseErr)

	assert.Equal(t, runner.StateDone, report.State)
	assert.Equal(t, []string{"zz_generated.oapi-codegen.go"}, report.Result.Files)

	b, err := os.ReadFile(filepath.Join(unit.OutputDir(), "zz_generated.oapi-codegen.go"))
	require.NoError(t, err)
	assert.Equal(t, "package petstore\n", string(b))
	assert.Empty(t, settings.Snapshot())

	t.Run("engine failures are reported", func(t *testing.T) {
		unit.SetLang("java")

		_, err := r.Run(context.Background(), unit)

		var genErr *codegen.EngineGenerationError
		require.ErrorAs(t, err, &genErr)
		assert.Contains(t, genErr.Message, "unsupported lang")
	})
}
