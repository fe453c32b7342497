package isolation

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"github.com/joho/godotenv"
)

// EnvEngineLib names the variable holding the boundary's artifact directory.
const EnvEngineLib = "GENTASK_ENGINE_LIB"

var (
	errLoadingEnvFile      = errors.New("loading engine env file")
	errInvalidEnvironEntry = errors.New("invalid environment entry")
)

type boundaryDirs struct {
	root string
	lib  string
	tmp  string
}

// buildEnviron builds the engine environment without inheriting anything from
// the host process.
//
// Precedence (highest to lowest):
//  1. environ (process-wide settings forwarded by the caller)
//  2. Inline env vars (spec.Env)
//  3. Env file vars (spec.EnvFile)
//  4. Boundary defaults (PATH, HOME, TMPDIR, GENTASK_ENGINE_LIB)
func buildEnviron(dirs boundaryDirs, spec codegen.EngineSpec, environ []string) ([]string, error) {
	env := map[string]string{
		"PATH":       dirs.lib,
		"HOME":       dirs.root,
		"TMPDIR":     dirs.tmp,
		EnvEngineLib: dirs.lib,
	}

	if spec.EnvFile != "" {
		vars, err := godotenv.Read(spec.EnvFile)
		if err != nil {
			return nil, flaterrors.Join(err, errLoadingEnvFile)
		}
		maps.Copy(env, vars)
	}

	maps.Copy(env, spec.Env)

	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, flaterrors.Join(fmt.Errorf("with entry %q", entry), errInvalidEnvironEntry)
		}
		env[key] = value
	}

	out := make([]string, 0, len(env))
	for _, key := range slices.Sorted(maps.Keys(env)) {
		out = append(out, key+"="+env[key])
	}

	return out, nil
}
