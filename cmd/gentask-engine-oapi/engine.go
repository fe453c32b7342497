package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alexandremahdhaoui/gentask/internal/cmdutil"
	"github.com/alexandremahdhaoui/gentask/internal/ctxlog"
	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"gopkg.in/yaml.v3"
)

// Envs configures the engine.
type Envs struct {
	// OAPICodegen is the oapi-codegen command line. Inside an isolation
	// boundary only the engine artifacts are on PATH, so oapi-codegen must be
	// one of them.
	OAPICodegen string `env:"OAPI_CODEGEN" envDefault:"oapi-codegen"`
	// OutputFilename is the name of the generated file in the output directory.
	OutputFilename string `env:"OAPI_CODEGEN_OUTPUT_FILENAME" envDefault:"zz_generated.oapi-codegen.go"`
}

// ----------------------------------------------------- OAPI-CODEGEN CONFIG ---------------------------------------- //

type codegenConfig struct {
	Package       string            `yaml:"package"`
	Output        string            `yaml:"output"`
	Generate      generateOptions   `yaml:"generate"`
	OutputOptions outputOptions     `yaml:"output-options"`
	ImportMapping map[string]string `yaml:"import-mapping,omitempty"`
}

type generateOptions struct {
	Client        bool `yaml:"client,omitempty"`
	Models        bool `yaml:"models,omitempty"`
	EmbeddedSpec  bool `yaml:"embedded-spec,omitempty"`
	StdHTTPServer bool `yaml:"std-http-server,omitempty"`
	StrictServer  bool `yaml:"strict-server,omitempty"`
}

type outputOptions struct {
	// to make sure that all types are generated
	SkipPrune bool `yaml:"skip-prune"`
}

var langs = map[string]generateOptions{
	"go-client": {Client: true, Models: true, EmbeddedSpec: true},
	"go-server": {Models: true, EmbeddedSpec: true, StdHTTPServer: true, StrictServer: true},
	"go-models": {Models: true},
}

// ----------------------------------------------------- ENGINE ----------------------------------------------------- //

var (
	errUnsupportedLang    = errors.New("unsupported lang")
	errWritingConfig      = errors.New("writing oapi-codegen config")
	errCreatingOutputDir  = errors.New("creating output directory")
	errRunningOAPICodegen = errors.New("running oapi-codegen")
	errInvalidPackageName = errors.New("invalid package name")
	errInvalidOAPICodegen = errors.New("invalid OAPI_CODEGEN")
)

type executor func(ctx context.Context, input cmdutil.ExecuteInput) cmdutil.ExecuteOutput

// engine generates Go code with oapi-codegen.
type engine struct {
	envs Envs
	exec executor
}

var _ codegen.Engine = (*engine)(nil)

func newEngine(envs Envs) *engine {
	return &engine{envs: envs, exec: cmdutil.ExecuteCommand}
}

func (e *engine) Generate(ctx context.Context, opts codegen.Options) (codegen.GenerateResult, error) {
	log := ctxlog.FromContext(ctx)

	generate, ok := langs[opts.Lang]
	if !ok {
		return codegen.GenerateResult{}, flaterrors.Join(
			fmt.Errorf("got %q, want one of %v", opts.Lang, supportedLangs()), errUnsupportedLang)
	}

	if opts.TemplateDir != "" {
		log.Warn("templateDir is not supported by oapi-codegen and is ignored", "templateDir", opts.TemplateDir)
	}

	pkg, err := packageName(opts)
	if err != nil {
		return codegen.GenerateResult{}, err
	}

	output := filepath.Join(opts.OutputDir, e.envs.OutputFilename)

	if opts.SkipOverwrite != nil && *opts.SkipOverwrite {
		if _, err := os.Stat(output); err == nil {
			log.Info("skipping existing file", "output", output)
			return codegen.GenerateResult{OutputDir: opts.OutputDir}, nil
		}
	}

	cfg := codegenConfig{
		Package:       pkg,
		Output:        output,
		Generate:      generate,
		OutputOptions: outputOptions{SkipPrune: true},
	}
	if opts.Mappings != nil {
		cfg.ImportMapping = opts.Mappings.ImportMappings
	}

	cmdName, args := parseExecutable(e.envs.OAPICodegen)
	if cmdName == "" {
		return codegen.GenerateResult{}, errInvalidOAPICodegen
	}

	path, cleanup, err := writeTempCodegenConfig(cfg)
	if err != nil {
		return codegen.GenerateResult{}, err
	}
	defer cleanup()

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return codegen.GenerateResult{}, flaterrors.Join(err, errCreatingOutputDir)
	}

	out := e.exec(ctx, cmdutil.ExecuteInput{
		Command: cmdName,
		Args:    append(args, "--config", path, opts.InputSpec),
	})

	if opts.Verbose != nil && *opts.Verbose && out.Stdout != "" {
		log.Info("oapi-codegen output", "stdout", out.Stdout)
	}

	if out.Failed() {
		return codegen.GenerateResult{}, flaterrors.Join(
			fmt.Errorf("exit code %d: %s", out.ExitCode, strings.TrimSpace(out.Error+" "+out.Stderr)),
			errRunningOAPICodegen)
	}

	return codegen.GenerateResult{OutputDir: opts.OutputDir, Files: []string{e.envs.OutputFilename}}, nil
}

func supportedLangs() []string {
	return slices.Sorted(maps.Keys(langs))
}

// packageName picks additionalProperties.packageName, then the api package,
// then the base name of the output directory.
func packageName(opts codegen.Options) (string, error) {
	if v, ok := opts.AdditionalProperties["packageName"]; ok {
		s, ok := v.(string)
		if !ok || s == "" {
			return "", flaterrors.Join(fmt.Errorf("additionalProperties.packageName: got %v", v), errInvalidPackageName)
		}
		return s, nil
	}

	if opts.Naming != nil && opts.Naming.APIPackage != "" {
		return opts.Naming.APIPackage, nil
	}

	base := filepath.Base(opts.OutputDir)
	if base == "." || base == string(filepath.Separator) {
		return "", flaterrors.Join(fmt.Errorf("cannot derive from %q", opts.OutputDir), errInvalidPackageName)
	}

	return strings.NewReplacer("-", "_", ".", "_").Replace(base), nil
}

func parseExecutable(executable string) (string, []string) {
	split := strings.Fields(executable)
	if len(split) == 0 {
		return "", nil
	}
	return split[0], split[1:]
}

func writeTempCodegenConfig(cfg codegenConfig) (string, func(), error) {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return "", nil, flaterrors.Join(err, errWritingConfig)
	}

	tempFile, err := os.CreateTemp("", "oapi-codegen-*.yaml")
	if err != nil {
		return "", nil, flaterrors.Join(err, errWritingConfig)
	}

	cleanup := func() {
		_ = os.RemoveAll(tempFile.Name())
	}

	if _, err := tempFile.Write(b); err != nil {
		_ = tempFile.Close()
		cleanup()
		return "", nil, flaterrors.Join(err, errWritingConfig)
	}

	if err := tempFile.Close(); err != nil {
		cleanup()
		return "", nil, flaterrors.Join(err, errWritingConfig)
	}

	return tempFile.Name(), cleanup, nil
}
