package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/alexandremahdhaoui/gentask/internal/ctxlog"
	"github.com/alexandremahdhaoui/gentask/internal/guard"
	"github.com/alexandremahdhaoui/gentask/internal/isolation"
	"github.com/alexandremahdhaoui/gentask/internal/runner"
	"github.com/alexandremahdhaoui/gentask/pkg/artifactstore"
	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"github.com/alexandremahdhaoui/gentask/pkg/project"
	"golang.org/x/sync/errgroup"
)

var (
	errBuilding             = errors.New("building generation units")
	errResolvingEngine      = errors.New("resolving engine entry point on PATH")
	errInvalidParallelism   = errors.New("invalid GENTASK_PARALLELISM")
	errGenerationUnitFailed = errors.New("generation unit failed")
)

// builder runs the units of a project file.
type builder struct {
	envs   Envs
	loader codegen.EngineLoader
	guard  *guard.Guard
	out    io.Writer
}

func newBuilder(envs Envs, out io.Writer) *builder {
	return &builder{
		envs:   envs,
		loader: isolation.NewLoader(),
		guard:  guard.Default(),
		out:    out,
	}
}

// buildSummary is returned by the build tool.
type buildSummary struct {
	Generated []artifactstore.Artifact `json:"generated"`
	Skipped   []string                 `json:"skipped,omitempty"`
	Failed    []string                 `json:"failed,omitempty"`
}

// build runs the named units, or every unit when names is empty. Units whose
// fingerprint matches their last recorded artifact are skipped unless force
// is set. Every unit runs even when another fails; their errors are joined.
func (b *builder) build(ctx context.Context, names []string, force bool) (buildSummary, error) {
	log := ctxlog.FromContext(ctx)
	summary := buildSummary{Generated: []artifactstore.Artifact{}}

	if b.envs.Parallelism < 1 {
		return summary, flaterrors.Join(fmt.Errorf("got %d", b.envs.Parallelism), errInvalidParallelism)
	}

	// I. Read project configuration
	config, err := project.ReadConfigFromPath(b.envs.ConfigPath)
	if err != nil {
		return summary, flaterrors.Join(err, errBuilding)
	}

	specs, err := selectUnits(config, names)
	if err != nil {
		return summary, flaterrors.Join(err, errBuilding)
	}

	engine, err := resolveEngine(config.Engine)
	if err != nil {
		return summary, flaterrors.Join(err, errBuilding)
	}

	engineFingerprint, err := engine.Fingerprint()
	if err != nil {
		return summary, flaterrors.Join(err, errBuilding)
	}

	// II. Read artifact store
	store, err := artifactstore.ReadOrCreate(config.ArtifactStorePath)
	if err != nil {
		return summary, flaterrors.Join(err, errBuilding)
	}

	// III. Run every unit
	r := runner.New(b.loader, engine, runner.WithGuard(b.guard))

	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.envs.Parallelism)

	for _, spec := range specs {
		unit := config.Build(spec)

		g.Go(func() error {
			fingerprint, err := unitVersion(unit, engineFingerprint)
			if err != nil {
				log.Warn("cannot fingerprint unit, regenerating", "unit", unit.Name(), "error", err)
			}

			mu.Lock()
			upToDate := err == nil && !force && artifactstore.UpToDate(store, unit.Name(), fingerprint)
			mu.Unlock()

			if upToDate {
				b.printf("✅ %s is up to date\n", unit.Name())

				mu.Lock()
				summary.Skipped = append(summary.Skipped, unit.Name())
				mu.Unlock()

				return nil
			}

			b.printf("⏳ Generating %s\n", unit.Name())

			report, err := r.Run(gctx, unit)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				b.printf("❌ %s\n", err)
				summary.Failed = append(summary.Failed, unit.Name())
				errs = append(errs, err)

				return nil
			}

			artifact := artifactstore.Artifact{
				Name:         unit.Name(),
				Type:         artifactstore.TypeGeneratedSource,
				Location:     artifactstore.Location(report.Result.OutputDir),
				Timestamp:    report.FinishedAt.UTC().Format(time.RFC3339Nano),
				Version:      fingerprint,
				InvocationID: report.InvocationID,
				Files:        report.Result.Files,
			}
			artifactstore.AddOrUpdate(&store, artifact)
			summary.Generated = append(summary.Generated, artifact)

			b.printf("✅ Generated %s into %s (%d files, %s)\n",
				unit.Name(), report.Result.OutputDir, len(report.Result.Files), report.Duration().Round(time.Millisecond))

			return nil
		})
	}

	_ = g.Wait()

	// IV. Write artifact store
	artifactstore.Prune(&store)
	if err := artifactstore.Write(config.ArtifactStorePath, store); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return summary, flaterrors.Join(append(errs, errGenerationUnitFailed)...)
	}

	return summary, nil
}

func (b *builder) printf(format string, args ...any) {
	fmt.Fprintf(b.out, format, args...)
}

// unitVersion identifies the output of unit: its own fingerprint combined
// with the fingerprint of the engine generating it.
func unitVersion(unit *codegen.Unit, engineFingerprint string) (string, error) {
	fingerprint, err := unit.Fingerprint()
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256([]byte(fingerprint + engineFingerprint))

	return hex.EncodeToString(sum[:]), nil
}

// selectUnits returns the specs of the named units, in the order given.
func selectUnits(config project.Config, names []string) ([]project.UnitSpec, error) {
	if len(names) == 0 {
		return config.Units, nil
	}

	out := make([]project.UnitSpec, 0, len(names))
	for _, name := range names {
		spec, err := config.Unit(name)
		if err != nil {
			return nil, err
		}
		out = append(out, spec)
	}

	return out, nil
}

// resolveEngine defaults the engine artifacts to the entry point found on the
// host PATH.
func resolveEngine(spec codegen.EngineSpec) (codegen.EngineSpec, error) {
	if len(spec.Artifacts) > 0 {
		return spec, nil
	}

	path, err := exec.LookPath(spec.EntryPoint)
	if err != nil {
		return codegen.EngineSpec{}, flaterrors.Join(err, errResolvingEngine)
	}

	spec.Artifacts = []string{path}

	return spec, nil
}
