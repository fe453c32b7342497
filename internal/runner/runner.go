// Package runner executes generation units: it validates a unit's
// configuration, then loads the engine behind an isolation boundary and
// invokes it inside the process-wide invocation guard.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/alexandremahdhaoui/gentask/internal/ctxlog"
	"github.com/alexandremahdhaoui/gentask/internal/guard"
	"github.com/alexandremahdhaoui/gentask/pkg/codegen"
	"github.com/google/uuid"
)

// Hook observes the state transitions of every unit run by a Runner.
type Hook func(unit string, state State)

// Report describes one run of a unit.
type Report struct {
	Unit         string       `json:"unit"`
	InvocationID string       `json:"invocationID"`
	State        State        `json:"state"`
	History      []Transition `json:"history"`
	StartedAt    time.Time    `json:"startedAt"`
	FinishedAt   time.Time    `json:"finishedAt"`

	// Options are the options sent to the engine. Empty when the run failed
	// before invoking it.
	Options codegen.Options        `json:"options"`
	Result  codegen.GenerateResult `json:"result"`

	// ReleaseErr is the error returned while releasing the isolation
	// boundary. It does not fail the run.
	ReleaseErr error `json:"-"`
}

// Duration returns how long the run took.
func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Runner runs generation units against one engine.
type Runner struct {
	loader codegen.EngineLoader
	engine codegen.EngineSpec
	guard  *guard.Guard
	hooks  []Hook
	now    func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithGuard sets the invocation guard. Defaults to guard.Default().
func WithGuard(g *guard.Guard) Option {
	return func(r *Runner) { r.guard = g }
}

// WithHooks adds observers of state transitions.
func WithHooks(hooks ...Hook) Option {
	return func(r *Runner) { r.hooks = append(r.hooks, hooks...) }
}

// New creates a Runner loading engine through loader.
func New(loader codegen.EngineLoader, engine codegen.EngineSpec, opts ...Option) *Runner {
	r := &Runner{
		loader: loader,
		engine: engine,
		guard:  nil,
		hooks:  nil,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.guard == nil {
		r.guard = guard.Default()
	}

	return r
}

// Run executes unit once. The unit's configuration is snapshotted when Run
// starts. Every failure is a *codegen.TaskError naming the stage that failed;
// the engine is never invoked when validation fails. Runs are not retried.
func (r *Runner) Run(ctx context.Context, unit *codegen.Unit) (Report, error) {
	report := Report{ //nolint:exhaustruct
		Unit:         unit.Name(),
		InvocationID: uuid.NewString(),
		StartedAt:    r.now(),
	}
	r.enter(&report, StateIdle)

	log := ctxlog.FromContext(ctx).With("unit", report.Unit, "invocationID", report.InvocationID)
	ctx = ctxlog.WithLogger(ctx, log)

	fail := func(stage codegen.Stage, err error) (Report, error) {
		r.enter(&report, StateFailed)
		report.FinishedAt = r.now()

		log.Error("generation failed", "stage", stage, "error", err)

		return report, &codegen.TaskError{Unit: report.Unit, Stage: stage, Err: err}
	}

	r.enter(&report, StateValidating)

	cfg, err := unit.Snapshot()
	if err != nil {
		return fail(codegen.StageValidation, err)
	}

	if err := cfg.Validate(); err != nil {
		return fail(codegen.StageValidation, err)
	}

	if err := codegen.ValidateOutputDir(cfg.OutputDir, unit.Dirs()); err != nil {
		return fail(codegen.StageOutputCheck, err)
	}

	r.enter(&report, StateGuardedInvoking)
	report.Options = cfg.Options()

	stage := codegen.StageGuard
	err = r.guard.Do(ctx, cfg.SystemProperties, func(ctx context.Context, inv *guard.Invocation) error {
		stage = codegen.StageLoad
		log.Debug("loading engine", "entryPoint", r.engine.EntryPoint, "settings", inv.Keys())

		instance, err := r.loader.Load(ctx, r.engine, inv.Environ())
		if err != nil {
			return err
		}

		defer func() {
			if err := instance.Close(); err != nil {
				report.ReleaseErr = err
				log.Warn("releasing engine", "error", err)
			}
		}()

		stage = codegen.StageGenerate
		log.Info("generating", "lang", report.Options.Lang, "outputDir", report.Options.OutputDir)

		// a started generation runs to completion, even on cancellation
		result, err := instance.Generate(context.WithoutCancel(ctx), report.Options)
		if err != nil {
			return err
		}

		report.Result = result
		stage = codegen.StageGuard

		return nil
	})
	if err != nil {
		return fail(stage, err)
	}

	r.enter(&report, StateDone)
	report.FinishedAt = r.now()

	log.Info("generated", "outputDir", report.Result.OutputDir, "files", len(report.Result.Files),
		"duration", report.Duration())

	return report, nil
}

func (r *Runner) enter(report *Report, state State) {
	if len(report.History) > 0 && !canTransition(report.State, state) {
		panic(fmt.Sprintf("runner: invalid transition from %s to %s", report.State, state))
	}

	report.State = state
	report.History = append(report.History, Transition{State: state, At: r.now()})

	for _, hook := range r.hooks {
		hook(report.Unit, state)
	}
}
