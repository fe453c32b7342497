// Package guard serializes engine invocations that mutate process-wide
// settings and restores those settings once each invocation is over.
package guard

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/alexandremahdhaoui/gentask/pkg/flaterrors"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrAcquiringGuard is returned when the guarded region could not be entered.
	ErrAcquiringGuard = errors.New("acquiring invocation guard")

	errApplyingSettings  = errors.New("applying process-wide settings")
	errRestoringSettings = errors.New("restoring process-wide settings")
)

// Guard is a mutual-exclusion region shared by every generation unit of a
// process. At most one invocation runs inside it at a time; waiters enter in
// arrival order.
type Guard struct {
	sem      *semaphore.Weighted
	settings Settings
}

// New creates a Guard over settings.
func New(settings Settings) *Guard {
	return &Guard{
		sem:      semaphore.NewWeighted(1),
		settings: settings,
	}
}

var defaultGuard = sync.OnceValue(func() *Guard { return New(EnvSettings{}) })

// Default returns the process-lifetime Guard over the process environment.
func Default() *Guard {
	return defaultGuard()
}

// Invocation describes the settings applied for one guarded call.
type Invocation struct {
	keys     []string
	settings Settings
}

// Keys returns the sorted keys this invocation set.
func (inv *Invocation) Keys() []string {
	return slices.Clone(inv.keys)
}

// Environ renders the current value of every key this invocation set as
// KEY=VALUE entries.
func (inv *Invocation) Environ() []string {
	out := make([]string, 0, len(inv.keys))
	for _, key := range inv.keys {
		if v, ok := inv.settings.Lookup(key); ok {
			out = append(out, fmt.Sprintf("%s=%s", key, v))
		}
	}
	return out
}

type priorValue struct {
	value   string
	present bool
}

// Do enters the guarded region, applies props as process-wide settings and
// calls fn. Whatever fn does, including panicking, every key of props is
// restored to its prior state before the region is left.
//
// ctx only bounds the wait to enter the region; fn is never interrupted.
func (g *Guard) Do(
	ctx context.Context,
	props map[string]string,
	fn func(ctx context.Context, inv *Invocation) error,
) (err error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return flaterrors.Join(err, ErrAcquiringGuard)
	}
	defer g.sem.Release(1)

	keys := slices.Sorted(maps.Keys(props))

	prior := make(map[string]priorValue, len(keys))
	defer func() {
		if restoreErr := g.restore(keys, prior); restoreErr != nil {
			err = flaterrors.Join(err, restoreErr)
		}
	}()

	for _, key := range keys {
		v, ok := g.settings.Lookup(key)
		prior[key] = priorValue{value: v, present: ok}

		if err := g.settings.Set(key, props[key]); err != nil {
			return flaterrors.Join(fmt.Errorf("with key %q: %w", key, err), errApplyingSettings)
		}
	}

	return fn(ctx, &Invocation{keys: keys, settings: g.settings})
}

func (g *Guard) restore(keys []string, prior map[string]priorValue) error {
	var errs []error

	for _, key := range keys {
		p, recorded := prior[key]
		if !recorded {
			continue
		}

		var err error
		if p.present {
			err = g.settings.Set(key, p.value)
		} else {
			err = g.settings.Unset(key)
		}

		if err != nil {
			errs = append(errs, fmt.Errorf("with key %q: %w", key, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return flaterrors.Join(append(errs, errRestoringSettings)...)
}
