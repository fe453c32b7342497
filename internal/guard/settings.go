package guard

import (
	"maps"
	"os"
	"sync"
)

// Settings is a process-wide key/value store, visible to every caller in the
// process rather than scoped to a single call.
type Settings interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
	Unset(key string) error
}

// EnvSettings stores settings in the process environment.
type EnvSettings struct{}

var _ Settings = EnvSettings{}

func (EnvSettings) Lookup(key string) (string, bool) { return os.LookupEnv(key) }
func (EnvSettings) Set(key, value string) error      { return os.Setenv(key, value) }
func (EnvSettings) Unset(key string) error           { return os.Unsetenv(key) }

// MapSettings stores settings in memory. It is safe for concurrent use.
type MapSettings struct {
	mu *sync.RWMutex
	m  map[string]string
}

var _ Settings = (*MapSettings)(nil)

// NewMapSettings creates a MapSettings holding a copy of initial.
func NewMapSettings(initial map[string]string) *MapSettings {
	m := maps.Clone(initial)
	if m == nil {
		m = make(map[string]string)
	}

	return &MapSettings{
		mu: new(sync.RWMutex),
		m:  m,
	}
}

func (s *MapSettings) Lookup(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	return v, ok
}

func (s *MapSettings) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[key] = value
	return nil
}

func (s *MapSettings) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, key)
	return nil
}

// Snapshot returns a copy of every setting.
func (s *MapSettings) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.m)
}
