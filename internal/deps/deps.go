// Package deps persists the dependency graph between build runs: for each
// target, the set of dependencies it was built from, each with the mtime
// stamp observed when the build of that target completed.
package deps

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/rdo-build/rdo/internal/mtime"
)

// Set maps a dependency to its recorded stamp.
type Set map[string]mtime.Stamp

// Store is the target → Set mapping, loaded from and saved to a JSON file.
type Store struct {
	mu      sync.Mutex
	targets map[string]Set
}

func NewStore() *Store {
	return &Store{targets: make(map[string]Set)}
}

// Load reads the store from path. A missing file yields an empty store; a
// file that cannot be decoded is a hard error.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStore(), nil
		}
		return nil, err
	}
	s := NewStore()
	if err := json.Unmarshal(b, &s.targets); err != nil {
		return nil, xerrors.Errorf("malformed dependency store %s: %w", path, err)
	}
	if s.targets == nil {
		s.targets = make(map[string]Set)
	}
	return s, nil
}

// Save writes the store to path, replacing it atomically so that a crash
// mid-write cannot truncate the previous graph.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	b, err := json.Marshal(s.targets)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, b, 0644)
}

// Get returns the recorded Set for target.
func (s *Store) Get(target string) (Set, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.targets[target]
	return set, ok
}

// Set replaces the recorded Set for target.
func (s *Store) Set(target string, set Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[target] = set
}

// Merge unions set into the recorded Set for target, incoming stamps winning
// on key conflicts.
func (s *Store) Merge(target string, set Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.targets[target]
	if !ok {
		s.targets[target] = set
		return
	}
	for dep, stamp := range set {
		prev[dep] = stamp
	}
}

// Targets returns the recorded target names, in map order.
func (s *Store) Targets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.targets))
	for target := range s.targets {
		names = append(names, target)
	}
	return names
}
