// Package redo implements the build engine core: the ifchange primitive,
// the recursive up-to-date check, rule dispatch, and the bounded-concurrency
// scheduling of rule execution.
package redo

import (
	"context"
	"log"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/rdo-build/rdo/internal/deps"
	"github.com/rdo-build/rdo/internal/mtime"
	"github.com/rdo-build/rdo/internal/trace"
)

// Ctx carries the state of one build run. The four process-wide caches of
// the engine (store, mtimes, running map, seen set) live here rather than in
// globals; their lifecycle is exactly one run.
type Ctx struct {
	// Log receives one line per scheduled build (the bare target name).
	Log *log.Logger

	// Store is the persistent dependency graph. It survives the run; the
	// caller decides when to save it.
	Store *deps.Store

	// Mtimes caches modification times for this run.
	Mtimes *mtime.Cache

	// Rules resolves targets to the rules that build them.
	Rules *Registry

	sema *semaphore.Weighted

	mu       sync.Mutex
	running  map[string]*task // at most one in-flight build per target
	seen     map[string]bool  // targets whose Set was replaced this run
	checking map[string]bool  // isUpToDate re-entrancy guard
}

// New returns a build context executing at most jobs external processes in
// parallel. jobs < 1 selects the CPU count.
func New(logger *log.Logger, store *deps.Store, rules *Registry, jobs int) *Ctx {
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.New(os.Stdout, "", 0)
	}
	return &Ctx{
		Log:      logger,
		Store:    store,
		Mtimes:   mtime.NewCache(),
		Rules:    rules,
		sema:     semaphore.NewWeighted(int64(jobs)),
		running:  make(map[string]*task),
		seen:     make(map[string]bool),
		checking: make(map[string]bool),
	}
}

// task is the shared handle for one in-flight build. Any number of awaiters
// block on done and observe the same err.
type task struct {
	target string
	done   chan struct{}
	err    error
}

func (b *Ctx) start(ctx context.Context, rule RuleFunc, target string) *task {
	t := &task{target: target, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		ev := trace.Event("build " + target)
		defer ev.Done()
		t.err = rule(ctx, b, target)
		if t.err != nil {
			log.Printf("%v", t.err)
		}
	}()
	return t
}

// Ifchange declares that me depends on targets, in order. Each target is
// stamped with its current mtime, rebuilt first if stale, then re-stamped
// with its post-build mtime. On success the collected stamps are recorded as
// (part of) me's dependency set; on failure the store is left untouched and
// a *DependencyError naming me is returned.
func (b *Ctx) Ifchange(ctx context.Context, me string, targets []string) error {
	mydeps := make(deps.Set, len(targets))

	b.mu.Lock()
	var pending []*task
	for _, target := range targets {
		// Stamp before any rebuild: the caller's record must match the
		// state at the moment the dependency was declared. Completed
		// builds overwrite this below.
		mydeps[target] = b.Mtimes.Get(target)
		if b.isUpToDate(target) {
			continue
		}
		t, ok := b.running[target]
		if !ok {
			b.Log.Printf("%s", target)
			t = b.start(ctx, b.Rules.lookup(target), target)
			b.running[target] = t
		}
		pending = append(pending, t)
	}
	b.mu.Unlock()

	// Harvest in completion order. Siblings of a failed build still run to
	// completion and are still stamped.
	finished := make(chan *task)
	for _, t := range pending {
		t := t
		go func() {
			<-t.done
			finished <- t
		}()
	}
	var failed bool
	for range pending {
		t := <-finished
		// The rule invalidated its output, so this observes the
		// post-build mtime.
		mydeps[t.target] = b.Mtimes.Get(t.target)
		if t.err != nil {
			failed = true
		}
	}
	if failed {
		return &DependencyError{Target: me}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.Store.Get(me); !ok || !b.seen[me] {
		// First write this run replaces the record wholesale, discarding
		// dependencies a previous run knew about but this one no longer
		// declares.
		b.Store.Set(me, mydeps)
		b.seen[me] = true
	} else {
		// Later ifchange calls for the same target within this run
		// accumulate.
		b.Store.Merge(me, mydeps)
	}
	return nil
}

// isUpToDate reports whether target can be skipped: it exists, it has a
// recorded dependency set, and every dependency still carries its recorded
// stamp, recursively. Called with b.mu held.
func (b *Ctx) isUpToDate(target string) bool {
	if b.checking[target] {
		return false // cycle: force a rebuild attempt rather than recursing forever
	}
	b.checking[target] = true
	defer delete(b.checking, target)

	if _, err := os.Stat(target); err != nil {
		return false
	}
	set, ok := b.Store.Get(target)
	if !ok {
		return false
	}
	for dep, stamp := range set {
		if !b.Mtimes.Get(dep).Equal(stamp) {
			return false
		}
		if !b.isUpToDate(dep) {
			return false
		}
	}
	return true
}

// recordLeaf records target as a dependency-less leaf, satisfying the
// invariant that everything reachable in the store is itself recorded.
func (b *Ctx) recordLeaf(target string) {
	b.Store.Set(target, deps.Set{})
}
