package redo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// RuleFunc performs whatever work produces target. A nil return means the
// target was built (or verified) successfully.
type RuleFunc func(ctx context.Context, b *Ctx, target string) error

// Registry resolves a target to the rule that builds it: exact name first,
// then "default" + the target's extension, then a fallback rule that merely
// asserts the file already exists.
type Registry struct {
	rules map[string]RuleFunc
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]RuleFunc)}
}

// Register installs fn for name. Extension defaults are registered as e.g.
// "default.o".
func (r *Registry) Register(name string, fn RuleFunc) {
	r.rules[name] = fn
}

func (r *Registry) lookup(target string) RuleFunc {
	if fn, ok := r.rules[target]; ok {
		return fn
	}
	if fn, ok := r.rules["default"+filepath.Ext(target)]; ok {
		return fn
	}
	return sourceExists
}

// sourceExists is the fallback rule: a target nobody knows how to build must
// already exist on disk, in which case it is a leaf with no dependencies.
func sourceExists(ctx context.Context, b *Ctx, target string) error {
	if _, err := os.Stat(target); err != nil {
		return &NoRuleError{Target: target}
	}
	b.recordLeaf(target)
	return nil
}

// NoRuleError reports a target with no matching rule that does not exist on
// disk either.
type NoRuleError struct {
	Target string
}

func (e *NoRuleError) Error() string {
	return fmt.Sprintf("%s does not exist and there is no rule to make it", e.Target)
}

// DependencyError reports that at least one dependency of Target failed to
// build. The failing rules have already written their diagnostics.
type DependencyError struct {
	Target string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("failed to build dependencies for %s", e.Target)
}
