package rules

import (
	"context"
	"os"
	"strings"

	"golang.org/x/xerrors"

	"github.com/rdo-build/rdo/internal/redo"
)

// sourceFor maps an object target back to its C source file, e.g.
// "bld/x.dbg.o" → "src/x.c".
func sourceFor(cfg *Config, target string) (string, error) {
	rest, ok := strings.CutPrefix(target, cfg.BuildDir+"/")
	if !ok {
		return "", xerrors.Errorf("object %s is outside %s/", target, cfg.BuildDir)
	}
	name, ok := strings.CutSuffix(rest, "."+cfg.Variant+".o")
	if !ok {
		return "", xerrors.Errorf("object %s does not match the %s variant", target, cfg.Variant)
	}
	return cfg.SourceDir + "/" + name + ".c", nil
}

// Compile returns the rule building one object file from one C source file.
// Header dependencies are discovered from the compiler-emitted depfile: the
// previous run's depfile is consulted before compiling so that stale inputs
// rebuild first, and the freshly written depfile is recorded afterwards. The
// first-ever compile, which has no prior depfile, records the fresh one so
// the bootstrap run already knows its headers.
func Compile(cfg *Config) redo.RuleFunc {
	return func(ctx context.Context, b *redo.Ctx, target string) error {
		depfile := strings.TrimSuffix(target, ".o") + ".d"
		src, err := sourceFor(cfg, target)
		if err != nil {
			return err
		}

		priorDeps, havePrior, err := readDepfile(depfile)
		if err != nil {
			return err
		}
		if havePrior {
			if err := b.Ifchange(ctx, target, priorDeps); err != nil {
				return err
			}
		}

		args := []string{"-MMD", "-MF", depfile, "-MT", target}
		args = append(args, cfg.Defs...)
		args = append(args, cfg.Diag...)
		args = append(args, cfg.Warn...)
		args = append(args, cfg.Opt...)
		args = append(args, "-c", src, "-o", target)
		status, stderr := b.Spawn(ctx, cfg.CC, args...)
		if status != 0 {
			os.Stderr.Write(stderr)
			return xerrors.Errorf("compile %s: exit status %d", target, status)
		}

		// Both outputs were just written; dependents must stamp the
		// fresh mtimes.
		b.Mtimes.Invalidate(target)
		b.Mtimes.Invalidate(depfile)

		if err := b.Ifchange(ctx, target, []string{depfile}); err != nil {
			return err
		}
		if !havePrior {
			freshDeps, ok, err := readDepfile(depfile)
			if err != nil {
				return err
			}
			if !ok {
				return xerrors.Errorf("compiler did not write %s", depfile)
			}
			return b.Ifchange(ctx, target, freshDeps)
		}
		return nil
	}
}

// Link returns the rule linking objs into the executable target, appending
// libs to the link line.
func Link(cfg *Config, objs []string, libs []string) redo.RuleFunc {
	return func(ctx context.Context, b *redo.Ctx, target string) error {
		if err := b.Ifchange(ctx, target, objs); err != nil {
			return err
		}
		var args []string
		args = append(args, cfg.Diag...)
		args = append(args, cfg.Link...)
		args = append(args, cfg.Warn...)
		args = append(args, cfg.Opt...)
		args = append(args, objs...)
		args = append(args, "-o", target)
		args = append(args, libs...)
		status, stderr := b.Spawn(ctx, cfg.CC, args...)
		if status != 0 {
			os.Stderr.Write(stderr)
			return xerrors.Errorf("link %s: exit status %d", target, status)
		}
		b.Mtimes.Invalidate(target)
		return nil
	}
}
