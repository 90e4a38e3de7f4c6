package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rdo-build/rdo/internal/deps"
	"github.com/rdo-build/rdo/internal/env"
	"github.com/rdo-build/rdo/internal/redo"
	"github.com/rdo-build/rdo/internal/rules"
)

const buildHelp = `rdo build [-flags] [target...]

Bring targets up to date (default: the executable named by -o), running at
most -jobs external processes in parallel. Targets whose recorded inputs are
unchanged since the last successful run are skipped. On success the recorded
dependency graph is written back to the -deps file; on failure it is left
untouched.

Example:
  % rdo build -o mos -libs=-L/usr/local/lib,-lSDL3
  % rdo build bld/def.dbg.o
`

// buildConfig collects the flags shared by the build and run subcommands.
type buildConfig struct {
	exe      *string
	cc       *string
	libs     *string
	jobs     *int
	depsPath *string
	rel      *bool
}

func buildFlags(fset *flag.FlagSet) *buildConfig {
	return &buildConfig{
		exe:      fset.String("o", "a.out", "executable target to link"),
		cc:       fset.String("cc", env.CC, "compiler driver"),
		libs:     fset.String("libs", "", "comma-separated linker arguments, e.g. -L/usr/local/lib,-lSDL3"),
		jobs:     fset.Int("jobs", runtime.NumCPU(), "number of parallel compile/link processes"),
		depsPath: fset.String("deps", ".deps", "path of the recorded dependency graph"),
		rel:      fset.Bool("rel", false, "build the release variant instead of debug"),
	}
}

// build brings targets up to date (default: the executable) and returns the
// executable target name. The dependency graph is only saved when every rule
// succeeded.
func (bc *buildConfig) build(ctx context.Context, targets []string) (string, error) {
	cfg := rules.DefaultConfig(*bc.cc)
	cfg.BuildDir = env.BuildDir
	cfg.SourceDir = env.SourceDir
	if *bc.rel {
		cfg.Release()
	}

	srcs, err := filepath.Glob(cfg.SourceDir + "/*.c")
	if err != nil {
		return "", err
	}
	objs := objects(cfg, srcs)
	libs := splitList(*bc.libs)

	if err := os.MkdirAll(cfg.BuildDir, 0755); err != nil {
		return "", err
	}
	store, err := deps.Load(*bc.depsPath)
	if err != nil {
		return "", err
	}

	reg := redo.NewRegistry()
	reg.Register("default.o", rules.Compile(cfg))
	reg.Register(*bc.exe, rules.Link(cfg, objs, libs))

	b := redo.New(log.New(os.Stdout, "", 0), store, reg, *bc.jobs)
	if len(targets) == 0 {
		targets = []string{*bc.exe}
	}
	if err := b.Ifchange(ctx, "all", targets); err != nil {
		return "", err
	}
	return *bc.exe, store.Save(*bc.depsPath)
}

// objects maps C source paths to their object targets for the selected
// variant.
func objects(cfg *rules.Config, srcs []string) []string {
	var objs []string
	for _, src := range srcs {
		name := strings.TrimSuffix(filepath.Base(src), ".c")
		objs = append(objs, cfg.Object(name))
	}
	return objs
}

func splitList(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

func cmdbuild(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("build", flag.ExitOnError)
	bc := buildFlags(fset)
	fset.Usage = usage(fset, buildHelp)
	fset.Parse(args)

	_, err := bc.build(ctx, fset.Args())
	return err
}
