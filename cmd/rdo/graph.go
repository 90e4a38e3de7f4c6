package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rdo-build/rdo/internal/deps"
)

const graphHelp = `rdo graph [-flags]

Print every target and dependency recorded in the -deps file, ordered so that
each dependency precedes its dependents. A cycle in the recorded graph is
reported as an error.

Example:
  % rdo graph
`

func cmdgraph(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("graph", flag.ExitOnError)
	var (
		depsPath = fset.String("deps", ".deps", "path of the recorded dependency graph")
	)
	fset.Usage = usage(fset, graphHelp)
	fset.Parse(args)

	store, err := deps.Load(*depsPath)
	if err != nil {
		return err
	}
	order, err := store.BuildOrder()
	if err != nil {
		return err
	}
	for _, target := range order {
		fmt.Println(target)
	}
	return nil
}
