package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/xerrors"
)

const runHelp = `rdo run [-flags] [arg...]

Build the executable target, then run it with the remaining arguments and
inherited stdio. The run only happens after a fully successful build.

Example:
  % rdo run -o mos
`

func cmdrun(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("run", flag.ExitOnError)
	bc := buildFlags(fset)
	fset.Usage = usage(fset, runHelp)
	fset.Parse(args)

	exe, err := bc.build(ctx, nil)
	if err != nil {
		return err
	}
	if !strings.Contains(exe, "/") {
		exe = "./" + exe
	}
	cmd := exec.CommandContext(ctx, exe, fset.Args()...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return xerrors.Errorf("%v: %v", cmd.Args, err)
	}
	return nil
}
