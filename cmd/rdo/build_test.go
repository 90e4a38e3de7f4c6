package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rdo-build/rdo/internal/rules"
)

func TestObjects(t *testing.T) {
	cfg := rules.DefaultConfig("/usr/bin/clang")

	got := objects(cfg, []string{"src/def.c", "src/mos.c"})
	want := []string{"bld/def.dbg.o", "bld/mos.dbg.o"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("objects: diff (-want +got):\n%s", diff)
	}

	cfg.Release()
	got = objects(cfg, []string{"src/def.c"})
	if diff := cmp.Diff([]string{"bld/def.rel.o"}, got); diff != "" {
		t.Errorf("release objects: diff (-want +got):\n%s", diff)
	}
}

func TestSplitList(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "-lSDL3", want: []string{"-lSDL3"}},
		{in: "-L/usr/local/lib,-lSDL3,-lSDL3_ttf", want: []string{"-L/usr/local/lib", "-lSDL3", "-lSDL3_ttf"}},
		{in: ",-lm,", want: []string{"-lm"}},
	} {
		got := splitList(tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("splitList(%q): diff (-want +got):\n%s", tt.in, diff)
		}
	}
}
