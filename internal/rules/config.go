// Package rules provides the concrete compile and link rules: one C source
// file to one object file with compiler-discovered header dependencies, and
// object files plus libraries to one executable.
package rules

import "strings"

// Config is the toolchain flag vocabulary handed to the rules. The flag sets
// are data, not behavior: callers may swap any of them.
type Config struct {
	CC string

	Diag []string // diagnostics formatting
	Link []string // linker selection
	Warn []string // warning set
	Defs []string // language/codegen defines
	Opt  []string // optimization/debug flags of the selected variant

	BuildDir  string // object/depfile directory, e.g. bld
	SourceDir string // C source directory, e.g. src
	Variant   string // object name infix, "dbg" or "rel"
}

// DefaultConfig returns the flag vocabulary for cc. Diagnostics and linker
// selection differ between clang and gcc; everything else is shared.
func DefaultConfig(cc string) *Config {
	cfg := &Config{
		CC: cc,
		Warn: []string{
			"-Wall", "-Wextra", "-Werror",
			"-Wno-cast-align", "-Wno-cast-qual", "-Wno-unused-parameter",
			"-Wno-unused-function", "-Wno-unused-variable", "-Wshadow",
			"-Wpointer-arith", "-Wstrict-prototypes", "-Wmissing-prototypes",
		},
		Defs:      []string{"-fno-exceptions", "-mfma", "-std=c2x"},
		Opt:       []string{"-g"},
		BuildDir:  "bld",
		SourceDir: "src",
		Variant:   "dbg",
	}
	if strings.Contains(cc, "gcc") {
		cfg.Diag = []string{"-fno-diagnostics-show-caret"}
		cfg.Link = []string{"-fuse-ld=mold"}
	} else {
		cfg.Diag = []string{"-fno-caret-diagnostics"}
		cfg.Link = []string{"--ld-path=/usr/bin/mold"}
	}
	return cfg
}

// Release switches cfg to the release variant.
func (cfg *Config) Release() *Config {
	cfg.Opt = []string{"-O2"}
	cfg.Variant = "rel"
	return cfg
}

// Object returns the object file target for the named source unit, e.g.
// "x" → "bld/x.dbg.o".
func (cfg *Config) Object(name string) string {
	return cfg.BuildDir + "/" + name + "." + cfg.Variant + ".o"
}
