package rules

import (
	"os"
	"strings"
)

// parseDepfile extracts the dependency list from a Make-style depfile:
// everything after the first colon, with backslash-newline continuations
// joined and whitespace-separated entries. The target side is discarded.
func parseDepfile(raw string) []string {
	i := strings.Index(raw, ":")
	if i >= 0 {
		raw = raw[i+1:]
	}
	raw = strings.ReplaceAll(raw, "\\\n", " ")
	raw = strings.ReplaceAll(raw, "\\\r\n", " ")
	return strings.Fields(raw)
}

// readDepfile parses the depfile at path. ok is false if the file does not
// exist yet, which is the normal state before the first compile.
func readDepfile(path string) (deps []string, ok bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return parseDepfile(string(b)), true, nil
}
