// Package stacktrace trims raw goroutine stacks to the frames of this module.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns the "internal/...go:line" locations found in a raw
// stack trace, innermost first.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.SplitSeq(string(stack), "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}
		start := strings.Index(line[:idx], marker)
		if start == -1 {
			continue
		}

		loc := line[start+1:]
		if end := strings.IndexByte(loc, ' '); end != -1 {
			loc = loc[:end]
		}
		paths = append(paths, loc)
	}
	return paths
}
