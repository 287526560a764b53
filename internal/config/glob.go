package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Stdin is the path argument that stands for standard input.
const Stdin = "-"

// ExpandGlobs turns command arguments into the inputs to read. Globs are
// expanded and skip directories, a named directory is an error, duplicates
// are dropped. The result is sorted with Stdin first.
func ExpandGlobs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("no inputs given")
	}

	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		switch {
		case arg == Stdin:
			add(arg)

		case strings.ContainsAny(arg, "*?["):
			matches, err := filepath.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			n := 0
			for _, m := range matches {
				if info, err := os.Stat(m); err == nil && info.IsDir() {
					continue
				}
				add(m)
				n++
			}
			if n == 0 {
				return nil, fmt.Errorf("no files match %q", arg)
			}

		default:
			info, err := os.Stat(arg)
			if err != nil {
				return nil, err
			}
			if info.IsDir() {
				return nil, fmt.Errorf("%s is a directory", arg)
			}
			add(arg)
		}
	}

	slices.SortFunc(out, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == Stdin:
			return -1
		case b == Stdin:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
	return out, nil
}
