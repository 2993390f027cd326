// Package discovery expands input/output filename patterns into the set of
// test cases for a task.
package discovery

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/hochfrequenz/judgerun/internal/domain"
)

// Options selects the files that make up a task's test suite
type Options struct {
	Task       string
	InPattern  string
	OutPattern string
	// Dir is prepended to relative patterns. Empty means the working directory.
	Dir string
}

// Skipped is a glob match that could not become a test case
type Skipped struct {
	Path   string
	Reason string
}

// Result holds the discovered test cases in glob order
type Result struct {
	Tests   []domain.TestCase
	Skipped []Skipped
}

// Names returns the test ids in discovery order
func (r *Result) Names() []string {
	return lo.Map(r.Tests, func(tc domain.TestCase, _ int) string { return tc.Name })
}

// Discover enumerates the input files matching opts.InPattern and pairs each
// with its expected output path. A missing {test} placeholder is a
// ConfigError; a malformed glob is a DiscoveryError. Matches that cannot be
// used are returned in Result.Skipped instead of failing the run.
func Discover(opts Options) (*Result, error) {
	// Dir is a literal path; only the patterns may carry wildcards
	in := withDir(escapeGlob(opts.Dir), opts.InPattern)
	out := withDir(opts.Dir, opts.OutPattern)

	p, err := compilePattern(opts.Task, in)
	if err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(p.glob)
	if err != nil {
		return nil, &domain.DiscoveryError{Pattern: p.glob, Err: err}
	}

	result := &Result{}
	seen := make(map[string]string, len(matches))

	for _, match := range matches {
		id, ok := p.testID(match)
		if !ok {
			result.Skipped = append(result.Skipped, Skipped{
				Path:   match,
				Reason: "test id could not be recovered from path",
			})
			continue
		}

		info, err := os.Stat(match)
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{Path: match, Reason: err.Error()})
			continue
		}
		if info.IsDir() {
			result.Skipped = append(result.Skipped, Skipped{Path: match, Reason: "is a directory"})
			continue
		}

		if first, dup := seen[id]; dup {
			result.Skipped = append(result.Skipped, Skipped{
				Path:   match,
				Reason: "duplicate test id " + id + " (already used by " + first + ")",
			})
			continue
		}
		seen[id] = match

		result.Tests = append(result.Tests, domain.TestCase{
			Name:       id,
			InputPath:  match,
			OutputPath: OutputPath(opts.Task, id, out),
		})
	}

	return result, nil
}

func withDir(dir, pattern string) string {
	if dir == "" || filepath.IsAbs(pattern) {
		return pattern
	}
	return filepath.Join(dir, pattern)
}

// escapeGlob quotes the filepath.Match metacharacters in a literal path
func escapeGlob(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch {
		case r == '*' || r == '?' || r == '[':
			b.WriteString("[" + string(r) + "]")
		case r == '\\' && filepath.Separator != '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
