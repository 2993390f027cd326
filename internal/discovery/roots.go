package discovery

import (
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/hochfrequenz/judgerun/internal/domain"
)

// Roots returns the deepest directories that contain every file the input
// and output patterns can name, without duplicates. Watching these is
// enough to notice added, removed or edited tests.
func Roots(opts Options) []string {
	patterns := []string{opts.InPattern, opts.OutPattern}
	return lo.Uniq(lo.Map(patterns, func(p string, _ int) string {
		return withDir(opts.Dir, staticRoot(strings.ReplaceAll(p, domain.TaskPlaceholder, opts.Task)))
	}))
}

// staticRoot is the longest leading run of path elements with no
// placeholder or glob metacharacter. The last element is always dropped
// since it names files, not directories.
func staticRoot(pattern string) string {
	dir := filepath.Dir(filepath.Clean(pattern))
	elems := strings.Split(filepath.ToSlash(dir), "/")

	for i, elem := range elems {
		if strings.ContainsAny(elem, "*?[") || strings.Contains(elem, domain.TestPlaceholder) {
			elems = elems[:i]
			break
		}
	}

	root := strings.Join(elems, "/")
	switch {
	case root == "" && strings.HasPrefix(filepath.ToSlash(dir), "/"):
		return string(filepath.Separator)
	case root == "":
		return "."
	}
	return filepath.FromSlash(root)
}
