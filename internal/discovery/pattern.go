package discovery

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hochfrequenz/judgerun/internal/domain"
)

// pattern is an input pattern with the task already substituted. It holds
// both the glob used to enumerate files and the regexp used to recover the
// test id from each match.
type pattern struct {
	source string
	glob   string
	re     *regexp.Regexp
	slots  int
}

func compilePattern(task, in string) (*pattern, error) {
	substituted := strings.ReplaceAll(in, domain.TaskPlaceholder, task)
	if !strings.Contains(substituted, domain.TestPlaceholder) {
		return nil, &domain.ConfigError{
			Field:   "in_pattern",
			Message: domain.TestPlaceholder + " not found in " + in,
		}
	}
	substituted = filepath.Clean(substituted)

	parts := strings.Split(filepath.ToSlash(substituted), domain.TestPlaceholder)

	var expr strings.Builder
	expr.WriteString("^")
	for i, part := range parts {
		if i > 0 {
			expr.WriteString("([^/]*)")
		}
		expr.WriteString(globToRegexp(part))
	}
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, &domain.DiscoveryError{Pattern: substituted, Err: err}
	}

	return &pattern{
		source: substituted,
		glob:   strings.ReplaceAll(substituted, domain.TestPlaceholder, "*"),
		re:     re,
		slots:  len(parts) - 1,
	}, nil
}

// testID returns the id captured from path. ok is false when the path does
// not match or repeated placeholders captured different text.
func (p *pattern) testID(path string) (id string, ok bool) {
	m := p.re.FindStringSubmatch(filepath.ToSlash(path))
	if m == nil {
		return "", false
	}
	id = m[1]
	for _, other := range m[2:] {
		if other != id {
			return "", false
		}
	}
	return id, true
}

// globToRegexp translates the literal (non-placeholder) part of a pattern,
// which may itself contain filepath.Match metacharacters
func globToRegexp(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				b.WriteString(regexp.QuoteMeta("["))
				continue
			}
			class := glob[i+1 : i+1+end]
			if len(class) == 1 && class != "^" {
				b.WriteString(regexp.QuoteMeta(class))
				i += end + 1
				continue
			}
			if strings.HasPrefix(class, "^") || strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			i += end + 1
		case '\\':
			if filepath.Separator != '\\' && i+1 < len(glob) {
				i++
				b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
				continue
			}
			b.WriteString(regexp.QuoteMeta("/"))
		default:
			b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		}
	}
	return b.String()
}

// OutputPath substitutes the task and test id into the output pattern
func OutputPath(task, testID, out string) string {
	path := strings.ReplaceAll(out, domain.TaskPlaceholder, task)
	return strings.ReplaceAll(path, domain.TestPlaceholder, testID)
}
