package routing

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultParamPattern matches one path segment.
const DefaultParamPattern = `[^/]+`

var paramName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// placeholder is one {name} or {name:pattern} occurrence in a template.
type placeholder struct {
	name    string
	pattern string
	raw     string
}

// compileTemplate turns a slash-trimmed template into an anchored matcher.
// Literal text is quoted; every placeholder becomes a named group using, in
// order of preference, its inline pattern, patterns[name], DefaultParamPattern.
func compileTemplate(template string, patterns map[string]string) (*regexp.Regexp, []placeholder, error) {
	var (
		expr strings.Builder
		phs  []placeholder
		seen = map[string]bool{}
	)
	expr.WriteString("^")

	rest := template
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return nil, nil, fmt.Errorf("routing: unbalanced '}' in %q", template)
			}
			expr.WriteString(regexp.QuoteMeta(rest))
			break
		}
		if strings.IndexByte(rest[:open], '}') >= 0 {
			return nil, nil, fmt.Errorf("routing: unbalanced '}' in %q", template)
		}
		expr.WriteString(regexp.QuoteMeta(rest[:open]))

		end := closingBrace(rest, open)
		if end < 0 {
			return nil, nil, fmt.Errorf("routing: unterminated placeholder in %q", template)
		}
		ph, err := parsePlaceholder(rest[open:end+1], patterns)
		if err != nil {
			return nil, nil, fmt.Errorf("routing: %q: %w", template, err)
		}
		if seen[ph.name] {
			return nil, nil, fmt.Errorf("routing: %q: duplicate parameter %q", template, ph.name)
		}
		seen[ph.name] = true
		phs = append(phs, ph)

		expr.WriteString("(?P<")
		expr.WriteString(ph.name)
		expr.WriteString(">")
		expr.WriteString(ph.pattern)
		expr.WriteString(")")

		rest = rest[end+1:]
	}
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, nil, fmt.Errorf("routing: %q: %w", template, err)
	}
	return re, phs, nil
}

// closingBrace returns the index of the brace closing the one at open,
// allowing nested braces inside inline patterns such as {id:[0-9]{2}}.
func closingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parsePlaceholder(raw string, patterns map[string]string) (placeholder, error) {
	body := raw[1 : len(raw)-1]
	name, pattern, inline := strings.Cut(body, ":")
	if !paramName.MatchString(name) {
		return placeholder{}, fmt.Errorf("invalid parameter name %q", name)
	}
	switch {
	case inline && pattern == "":
		return placeholder{}, fmt.Errorf("empty pattern for parameter %q", name)
	case inline:
	case patterns[name] != "":
		pattern = patterns[name]
	default:
		pattern = DefaultParamPattern
	}
	return placeholder{name: name, pattern: pattern, raw: raw}, nil
}

// filterMatchedParams keeps the named captures of a match; unnamed
// (positional) groups are dropped.
func filterMatchedParams(names, captures []string) map[string]string {
	args := make(map[string]string, len(names))
	for i, name := range names {
		if i == 0 || name == "" || i >= len(captures) {
			continue
		}
		args[name] = captures[i]
	}
	return args
}
