package rewrite

import (
	"strings"
)

// formatPass reflows the rewritten body into well-formed top-level
// statements: one statement per line, nested blocks kept intact. Comment
// lines at a statement boundary pass through verbatim; their content never
// participates in depth tracking. Runs last; the other passes assume
// un-reflowed input.
type formatPass struct{}

func (formatPass) Name() string { return "format" }

func (p formatPass) Apply(body string, rc *Context) string {
	var out strings.Builder
	var current strings.Builder
	braceDepth := 0
	bracketDepth := 0

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			out.WriteString(stmt)
			out.WriteByte('\n')
		}
		current.Reset()
	}

	for _, line := range strings.SplitAfter(body, "\n") {
		trimmed := strings.TrimSpace(line)
		atBoundary := braceDepth == 0 && bracketDepth == 0 && strings.TrimSpace(current.String()) == ""
		if atBoundary && strings.HasPrefix(trimmed, "//") {
			out.WriteString(trimmed)
			out.WriteByte('\n')
			continue
		}

		for _, c := range line {
			current.WriteRune(c)
			switch c {
			case '{':
				braceDepth++
			case '}':
				braceDepth--
				if braceDepth == 0 && bracketDepth == 0 {
					flush()
				}
			case '[':
				bracketDepth++
			case ']':
				if bracketDepth > 0 {
					bracketDepth--
				}
			case ';':
				if braceDepth == 0 && bracketDepth == 0 {
					flush()
				}
			}
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		out.WriteString(strings.TrimSpace(current.String()))
		out.WriteByte('\n')
	}

	return strings.TrimRight(out.String(), "\n") + "\n"
}
