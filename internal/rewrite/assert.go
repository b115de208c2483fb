package rewrite

import (
	"strings"

	"pinsmith/internal/ir"
	"pinsmith/internal/rewrite/shape"
)

// assertPass lowers assertion macros to explicit branch-and-early-return
// guards. Key comparisons dereference the key handle so the generated guard
// compares values, not references.
type assertPass struct{}

func (assertPass) Name() string { return "assert" }

func (p assertPass) Apply(body string, rc *Context) string {
	body = p.lowerMacro(body, "require_keys_eq", rc, func(m *shape.MacroCall) (string, bool) {
		if len(m.Args) < 2 {
			return "", false
		}
		a := derefKey(m.Args[0].String())
		b := derefKey(m.Args[1].String())
		errExpr := "ProgramError::InvalidAccountData"
		if len(m.Args) > 2 {
			errExpr = m.Args[2].String()
		}
		return "if " + a + " != " + b + " {\n        return Err(" + errExpr + ".into());\n    }", true
	})

	body = p.lowerMacro(body, "require", rc, func(m *shape.MacroCall) (string, bool) {
		if len(m.Args) == 0 {
			return "", false
		}
		cond := cleanSpaces(m.Args[0].String())
		errExpr := "ProgramError::InvalidArgument"
		if len(m.Args) > 1 {
			errExpr = m.Args[len(m.Args)-1].String()
		}
		return "if !(" + cond + ") {\n        return Err(" + errExpr + ".into());\n    }", true
	})

	return body
}

func (p assertPass) lowerMacro(body, name string, rc *Context, lower func(*shape.MacroCall) (string, bool)) string {
	needle := name + "!("
	from := 0
	for {
		start := strings.Index(body[from:], needle)
		if start < 0 {
			return body
		}
		start += from

		// require_keys_eq! contains require!; skip suffix hits.
		if start > 0 && (isWordByte(body[start-1]) || body[start-1] == '_') {
			from = start + len(needle)
			continue
		}
		if onCommentLine(body, start) {
			from = start + len(needle)
			continue
		}

		end, ok := fragmentEnd(body, start+len(name)+1)
		if !ok {
			from = start + len(needle)
			continue
		}
		fragment := strings.TrimRight(body[start:end], " ;\n")

		var replacement string
		m, err := shape.ParseMacro(fragment)
		if err == nil {
			replacement, ok = lower(m)
		} else {
			ok = false
		}
		if !ok {
			rc.note(ir.IssueUnresolved, "assertion macro could not be rewritten: "+firstChars(fragment, 80))
			replacement = unresolvedMarker + firstChars(fragment, 80)
		}

		body = body[:start] + replacement + body[end:]
		from = start + len(replacement)
	}
}

// derefKey turns a key handle into a key value for comparison.
func derefKey(expr string) string {
	if strings.HasSuffix(expr, ".key()") && !strings.HasPrefix(expr, "*") {
		return "*" + expr
	}
	return expr
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
