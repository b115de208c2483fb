package rewrite

import (
	"regexp"
	"strings"
)

// diagPass lowers diagnostic macros. A literal message maps directly onto
// the target's log call and is kept; a formatted message has no cheap target
// equivalent and is disabled by commenting it out. Under no_logs everything
// is stripped. Event emission has no target surface at all and is reduced to
// a trace comment.
type diagPass struct{}

func (diagPass) Name() string { return "diag" }

var (
	msgRE          = regexp.MustCompile(`msg!\s*\([^()]*(?:\([^()]*\)[^()]*)*\)\s*;?`)
	blankRunRE     = regexp.MustCompile(`\n\s*\n\s*\n`)
	commentedMsgRE = regexp.MustCompile(`//\s*msg!`)
)

func (p diagPass) Apply(body string, rc *Context) string {
	if strings.Contains(body, "emit!") {
		body = lowerEmit(body)
	}

	if !strings.Contains(body, "msg!") {
		return body
	}

	body = joinMultilineMsg(body)

	if rc.Options.NoLogs {
		body = stripMsg(body)
		return blankRunRE.ReplaceAllString(body, "\n\n")
	}

	return disableFormattedMsg(body)
}

// joinMultilineMsg collapses each msg! invocation onto one line so the
// regular-expression handling below sees whole invocations. A line break
// and its following indentation become one space; spacing elsewhere in the
// invocation, string literals included, is preserved.
func joinMultilineMsg(body string) string {
	var out strings.Builder
	i := 0
	for i < len(body) {
		start := strings.Index(body[i:], "msg!(")
		if start < 0 {
			out.WriteString(body[i:])
			break
		}
		start += i
		out.WriteString(body[i:start])
		out.WriteString("msg!(")

		depth := 1
		j := start + len("msg!(")
		for j < len(body) && depth > 0 {
			switch body[j] {
			case '(':
				depth++
				out.WriteByte(body[j])
			case ')':
				depth--
				out.WriteByte(body[j])
			case '\n':
				out.WriteByte(' ')
				for j+1 < len(body) && (body[j+1] == ' ' || body[j+1] == '\t') {
					j++
				}
			default:
				out.WriteByte(body[j])
			}
			j++
		}
		i = j
	}
	return out.String()
}

func stripMsg(body string) string {
	return msgRE.ReplaceAllString(body, "")
}

// disableFormattedMsg comments out msg! calls that interpolate values.
// Literal messages stay live. Already-commented lines are left alone.
func disableFormattedMsg(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "msg!") || commentedMsgRE.MatchString(line) {
			continue
		}
		m := msgRE.FindString(line)
		if m == "" {
			continue
		}
		if isLiteralMsg(m) {
			continue
		}
		lines[i] = strings.Replace(line, m, "// "+m, 1)
	}
	return strings.Join(lines, "\n")
}

// isLiteralMsg reports whether the invocation carries a single string
// literal with no interpolation slots.
func isLiteralMsg(m string) bool {
	inner := strings.TrimSuffix(strings.TrimPrefix(m, "msg!("), ";")
	inner = strings.TrimSuffix(strings.TrimSpace(inner), ")")
	inner = strings.TrimSpace(inner)
	return strings.HasPrefix(inner, `"`) && strings.HasSuffix(inner, `"`) &&
		!strings.Contains(inner, "{}") && !strings.Contains(inner[1:len(inner)-1], `"`)
}

// lowerEmit reduces event emission to a trace comment on one line.
func lowerEmit(body string) string {
	from := 0
	for {
		start := strings.Index(body[from:], "emit!(")
		if start < 0 {
			return body
		}
		start += from
		if onCommentLine(body, start) {
			from = start + len("emit!(")
			continue
		}
		end, ok := fragmentEnd(body, start+len("emit!"))
		if !ok {
			from = start + len("emit!(")
			continue
		}
		inner := strings.TrimRight(body[start+len("emit!("):end], " ;?\n")
		inner = strings.TrimSuffix(inner, ")")
		replacement := "// event: " + firstChars(inner, 100)
		body = body[:start] + replacement + body[end:]
		from = start + len(replacement)
	}
}
