package rewrite

import (
	"regexp"
	"strings"
)

// Normalization runs once before the passes. It strips the outer handler
// braces, undoes token-spacing artifacts from upstream extraction, rebases
// stdlib paths, and collapses every source error enum onto the single target
// Error enum.

var bulkReplacements = [][2]string{
	// Spacing fixes
	{" . ", "."},
	{" :: ", "::"},
	{"( )", "()"},
	{"< ", "<"},
	{" >", ">"},
	{" ,", ","},
	// Comparison operators
	{"> =", ">="},
	{"< =", "<="},
	{"= =", "=="},
	{"! =", "!="},
	// Source-runtime idioms without a target equivalent
	{"Clock::get()?", "Clock::get()"},
	{"std::cmp::", "core::cmp::"},
	{"std::mem::", "core::mem::"},
	{"ErrorCode::", "Error::"},
}

// errorEnumRE collapses program-specific error enums (SwapError::,
// VaultError::, ...) onto Error::. ProgramError is the runtime's own type
// and stays untouched.
var errorEnumRE = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)Error::`)

var multiSpaceRE = regexp.MustCompile(`[ \t]{2,}`)

func normalize(body string) string {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		body = trimmed[1 : len(trimmed)-1]
	}

	for _, r := range bulkReplacements {
		if strings.Contains(body, r[0]) {
			body = strings.ReplaceAll(body, r[0], r[1])
		}
	}

	body = errorEnumRE.ReplaceAllStringFunc(body, func(m string) string {
		if m == "ProgramError::" {
			return m
		}
		return "Error::"
	})

	return body
}

// cleanSpaces collapses runs of horizontal whitespace inside a fragment.
func cleanSpaces(s string) string {
	if strings.Contains(s, "  ") {
		s = multiSpaceRE.ReplaceAllString(s, " ")
	}
	return strings.TrimSpace(s)
}
