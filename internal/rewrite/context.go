package rewrite

import (
	"sort"
	"strings"

	"pinsmith/internal/ir"
)

// contextPass strips the handler context wrapper: accounts become direct
// bindings, bump lookups become local bump variables, the program id becomes
// the entrypoint parameter.
type contextPass struct{}

func (contextPass) Name() string { return "context" }

func (p contextPass) Apply(body string, rc *Context) string {
	if !strings.Contains(body, "ctx.") {
		return body
	}

	// Longest names first so one account name being a prefix of another
	// never causes a partial replacement.
	names := make([]string, 0, len(rc.Accounts))
	for _, a := range rc.Accounts {
		names = append(names, a.Name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	for _, name := range names {
		body = strings.ReplaceAll(body, "ctx.accounts."+name, name)
	}
	body = strings.ReplaceAll(body, "ctx.accounts.", "")

	for _, name := range names {
		if _, ok := rc.Facts.PDA(name); ok || hasSeeds(rc, name) {
			body = strings.ReplaceAll(body, "ctx.bumps."+name, name+"_bump")
		}
	}
	body = strings.ReplaceAll(body, "ctx.bumps.", "_bump_")

	body = strings.ReplaceAll(body, "ctx.program_id", "program_id")
	return body
}

func hasSeeds(rc *Context, name string) bool {
	a, ok := rc.account(name)
	return ok && a.HasConstraint(ir.ConstraintSeeds)
}
