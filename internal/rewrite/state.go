package rewrite

import (
	"regexp"
	"strings"

	"pinsmith/internal/cpigen"
	"pinsmith/internal/ir"
)

// statePass promotes state-record field access to an explicit
// deserialize-at-entry handle: pool.total becomes pool_state.total behind a
// single binding inserted at the top of the body. Whether the binding is
// readonly or mutable follows the account's writability; the binding-level
// mut follows actual assignments in the body. Typed-access fixups ride
// along: token-account fields route through accessor helpers and key handles
// are dereferenced where a key value is expected.
type statePass struct{}

func (statePass) Name() string { return "state" }

func (p statePass) Apply(body string, rc *Context) string {
	type binding struct {
		code string
	}
	var bindings []binding

	body = rewriteTokenFieldAccess(body, rc.Accounts)

	for _, acc := range rc.Accounts {
		if acc.Record == "" {
			continue
		}
		rec, ok := rc.Program.Record(acc.Record)
		if !ok {
			continue
		}

		// Already bound means this body was rewritten before.
		if strings.Contains(body, "from_account_info("+acc.Name+")") ||
			strings.Contains(body, "from_account_info_mut("+acc.Name+")") {
			continue
		}

		body = dropAliases(body, acc.Name)
		var loaded bool
		body, loaded = dropLoadBindings(body, acc.Name)

		promoted := false
		for _, field := range promotableFields(rec) {
			fieldRE := regexp.MustCompile(`\b` + regexp.QuoteMeta(acc.Name) + `\.` + regexp.QuoteMeta(field) + `\b`)
			if fieldRE.MatchString(body) {
				body = fieldRE.ReplaceAllString(body, acc.Name+"_state."+field)
				promoted = true
			}
		}
		body = derefPubkeyAssignments(body, acc.Name, rec)

		if !promoted && !loaded {
			continue
		}

		writable := acc.HasConstraint(ir.ConstraintMut) ||
			acc.HasConstraint(ir.ConstraintInit) ||
			acc.HasConstraint(ir.ConstraintInitIfNeeded)

		if writable {
			bindings = append(bindings, binding{
				code: cpigen.StateWrite(acc.Record, acc.Name, stateMutated(body, acc.Name+"_state")),
			})
		} else {
			bindings = append(bindings, binding{
				code: cpigen.StateRead(acc.Record, acc.Name),
			})
		}
	}

	body = derefKeyComparisons(body)

	if len(bindings) == 0 {
		return body
	}

	var b strings.Builder
	b.WriteString("// Deserialize state accounts\n")
	for _, bd := range bindings {
		b.WriteString(bd.code)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(body)
	return b.String()
}

// promotableFields lists the record's declared fields plus the length
// counters the layout introduces for bounded sequences. Counters appear in
// bodies after sequence lowering and belong to the same handle.
func promotableFields(rec ir.StateRecord) []string {
	fields := make([]string, 0, len(rec.Fields)*2)
	for _, f := range rec.Fields {
		fields = append(fields, f.Name, f.Name+"_len")
	}
	return fields
}

// dropAliases removes `let alias = &mut account;` shadow bindings and routes
// the alias's field accesses back to the account.
func dropAliases(body, account string) string {
	aliasRE := regexp.MustCompile(`let\s+(?:mut\s+)?(\w+)\s*=\s*&\s*(?:mut\s+)?` + regexp.QuoteMeta(account) + `\s*;\n?`)
	for {
		m := aliasRE.FindStringSubmatch(body)
		if m == nil {
			return body
		}
		alias := m[1]
		body = strings.Replace(body, m[0], "", 1)
		if alias != account {
			useRE := regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\.`)
			body = useRE.ReplaceAllString(body, account+".")
		}
	}
}

// dropLoadBindings removes `let handle = account.load()?;` style bindings
// and routes the handle's accesses to the promoted state binding.
func dropLoadBindings(body, account string) (string, bool) {
	loadRE := regexp.MustCompile(`let\s+(?:mut\s+)?(\w+)\s*=\s*(?:&\s*(?:mut\s+)?)?` + regexp.QuoteMeta(account) + `\.load(_mut)?\s*\(\s*\)\s*\?\s*;\n?`)
	loaded := false
	for {
		m := loadRE.FindStringSubmatch(body)
		if m == nil {
			return body, loaded
		}
		loaded = true
		handle := m[1]
		body = strings.Replace(body, m[0], "", 1)
		useRE := regexp.MustCompile(`\b` + regexp.QuoteMeta(handle) + `\.`)
		body = useRE.ReplaceAllString(body, account+"_state.")
	}
}

// stateMutated reports whether the body assigns through the state handle.
var assignRE = regexp.MustCompile(`\.\w+\s*(?:[+\-*/])?=[^=]`)

func stateMutated(body, handle string) bool {
	if strings.Contains(body, "&mut "+handle) || strings.Contains(body, "& mut "+handle) {
		return true
	}
	for _, line := range strings.Split(body, "\n") {
		idx := strings.Index(line, handle+".")
		if idx < 0 {
			continue
		}
		if assignRE.MatchString(line[idx+len(handle):]) {
			return true
		}
	}
	return false
}
