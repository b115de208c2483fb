package rewrite

import (
	"strings"

	"pinsmith/internal/cpigen"
	"pinsmith/internal/ir"
	"pinsmith/internal/registry"
	"pinsmith/internal/rewrite/shape"
)

// cpiPass rewrites recognized cross-program calls from the context-object
// convention to direct target invocations. The call fragment is decomposed
// by the shape grammar; a fragment that is shaped like a known call but does
// not decompose degrades to an inert marker plus an issue.
type cpiPass struct{}

func (cpiPass) Name() string { return "cpi" }

const unresolvedMarker = "// UNRESOLVED: "

func (p cpiPass) Apply(body string, rc *Context) string {
	for _, op := range registry.Operations() {
		for _, path := range op.Paths {
			body = p.rewriteCalls(body, path, &op, rc)
		}
	}

	// Source-runtime lamport borrows map directly onto target accessors.
	body = strings.ReplaceAll(body, ".lamports.borrow_mut()", ".try_borrow_mut_lamports()?")
	body = strings.ReplaceAll(body, ".lamports.borrow()", ".try_borrow_lamports()?")

	return body
}

func (p cpiPass) rewriteCalls(body, path string, op *registry.Operation, rc *Context) string {
	needle := path + "("
	from := 0
	for {
		start := strings.Index(body[from:], needle)
		if start < 0 {
			return body
		}
		start += from

		// Do not match a path suffix: anchor_spl::token::transfer is handled
		// by its own registered path, not by token::transfer.
		if start > 0 && (isWordByte(body[start-1]) || body[start-1] == ':') {
			from = start + len(needle)
			continue
		}
		if onCommentLine(body, start) {
			from = start + len(needle)
			continue
		}

		end, ok := fragmentEnd(body, start+len(path))
		if !ok {
			from = start + len(needle)
			continue
		}
		fragment := body[start:end]

		replacement, ok := p.rewriteOne(fragment, op, rc)
		if !ok {
			rc.note(ir.IssueUnresolved, "cross-program call could not be rewritten: "+firstChars(fragment, 80))
			replacement = unresolvedMarker + firstChars(fragment, 80)
		}

		body = body[:start] + replacement + body[end:]
		from = start + len(replacement)
	}
}

func (p cpiPass) rewriteOne(fragment string, op *registry.Operation, rc *Context) (string, bool) {
	call, err := shape.ParseCall(strings.TrimRight(fragment, " ;\n"))
	if err != nil || call.Call == nil || len(call.Call.Args) < 2 {
		return "", false
	}

	cpiCtx := headPath(call.Call.Args[0])
	if cpiCtx == nil || cpiCtx.Head != "CpiContext" || cpiCtx.Call == nil || len(cpiCtx.Call.Args) < 2 {
		return "", false
	}
	withSigner := len(cpiCtx.Tail) == 1 && cpiCtx.Tail[0] == "new_with_signer"
	if !withSigner && !(len(cpiCtx.Tail) == 1 && cpiCtx.Tail[0] == "new") {
		return "", false
	}

	accounts := headPath(cpiCtx.Call.Args[1])
	if accounts == nil || accounts.Struct == nil {
		return "", false
	}

	fields := map[string]string{}
	for _, f := range accounts.Struct.Fields {
		fields[f.Name] = accountName(f.Value, f.Name)
	}
	for _, want := range op.Fields {
		if fields[want] == "" {
			return "", false
		}
	}

	amount := call.Call.Args[len(call.Call.Args)-1].String()

	var signerSeeds []string
	if withSigner {
		seeds, ok := p.signerSeeds(fields["authority"], rc)
		if !ok {
			return "", false
		}
		signerSeeds = seeds
	}

	switch {
	case op.Name == "transfer" && op.Program == "token_program":
		return cpigen.TokenTransfer(fields["from"], fields["to"], fields["authority"], amount, signerSeeds), true
	case op.Name == "mint_to":
		return cpigen.TokenMintTo(fields["mint"], fields["to"], fields["authority"], amount, signerSeeds), true
	case op.Name == "burn":
		return cpigen.TokenBurn(fields["mint"], fields["from"], fields["authority"], amount), true
	case op.Name == "transfer" && op.Program == "system_program":
		if rc.Options.InlineCPI {
			return cpigen.SolTransfer(fields["from"], fields["to"], amount), true
		}
		return cpigen.SystemTransfer(fields["from"], fields["to"], amount), true
	}
	return "", false
}

// signerSeeds threads the analyzer's PDA fact for the signing account into
// the invocation. No fact means we cannot name the seeds and the fragment
// stays unresolved rather than guessing.
func (p cpiPass) signerSeeds(authority string, rc *Context) ([]string, bool) {
	pda, ok := rc.Facts.PDA(authority)
	if !ok {
		return nil, false
	}
	bump := pda.BumpSource
	if bump == "" {
		bump = authority + "_bump"
	}
	if strings.HasPrefix(bump, authority+".") {
		bump = authority + "_state." + strings.TrimPrefix(bump, authority+".")
	}
	seeds := make([]string, 0, len(pda.Seeds)+1)
	seeds = append(seeds, pda.Seeds...)
	seeds = append(seeds, "&["+bump+"]")
	return seeds, true
}

// headPath unwraps an argument expression down to its leading path term.
func headPath(e *shape.Expr) *shape.PathExpr {
	if e == nil || e.First == nil || e.First.Term == nil {
		return nil
	}
	return e.First.Term.Path
}

// accountName reduces `ctx_free_account.to_account_info()` to the account
// binding itself. A shorthand struct field initializes from its own name.
func accountName(e *shape.Expr, shorthand string) string {
	if e == nil {
		return shorthand
	}
	path := headPath(e)
	if path == nil {
		return e.String()
	}
	if len(path.Tail) == 0 && path.Call == nil && path.Struct == nil {
		return path.Head
	}
	return e.String()
}

// fragmentEnd finds the end of a call statement: the balanced closing paren,
// then any trailing try operator and semicolon.
func fragmentEnd(body string, parenStart int) (int, bool) {
	depth := 0
	for i := parenStart; i < len(body); i++ {
		switch body[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end := i + 1
				for end < len(body) && (body[end] == ' ' || body[end] == '?') {
					end++
				}
				if end < len(body) && body[end] == ';' {
					end++
				}
				return end, true
			}
		}
	}
	return 0, false
}

func onCommentLine(body string, pos int) bool {
	lineStart := strings.LastIndexByte(body[:pos], '\n') + 1
	return strings.HasPrefix(strings.TrimSpace(body[lineStart:pos]), "//")
}

func firstChars(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > n {
		return s[:n]
	}
	return s
}
