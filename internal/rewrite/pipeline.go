// Package rewrite lowers instruction bodies from the source convention to
// the target convention through an ordered sequence of passes. The pipeline
// is total: a fragment no pass can lower is left behind an inert marker and
// reported as an issue, never as a failure. Every pass is idempotent, so
// re-running the whole pipeline over its own output is a no-op.
package rewrite

import (
	"strings"

	"github.com/tliron/commonlog"

	"pinsmith/internal/config"
	"pinsmith/internal/ir"
)

var log = commonlog.GetLogger("pinsmith.rewrite")

// Context carries the read-only surroundings of one instruction body plus
// the issues accumulated while rewriting it. One Context per instruction;
// contexts are never shared between goroutines.
type Context struct {
	Instruction ir.Instruction
	Program     *ir.Program
	Accounts    []ir.AccountDecl
	Facts       *ir.Facts
	Options     config.Options

	Issues []ir.Issue
}

// NewContext resolves the instruction's account group. A missing group is
// not an error here; the body is rewritten against an empty declaration set.
func NewContext(p *ir.Program, inst ir.Instruction, facts *ir.Facts, opts config.Options) *Context {
	var accounts []ir.AccountDecl
	if group, ok := p.Group(inst.Accounts); ok {
		accounts = group.Accounts
	} else {
		log.Infof("instruction %q references unknown account group %q", inst.Name, inst.Accounts)
	}
	return &Context{
		Instruction: inst,
		Program:     p,
		Accounts:    accounts,
		Facts:       facts,
		Options:     opts,
	}
}

func (rc *Context) note(kind ir.IssueKind, detail string) {
	rc.Issues = append(rc.Issues, ir.Issue{Kind: kind, Detail: detail})
	log.Infof("%s: %s: %s", rc.Instruction.Name, kind, detail)
}

func (rc *Context) account(name string) (ir.AccountDecl, bool) {
	for _, a := range rc.Accounts {
		if a.Name == name {
			return a, true
		}
	}
	return ir.AccountDecl{}, false
}

// Pass is one body lowering step.
type Pass interface {
	Name() string
	Apply(body string, rc *Context) string
}

// passes returns the pipeline in its fixed order. Formatting must run last;
// every other pass assumes un-reflowed input.
func passes() []Pass {
	return []Pass{
		sequencePass{},
		contextPass{},
		statePass{},
		cpiPass{},
		assertPass{},
		diagPass{},
		formatPass{},
	}
}

// Rewrite runs the full pipeline over one instruction body.
func Rewrite(body string, rc *Context) string {
	if len(strings.TrimSpace(body)) == 0 {
		return body
	}
	body = normalize(body)
	for _, p := range passes() {
		body = p.Apply(body, rc)
	}
	return body
}
