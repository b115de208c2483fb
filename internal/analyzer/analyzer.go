// Package analyzer walks the source-form model and extracts the relationship
// facts the transformer depends on: PDA declarations, recognized cross-program
// calls, and computed state record sizes. Analysis runs to completion before
// any transformation starts; the resulting fact set is read-only afterwards.
package analyzer

import (
	"github.com/tliron/commonlog"

	"pinsmith/internal/ir"
	"pinsmith/internal/layout"
	"pinsmith/internal/registry"
)

var log = commonlog.GetLogger("pinsmith.analyzer")

// Analyze produces the complete fact set for a structurally valid program.
func Analyze(p *ir.Program) *ir.Facts {
	facts := &ir.Facts{
		PDAs:  extractPDAs(p),
		Calls: extractCalls(p),
		Sizes: extractSizes(p),
	}
	log.Infof("analyzed %q: %d PDAs, %d CPI calls, %d state records",
		p.Name, len(facts.PDAs), len(facts.Calls), len(facts.Sizes))
	return facts
}

// extractPDAs collects every seeds-constrained account declaration. The same
// account name declared in several groups yields one fact; the first
// declaration wins, matching source order.
func extractPDAs(p *ir.Program) []ir.PdaInfo {
	var pdas []ir.PdaInfo
	seen := map[string]bool{}

	for _, g := range p.AccountGroups {
		for _, a := range g.Accounts {
			seedsC, ok := a.Constraint(ir.ConstraintSeeds)
			if !ok {
				continue
			}
			if seen[a.Name] {
				continue
			}
			seen[a.Name] = true

			bump := ""
			if bumpC, ok := a.Constraint(ir.ConstraintBump); ok {
				bump = bumpC.Bump
			}

			pdas = append(pdas, ir.PdaInfo{
				Account:    a.Name,
				Seeds:      seedsC.Seeds,
				BumpSource: bump,
				Program:    "program_id",
			})
		}
	}
	return pdas
}

// extractCalls scans every instruction body for calls through registered
// external-program paths. Each operation is reported at most once per
// instruction regardless of how many call sites it has.
func extractCalls(p *ir.Program) []ir.CpiCallInfo {
	var calls []ir.CpiCallInfo

	for _, inst := range p.Instructions {
		for _, op := range registry.Operations() {
			if !op.Matches(inst.Body) {
				continue
			}
			calls = append(calls, ir.CpiCallInfo{
				Instruction: inst.Name,
				Program:     op.Program,
				ProgramID:   op.ProgramID.ToBase58(),
				Operation:   op.Name,
				Roles:       op.Roles,
			})
		}
	}
	return calls
}

func extractSizes(p *ir.Program) []ir.AccountSizeInfo {
	sizes := make([]ir.AccountSizeInfo, 0, len(p.StateRecords))
	for _, rec := range p.StateRecords {
		sizes = append(sizes, layout.SizeInfo(rec))
	}
	return sizes
}
