// Package transform lowers an analyzed source-form program to its
// target-form model. Instructions are independent once the fact set is
// computed, so they are transformed in parallel over a bounded worker pool;
// everything shared during that phase is read-only.
package transform

import (
	"runtime"
	"sync"

	"github.com/tliron/commonlog"

	"pinsmith/internal/config"
	"pinsmith/internal/ir"
	"pinsmith/internal/rewrite"
)

var log = commonlog.GetLogger("pinsmith.transform")

// Transform lowers the whole program. The only fatal conditions are
// discriminator collisions; every per-instruction difficulty degrades to an
// issue on that instruction.
func Transform(p *ir.Program, facts *ir.Facts, opts config.Options) (*ir.TargetProgram, error) {
	instructions := make([]ir.TargetInstruction, len(p.Instructions))

	workers := poolSize(len(p.Instructions))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range p.Instructions {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			instructions[i] = transformInstruction(p, p.Instructions[i], facts, opts)
		}(i)
	}
	wg.Wait()

	if opts.AnchorCompat {
		if err := checkCollisions(instructions); err != nil {
			return nil, err
		}
	}

	tp := &ir.TargetProgram{
		Name:         p.Name,
		ProgramID:    p.ProgramID,
		NoAlloc:      opts.NoAlloc,
		Lazy:         opts.LazyEntrypoint,
		AnchorCompat: opts.AnchorCompat,
		Instructions: instructions,
		StateRecords: lowerStateRecords(p),
		Errors:       lowerErrors(p.Errors),
	}
	log.Infof("transformed %q: %d instructions, %d state records", p.Name, len(tp.Instructions), len(tp.StateRecords))
	return tp, nil
}

// poolSize bounds instruction parallelism at three quarters of the available
// CPUs, never below one and never above the work count.
func poolSize(work int) int {
	n := runtime.NumCPU()
	size := (n*3 + 3) / 4
	if size < 1 {
		size = 1
	}
	if work > 0 && size > work {
		size = work
	}
	return size
}

func transformInstruction(p *ir.Program, inst ir.Instruction, facts *ir.Facts, opts config.Options) ir.TargetInstruction {
	group, ok := p.Group(inst.Accounts)
	if !ok {
		group = ir.AccountGroup{Name: inst.Accounts}
	}

	discriminator := placeholderDiscriminator
	if opts.AnchorCompat {
		discriminator = Discriminator(inst.Name)
	}

	accounts := make([]ir.TargetAccount, 0, len(group.Accounts))
	for idx, decl := range group.Accounts {
		accounts = append(accounts, mapAccount(decl, idx, facts))
	}

	validations, issues := generateValidations(group, facts)

	rc := rewrite.NewContext(p, inst, facts, opts)
	body := rewrite.Rewrite(inst.Body, rc)
	issues = append(issues, rc.Issues...)

	return ir.TargetInstruction{
		Name:          inst.Name,
		Discriminator: discriminator,
		Accounts:      accounts,
		Args:          inst.Args,
		Validations:   validations,
		Body:          body,
		Issues:        issues,
	}
}

// checkCollisions rejects programs whose content-derived discriminators
// clash; such a program could not dispatch. Placeholder tags never collide.
func checkCollisions(instructions []ir.TargetInstruction) error {
	seen := make(map[[8]byte]string, len(instructions))
	for _, inst := range instructions {
		if inst.Discriminator == placeholderDiscriminator {
			continue
		}
		if prev, ok := seen[inst.Discriminator]; ok {
			return &ir.CollisionError{A: prev, B: inst.Name, Discriminator: inst.Discriminator}
		}
		seen[inst.Discriminator] = inst.Name
	}
	return nil
}
