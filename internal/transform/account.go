package transform

import (
	"pinsmith/internal/ir"
)

// mapAccount lowers one account declaration to its target metadata. Index is
// the declaration position and stays stable through the pipeline.
func mapAccount(decl ir.AccountDecl, index int, facts *ir.Facts) ir.TargetAccount {
	acc := ir.TargetAccount{
		Name:      decl.Name,
		Index:     index,
		Signer:    decl.IsSigner(),
		Writable:  isWritable(decl),
		StateType: decl.Record,
	}

	if pda, ok := facts.PDA(decl.Name); ok {
		acc.PDA = true
		acc.Seeds = pda.Seeds
	}

	if c, ok := initConstraint(decl); ok {
		acc.Init = true
		acc.InitPayer = c.Payer
	}
	if c, ok := decl.Constraint(ir.ConstraintTokenMint); ok {
		acc.TokenMint = c.Ref
	}
	if c, ok := decl.Constraint(ir.ConstraintTokenAuth); ok {
		acc.TokenAuth = c.Ref
	}
	if c, ok := decl.Constraint(ir.ConstraintClose); ok {
		acc.CloseTo = c.Ref
	}

	return acc
}

func isWritable(decl ir.AccountDecl) bool {
	if decl.HasConstraint(ir.ConstraintMut) || decl.HasConstraint(ir.ConstraintClose) {
		return true
	}
	_, ok := initConstraint(decl)
	return ok
}

func initConstraint(decl ir.AccountDecl) (ir.Constraint, bool) {
	if c, ok := decl.Constraint(ir.ConstraintInit); ok {
		return c, true
	}
	return decl.Constraint(ir.ConstraintInitIfNeeded)
}
