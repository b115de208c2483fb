package transform

import (
	"fmt"
	"strings"

	"pinsmith/internal/ir"
)

// Validation generation runs in a fixed phase order that callers may rely
// on: signer checks, then writability checks, then PDA checks, then owner
// checks, then custom guards and key equality. Within each phase accounts
// keep their declaration order.

func generateValidations(group ir.AccountGroup, facts *ir.Facts) ([]ir.Validation, []ir.Issue) {
	var checks []ir.Validation
	var issues []ir.Issue

	for idx, acc := range group.Accounts {
		if acc.IsSigner() {
			checks = append(checks, ir.Validation{Kind: ir.ValidationIsSigner, Account: idx})
		}
	}

	for idx, acc := range group.Accounts {
		if isWritable(acc) {
			checks = append(checks, ir.Validation{Kind: ir.ValidationIsWritable, Account: idx})
		}
	}

	for idx, acc := range group.Accounts {
		seeds, ok := acc.Constraint(ir.ConstraintSeeds)
		if !ok {
			continue
		}
		pda, _ := facts.PDA(acc.Name)
		check := ir.Validation{
			Kind:     ir.ValidationPdaCheck,
			Account:  idx,
			Seeds:    seeds.Seeds,
			Strategy: pdaStrategy(acc, pda),
		}
		if check.Strategy == ir.PdaFromBump {
			check.Bump = pda.BumpSource
		}
		checks = append(checks, check)
	}

	for idx, acc := range group.Accounts {
		switch acc.Unwrapped() {
		case ir.KindToken, ir.KindMint:
			checks = append(checks, ir.Validation{
				Kind:    ir.ValidationOwnerCheck,
				Account: idx,
				Owner:   "token_program",
			})
		}
	}

	for idx, acc := range group.Accounts {
		for _, c := range acc.Constraints {
			switch c.Kind {
			case ir.ConstraintRaw:
				checks = append(checks, customGuard(idx, c, group.Accounts))
			case ir.ConstraintAddress:
				checks = append(checks, ir.Validation{
					Kind:     ir.ValidationKeyEquals,
					Account:  idx,
					Expected: c.Expr,
				})
			case ir.ConstraintHasOne:
				// Field equality against not-yet-deserialized state has no
				// guard variant; surfaced instead of silently dropped.
				issues = append(issues, ir.Issue{
					Kind:   ir.IssueValidationGap,
					Detail: fmt.Sprintf("has_one(%s) on account %q generated no validation", c.Ref, acc.Name),
				})
			}
		}
	}

	return checks, issues
}

// pdaStrategy picks how the PDA guard verifies the address. Recomputing from
// seeds is required when the account is being initialized, when its seeds or
// bump source reach into its own state, or when no bump source exists;
// otherwise the supplied bump reconstructs a single address.
func pdaStrategy(acc ir.AccountDecl, pda ir.PdaInfo) ir.PdaStrategy {
	if _, init := initConstraint(acc); init {
		return ir.PdaDerive
	}
	if pda.SelfReferential() {
		return ir.PdaDerive
	}
	if pda.BumpSource == "" {
		return ir.PdaDerive
	}
	return ir.PdaFromBump
}

func customGuard(idx int, c ir.Constraint, accounts []ir.AccountDecl) ir.Validation {
	expr := constraintExpr(c.Expr, accounts)
	errExpr := c.Err
	if errExpr == "" {
		errExpr = "ProgramError::Custom(0)"
	}
	return ir.Validation{
		Kind:    ir.ValidationCustom,
		Account: idx,
		Code:    fmt.Sprintf("if !(%s) {\n        return Err(%s);\n    }", expr, errExpr),
	}
}

// constraintExpr rewrites a guard expression for the target convention: key
// handles are dereferenced so comparisons act on key values. Longest account
// names first so one name being a prefix of another never causes a partial
// replacement.
func constraintExpr(expr string, accounts []ir.AccountDecl) string {
	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, a.Name)
	}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if len(names[j]) > len(names[i]) {
				names[i], names[j] = names[j], names[i]
			}
		}
	}
	for _, name := range names {
		handle := name + ".key()"
		if strings.Contains(expr, handle) && !strings.Contains(expr, "*"+handle) {
			expr = strings.ReplaceAll(expr, handle, "*"+handle)
		}
	}
	return strings.Join(strings.Fields(expr), " ")
}
