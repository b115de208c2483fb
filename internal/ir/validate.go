package ir

// Validate checks the structural invariants the pipeline cannot proceed
// without. A missing account group is deliberately NOT structural: the
// transformer treats it as an empty account list. Everything rejected here
// would otherwise poison every later phase.
func (p *Program) Validate() error {
	if p.Name == "" {
		return Structuralf("program has no name")
	}
	if p.ProgramID != "" {
		if _, err := PubkeyFromBase58(p.ProgramID); err != nil {
			return Structuralf("program identity is not a valid base58 pubkey: %v", err)
		}
	}

	seenInst := make(map[string]bool, len(p.Instructions))
	for _, inst := range p.Instructions {
		if inst.Name == "" {
			return Structuralf("instruction with empty name")
		}
		if seenInst[inst.Name] {
			return Structuralf("duplicate instruction %q", inst.Name)
		}
		seenInst[inst.Name] = true
	}

	seenGroup := make(map[string]bool, len(p.AccountGroups))
	for _, g := range p.AccountGroups {
		if g.Name == "" {
			return Structuralf("account group with empty name")
		}
		if seenGroup[g.Name] {
			return Structuralf("duplicate account group %q", g.Name)
		}
		seenGroup[g.Name] = true

		seenAcct := make(map[string]bool, len(g.Accounts))
		for _, a := range g.Accounts {
			if a.Name == "" {
				return Structuralf("account with empty name in group %q", g.Name)
			}
			if seenAcct[a.Name] {
				return Structuralf("duplicate account %q in group %q", a.Name, g.Name)
			}
			seenAcct[a.Name] = true
			if a.Kind == "" {
				return Structuralf("account %q in group %q has no kind", a.Name, g.Name)
			}
			for _, c := range a.Constraints {
				if c.Kind == ConstraintSeeds && len(c.Seeds) == 0 {
					return Structuralf("account %q declares a seed constraint with no seeds", a.Name)
				}
				if c.Kind == ConstraintAddress {
					if _, err := PubkeyFromBase58(c.Expr); err != nil && looksLikeBase58(c.Expr) {
						return Structuralf("account %q fixed address is not a valid pubkey: %v", a.Name, err)
					}
				}
			}
		}
	}

	seenRecord := make(map[string]bool, len(p.StateRecords))
	for _, r := range p.StateRecords {
		if r.Name == "" {
			return Structuralf("state record with empty name")
		}
		if seenRecord[r.Name] {
			return Structuralf("duplicate state record %q", r.Name)
		}
		seenRecord[r.Name] = true
		for _, f := range r.Fields {
			if f.Name == "" || f.Type == "" {
				return Structuralf("state record %q has a field without name or type", r.Name)
			}
			if f.Bound < 0 {
				return Structuralf("state record %q field %q has negative bound", r.Name, f.Name)
			}
		}
	}

	return nil
}

// looksLikeBase58 distinguishes literal addresses from symbolic expressions
// like crate::ID, which an address constraint may also carry. Symbolic
// expressions are passed through unvalidated.
func looksLikeBase58(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := (c >= '1' && c <= '9') || (c >= 'A' && c <= 'H') || (c >= 'J' && c <= 'N') ||
			(c >= 'P' && c <= 'Z') || (c >= 'a' && c <= 'k') || (c >= 'm' && c <= 'z')
		if !ok {
			return false
		}
	}
	return true
}
