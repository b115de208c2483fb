package ir

// Source-form model of an Anchor program. The model is produced by an
// external parsing collaborator (exchanged as JSON) and is immutable for the
// rest of the pipeline: analysis and transformation only ever read it.

// Program is the root of the source-form model.
type Program struct {
	Name          string         `json:"name"`
	ProgramID     string         `json:"program_id,omitempty"` // base58 on-chain identity, optional
	Instructions  []Instruction  `json:"instructions"`
	AccountGroups []AccountGroup `json:"account_groups"`
	StateRecords  []StateRecord  `json:"state_records"`
	Errors        []ErrorDef     `json:"errors,omitempty"`
}

// Instruction is one program entrypoint: a named handler, the account group
// it runs against, its typed arguments, and the raw logic body.
type Instruction struct {
	Name     string `json:"name"`
	Accounts string `json:"accounts"` // account group name, resolved by the transformer
	Args     []Arg  `json:"args,omitempty"`
	Body     string `json:"body"`
}

// Arg is a typed instruction argument.
type Arg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// AccountGroup is an account-declaration group (an Anchor Accounts struct),
// optionally parameterized by instruction-scoped arguments.
type AccountGroup struct {
	Name     string        `json:"name"`
	Args     []Arg         `json:"args,omitempty"`
	Accounts []AccountDecl `json:"accounts"`
}

// AccountKind is a closed tag set for account declarations. Transformation
// matches kinds exhaustively; adding a kind is an enumeration change, not a
// runtime dispatch surface.
type AccountKind string

const (
	KindSigner    AccountKind = "signer"
	KindOwned     AccountKind = "owned"   // Account<'info, T>, carries a state record reference
	KindProgram   AccountKind = "program" // Program<'info, T>
	KindToken     AccountKind = "token"   // SPL token account
	KindMint      AccountKind = "mint"    // SPL mint
	KindWrapped   AccountKind = "wrapped" // Box<...>, carries the wrapped kind
	KindSystem    AccountKind = "system"
	KindUnchecked AccountKind = "unchecked"
	KindSysvar    AccountKind = "sysvar"
)

// AccountDecl is one account declaration inside a group.
type AccountDecl struct {
	Name string      `json:"name"`
	Kind AccountKind `json:"kind"`

	// Record names the state record type for owned accounts. Binding comes
	// from the declared type reference, never from the account name.
	Record string `json:"record,omitempty"`

	// Inner is the wrapped kind when Kind is KindWrapped.
	Inner AccountKind `json:"inner,omitempty"`

	Constraints []Constraint `json:"constraints,omitempty"`
}

// Unwrapped resolves boxed declarations to the kind they wrap.
func (a AccountDecl) Unwrapped() AccountKind {
	if a.Kind == KindWrapped && a.Inner != "" {
		return a.Inner
	}
	return a.Kind
}

// IsSigner reports whether the declaration requires a transaction signature.
func (a AccountDecl) IsSigner() bool {
	return a.Unwrapped() == KindSigner
}

// Constraint returns the first constraint of the given kind, if present.
func (a AccountDecl) Constraint(kind ConstraintKind) (Constraint, bool) {
	for _, c := range a.Constraints {
		if c.Kind == kind {
			return c, true
		}
	}
	return Constraint{}, false
}

// HasConstraint reports whether any constraint of the given kind is present.
func (a AccountDecl) HasConstraint(kind ConstraintKind) bool {
	_, ok := a.Constraint(kind)
	return ok
}

// ConstraintKind is a closed tag set for account constraints.
type ConstraintKind string

const (
	ConstraintMut           ConstraintKind = "mut"
	ConstraintInit          ConstraintKind = "init"           // payer + space
	ConstraintInitIfNeeded  ConstraintKind = "init_if_needed" // payer + space
	ConstraintSeeds         ConstraintKind = "seeds"
	ConstraintBump          ConstraintKind = "bump" // empty Bump means the canonical bump
	ConstraintTokenMint     ConstraintKind = "token_mint"
	ConstraintTokenAuth     ConstraintKind = "token_authority"
	ConstraintMintDecimals  ConstraintKind = "mint_decimals"
	ConstraintMintAuthority ConstraintKind = "mint_authority"
	ConstraintRaw           ConstraintKind = "constraint" // free-form boolean guard
	ConstraintHasOne        ConstraintKind = "has_one"    // field-equality
	ConstraintAddress       ConstraintKind = "address"    // fixed address
	ConstraintClose         ConstraintKind = "close"      // close target
)

// Constraint is one account constraint. Exactly the fields relevant to its
// Kind are populated; the rest stay zero.
type Constraint struct {
	Kind     ConstraintKind `json:"kind"`
	Payer    string         `json:"payer,omitempty"`    // init, init_if_needed
	Space    string         `json:"space,omitempty"`    // init, init_if_needed
	Seeds    []string       `json:"seeds,omitempty"`    // seeds
	Bump     string         `json:"bump,omitempty"`     // bump source expression, empty = canonical
	Ref      string         `json:"ref,omitempty"`      // token_mint, token_authority, mint_authority, has_one, close
	Expr     string         `json:"expr,omitempty"`     // constraint expression or fixed address
	Err      string         `json:"error,omitempty"`    // optional custom error
	Decimals uint8          `json:"decimals,omitempty"` // mint_decimals
}

// StateRecord is a persisted account data type.
type StateRecord struct {
	Name   string       `json:"name"`
	Fields []StateField `json:"fields"`
}

// StateField is one field of a state record. Bound is the explicit capacity
// for variable-length fields (zero means "use the per-type default").
type StateField struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Bound int    `json:"bound,omitempty"`
}

// ErrorDef is a program error definition. Code is optional; the transformer
// assigns sequential codes from 6000 when absent.
type ErrorDef struct {
	Name string  `json:"name"`
	Code *uint32 `json:"code,omitempty"`
	Msg  string  `json:"msg"`
}

// Group resolves an account group by name.
func (p *Program) Group(name string) (AccountGroup, bool) {
	for _, g := range p.AccountGroups {
		if g.Name == name {
			return g, true
		}
	}
	return AccountGroup{}, false
}

// Record resolves a state record by name.
func (p *Program) Record(name string) (StateRecord, bool) {
	for _, r := range p.StateRecords {
		if r.Name == name {
			return r, true
		}
	}
	return StateRecord{}, false
}
