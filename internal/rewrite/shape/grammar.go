// Package shape parses the call and macro fragments the rewrite passes act
// on. It is not a full-language parser: each pass isolates one candidate
// fragment from an instruction body and hands it here to be decomposed into
// structured parts. A fragment the grammar cannot decompose stays untouched
// in the body.
package shape

// Expr is a binary-operator expression over unary terms. Precedence is not
// modeled; fragments are decomposed, never evaluated.
type Expr struct {
	First *Unary   `parser:"@@"`
	Rest  []*BinOp `parser:"@@*"`
}

type BinOp struct {
	Op  string `parser:"@Operator"`
	Rhs *Unary `parser:"@@"`
}

type Unary struct {
	Op   string `parser:"[ @(\"-\" | \"!\" | \"&\" | \"*\") ]"`
	Mut  bool   `parser:"[ @\"mut\" ]"`
	Term *Term  `parser:"@@"`
}

type Term struct {
	Path  *PathExpr `parser:"  @@"`
	Str   string    `parser:"| @String"`
	Int   string    `parser:"| @Integer"`
	Paren *Expr     `parser:"| \"(\" @@ \")\""`
}

// PathExpr is a possibly-qualified path optionally followed by a struct
// literal or a call, then a postfix chain. It covers every fragment head the
// passes care about: token::transfer(...), Transfer { ... },
// ctx.accounts.user.key(), pool.total.
type PathExpr struct {
	Head   string      `parser:"@Ident"`
	Tail   []string    `parser:"( PathSep @Ident )*"`
	Struct *StructBody `parser:"( @@"`
	Call   *CallArgs   `parser:"| @@ )?"`
	Post   []*Postfix  `parser:"@@*"`
	Try    bool        `parser:"[ @\"?\" ]"`
}

// Path returns the full path segments.
func (p *PathExpr) Path() []string {
	return append([]string{p.Head}, p.Tail...)
}

type StructBody struct {
	Fields []*FieldInit `parser:"\"{\" [ @@ ( \",\" @@ )* [ \",\" ] ] \"}\""`
}

// FieldInit is one struct literal field. A missing value is shorthand
// initialization from a binding of the same name.
type FieldInit struct {
	Name  string `parser:"@Ident"`
	Value *Expr  `parser:"[ \":\" @@ ]"`
}

type CallArgs struct {
	Args []*Expr `parser:"\"(\" [ @@ ( \",\" @@ )* [ \",\" ] ] \")\""`
}

type Postfix struct {
	Field *FieldAccess `parser:"  \".\" @@"`
	Index *Expr        `parser:"| \"[\" @@ \"]\""`
}

type FieldAccess struct {
	Name string    `parser:"@Ident"`
	Call *CallArgs `parser:"@@?"`
}

// MacroCall is a macro invocation fragment: require!(...), msg!(...),
// emit!(...).
type MacroCall struct {
	Name string  `parser:"@Ident \"!\""`
	Args []*Expr `parser:"\"(\" [ @@ ( \",\" @@ )* [ \",\" ] ] \")\""`
}
