package shape

import (
	"strings"
)

// Renderers reconstruct source text from decomposed fragments. Spacing is
// normalized; passes that splice rendered fragments back into bodies rely on
// the normalized form being stable across repeated parse/render cycles.

func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.First.String())
	for _, op := range e.Rest {
		b.WriteString(" ")
		b.WriteString(op.Op)
		b.WriteString(" ")
		b.WriteString(op.Rhs.String())
	}
	return b.String()
}

func (u *Unary) String() string {
	if u == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(u.Op)
	if u.Mut {
		b.WriteString("mut ")
	}
	b.WriteString(u.Term.String())
	return b.String()
}

func (t *Term) String() string {
	switch {
	case t == nil:
		return ""
	case t.Path != nil:
		return t.Path.String()
	case t.Str != "":
		return t.Str
	case t.Int != "":
		return t.Int
	case t.Paren != nil:
		return "(" + t.Paren.String() + ")"
	}
	return ""
}

func (p *PathExpr) String() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Join(p.Path(), "::"))
	if p.Struct != nil {
		b.WriteString(" ")
		b.WriteString(p.Struct.String())
	}
	if p.Call != nil {
		b.WriteString(p.Call.String())
	}
	for _, post := range p.Post {
		b.WriteString(post.String())
	}
	if p.Try {
		b.WriteString("?")
	}
	return b.String()
}

func (s *StructBody) String() string {
	if s == nil {
		return "{}"
	}
	parts := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		parts = append(parts, f.String())
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (f *FieldInit) String() string {
	if f.Value == nil {
		return f.Name
	}
	return f.Name + ": " + f.Value.String()
}

func (c *CallArgs) String() string {
	if c == nil {
		return "()"
	}
	parts := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (p *Postfix) String() string {
	switch {
	case p == nil:
		return ""
	case p.Field != nil:
		return "." + p.Field.String()
	case p.Index != nil:
		return "[" + p.Index.String() + "]"
	}
	return ""
}

func (f *FieldAccess) String() string {
	if f.Call != nil {
		return f.Name + f.Call.String()
	}
	return f.Name
}

func (m *MacroCall) String() string {
	parts := make([]string, 0, len(m.Args))
	for _, a := range m.Args {
		parts = append(parts, a.String())
	}
	return m.Name + "!(" + strings.Join(parts, ", ") + ")"
}
