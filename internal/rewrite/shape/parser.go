package shape

import (
	"github.com/alecthomas/participle/v2"
)

// Parsers are built once at package initialization and shared process-wide.
// They hold no mutable state after construction.
var (
	exprParser = participle.MustBuild[Expr](
		participle.Lexer(ShapeLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(3),
	)

	pathParser = participle.MustBuild[PathExpr](
		participle.Lexer(ShapeLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(3),
	)

	macroParser = participle.MustBuild[MacroCall](
		participle.Lexer(ShapeLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(3),
	)
)

// ParseExpr decomposes one expression fragment.
func ParseExpr(src string) (*Expr, error) {
	return exprParser.ParseString("", src)
}

// ParseCall decomposes one path-headed fragment such as a function or method
// call. The whole fragment must be consumed.
func ParseCall(src string) (*PathExpr, error) {
	return pathParser.ParseString("", src)
}

// ParseMacro decomposes one macro invocation fragment.
func ParseMacro(src string) (*MacroCall, error) {
	return macroParser.ParseString("", src)
}
