package shape

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var ShapeLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// String literals, including byte strings
		{Name: "String", Pattern: `b?"(\\.|[^"])*"`},

		// Keywords and Identifiers (order matters)
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

		// Integer literals, with optional width suffix
		{Name: "Integer", Pattern: `(0x[0-9a-fA-F]+|[0-9]+)(u8|u16|u32|u64|u128|i8|i16|i32|i64|i128|usize)?`},

		// Path separator (must come before single-char operators)
		{Name: "PathSep", Pattern: `::`},

		// Operators
		{Name: "Operator", Pattern: `(\|\||&&|==|!=|<=|>=|=>|->|\+=|-=|\*=|/=|[-+*/%<>=])`},

		// Punctuation (must come after operators)
		{Name: "Punctuation", Pattern: `[{}[\](),:;.!?&#|]`},

		// Whitespace
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	},
})
