package rewrite

import (
	"regexp"
	"strings"

	"pinsmith/internal/ir"
)

// Key handles are references on the target runtime while state fields hold
// key values. Wherever a handle meets a value slot the handle side needs an
// explicit dereference: assignments into key-typed state fields and both
// operands of equality comparisons. An already-dereferenced operand never
// matches, so re-running these rewrites is a no-op.

var (
	keyCmpLeftRE  = regexp.MustCompile(`(^|[^\w.*&])((?:\w+\.)*\w+\.key\(\))(\s*(?:==|!=))`)
	keyCmpRightRE = regexp.MustCompile(`(==|!=)(\s*)((?:\w+\.)*\w+\.key\(\))`)
)

func derefKeyComparisons(body string) string {
	body = keyCmpLeftRE.ReplaceAllString(body, "$1*$2$3")
	return keyCmpRightRE.ReplaceAllString(body, "$1$2*$3")
}

// derefPubkeyAssignments dereferences .key() handles assigned into the
// key-typed fields of the account's record. Runs after field promotion, so
// the left side is already in handle form.
func derefPubkeyAssignments(body, account string, rec ir.StateRecord) string {
	for _, f := range rec.Fields {
		ty := strings.ToLower(strings.TrimSpace(f.Type))
		if ty != "pubkey" && ty != "publickey" {
			continue
		}
		re := regexp.MustCompile(`(\b` + regexp.QuoteMeta(account) + `_state\.` + regexp.QuoteMeta(f.Name) +
			`\s*=\s*)((?:\w+\.)*\w+\.key\(\))`)
		body = re.ReplaceAllString(body, "$1*$2")
	}
	return body
}

// tokenFieldHelpers maps the token-account fields the source runtime exposes
// as struct members onto the target-side accessor helpers. A raw account has
// no deserialized token fields to read.
var tokenFieldHelpers = []struct {
	field  string
	helper string
}{
	{"amount", "get_token_balance"},
	{"mint", "get_token_mint"},
	{"owner", "get_token_owner"},
}

func rewriteTokenFieldAccess(body string, accounts []ir.AccountDecl) string {
	for _, acc := range accounts {
		if acc.Unwrapped() != ir.KindToken {
			continue
		}
		for _, tf := range tokenFieldHelpers {
			needle := acc.Name + "." + tf.field
			if !strings.Contains(body, needle) {
				continue
			}
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(acc.Name) + `\.` + tf.field + `\b`)
			body = re.ReplaceAllString(body, tf.helper+"("+acc.Name+")?")
		}
	}
	return body
}
