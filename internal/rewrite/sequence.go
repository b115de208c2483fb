package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"pinsmith/internal/layout"
)

// sequencePass lowers growable-collection operations on state record fields
// to the index-and-counter convention the Layout Engine lays those fields
// out with. Overflow on append is an explicit error, never truncation.
type sequencePass struct{}

func (sequencePass) Name() string { return "sequence" }

func (p sequencePass) Apply(body string, rc *Context) string {
	for _, acc := range rc.Accounts {
		if acc.Record == "" {
			continue
		}
		rec, ok := rc.Program.Record(acc.Record)
		if !ok {
			continue
		}
		for name, seq := range layout.Sequences(rec) {
			body = lowerSequenceOps(body, name, seq)
		}
	}

	if rc.Options.NoAlloc {
		body = lowerWithCapacity(body)
	}
	return body
}

// balanced matches one call argument list with at most one nesting level,
// which covers the argument shapes collection calls carry in practice.
const balancedArgs = `((?:[^()]|\([^()]*\))*)`

func lowerSequenceOps(body, name string, seq layout.SequenceSpec) string {
	lenField := seq.LengthField(name)
	q := regexp.QuoteMeta(name)

	// push: bounds check, indexed store, counter increment
	pushRE := regexp.MustCompile(`((?:\w+\.)*)` + q + `\s*\.\s*push\s*\(\s*` + balancedArgs + `\s*\)\s*(\?)?\s*(;?)`)
	body = pushRE.ReplaceAllStringFunc(body, func(m string) string {
		caps := pushRE.FindStringSubmatch(m)
		prefix, value, try, semi := caps[1], strings.TrimSpace(caps[2]), caps[3], caps[4]
		if try == "?" {
			return fmt.Sprintf(
				"{ if %[1]s%[2]s as usize >= %[3]d { return Err(ProgramError::Custom(0)); } %[1]s%[4]s[%[1]s%[2]s as usize] = %[5]s; %[1]s%[2]s += 1; Ok::<(), ProgramError>(()) }?%[6]s",
				prefix, lenField, seq.Capacity, name, value, semi)
		}
		return fmt.Sprintf(
			"{ if %[1]s%[2]s as usize >= %[3]d { return Err(ProgramError::Custom(0)); } %[1]s%[4]s[%[1]s%[2]s as usize] = %[5]s; %[1]s%[2]s += 1; }",
			prefix, lenField, seq.Capacity, name, value)
	})

	// len() becomes a counter read
	lenRE := regexp.MustCompile(`\b` + q + `\s*\.\s*len\s*\(\s*\)`)
	body = lenRE.ReplaceAllString(body, lenField+" as usize")

	// is_empty() becomes a counter comparison
	emptyRE := regexp.MustCompile(`((?:\w+\.)*)` + q + `\s*\.\s*is_empty\s*\(\s*\)`)
	body = emptyRE.ReplaceAllString(body, "(${1}"+lenField+" == 0)")

	// iter() walks the live prefix of the backing array
	iterRE := regexp.MustCompile(`((?:\w+\.)*)` + q + `\s*\.\s*iter\s*\(\s*\)`)
	body = iterRE.ReplaceAllString(body, fmt.Sprintf("${1}%s[..${1}%s as usize].iter()", name, lenField))

	// clear() resets the counter; backing bytes are left in place
	clearRE := regexp.MustCompile(`\b` + q + `\s*\.\s*clear\s*\(\s*\)`)
	body = clearRE.ReplaceAllString(body, lenField+" = 0")

	// remove(i) shifts the live suffix left and decrements the counter
	removeRE := regexp.MustCompile(`((?:\w+\.)*)` + q + `\s*\.\s*remove\s*\(\s*` + balancedArgs + `\s*\)\s*;?`)
	body = removeRE.ReplaceAllStringFunc(body, func(m string) string {
		caps := removeRE.FindStringSubmatch(m)
		prefix, idx := caps[1], strings.TrimSpace(caps[2])
		return fmt.Sprintf(
			"{ for i in (%[3]s)..(%[1]s%[2]s as usize - 1) { %[1]s%[4]s[i] = %[1]s%[4]s[i + 1]; } %[1]s%[2]s -= 1; }",
			prefix, lenField, idx, name)
	})

	return body
}

var withCapacityRE = regexp.MustCompile(`let\s+mut\s+(\w+)\s*=\s*Vec\s*::\s*with_capacity\s*\(\s*(\d+)\s*\)\s*;`)

// lowerWithCapacity swaps heap-backed scratch buffers for fixed byte arrays.
func lowerWithCapacity(body string) string {
	return withCapacityRE.ReplaceAllString(body, "let mut $1 = [0u8; $2];")
}
