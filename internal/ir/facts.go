package ir

// Fact set produced by the relationship analyzer. Facts are computed in full
// before any transformation begins and are read-only afterwards, which is
// what makes the per-instruction parallel phase lock-free.

// PdaInfo records a program-derived-address declaration.
type PdaInfo struct {
	Account    string   `json:"account"`
	Seeds      []string `json:"seeds"`
	BumpSource string   `json:"bump_source,omitempty"` // empty means no bump was supplied
	Program    string   `json:"program"`               // owning program expression, usually "program_id"
}

// SelfReferential reports whether any seed expression or the bump source
// reaches into the account's own (not yet deserialized and therefore not yet
// trusted) state.
func (p PdaInfo) SelfReferential() bool {
	needle := p.Account + "."
	for _, s := range p.Seeds {
		if containsIdentPrefix(s, needle) {
			return true
		}
	}
	return containsIdentPrefix(p.BumpSource, needle)
}

// CpiCallInfo records one recognized cross-program call shape in an
// instruction body.
type CpiCallInfo struct {
	Instruction string   `json:"instruction"` // source instruction the call was found in
	Program     string   `json:"program"`     // source-level program handle, e.g. "token_program"
	ProgramID   string   `json:"program_id"`  // canonical base58 identity of the external program
	Operation   string   `json:"operation"`   // external operation name, e.g. "transfer"
	Roles       []string `json:"roles"`       // ordered account roles the operation requires
}

// AccountSizeInfo records the computed byte size of a state record.
type AccountSizeInfo struct {
	Record string      `json:"record"`
	Size   int         `json:"size"`
	Fields []FieldSize `json:"fields"`
}

// FieldSize is one per-field size entry.
type FieldSize struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Facts is the complete, immutable analyzer output.
type Facts struct {
	PDAs  []PdaInfo         `json:"pdas"`
	Calls []CpiCallInfo     `json:"cpi_calls"`
	Sizes []AccountSizeInfo `json:"account_sizes"`
}

// PDA looks up the PDA fact for an account name. Absence of a fact is not an
// error; the account is simply not a PDA.
func (f *Facts) PDA(account string) (PdaInfo, bool) {
	for _, p := range f.PDAs {
		if p.Account == account {
			return p, true
		}
	}
	return PdaInfo{}, false
}

// Size looks up the size fact for a state record name.
func (f *Facts) Size(record string) (AccountSizeInfo, bool) {
	for _, s := range f.Sizes {
		if s.Record == record {
			return s, true
		}
	}
	return AccountSizeInfo{}, false
}

// containsIdentPrefix reports whether s contains needle at a position that is
// not preceded by an identifier character, so "pool." matches "pool.bump" but
// not "whirlpool.bump".
func containsIdentPrefix(s, needle string) bool {
	for i := 0; i+len(needle) <= len(s); i++ {
		if s[i:i+len(needle)] != needle {
			continue
		}
		if i == 0 {
			return true
		}
		c := s[i-1]
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return true
		}
	}
	return false
}
