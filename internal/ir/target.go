package ir

// Target-form model of a Pinocchio program. Target entities are constructed
// exactly once per instruction/record by the transformer and handed to the
// external emission collaborator as JSON.

// TargetProgram is the root of the target-form model.
type TargetProgram struct {
	Name         string              `json:"name"`
	ProgramID    string              `json:"program_id,omitempty"`
	NoAlloc      bool                `json:"no_alloc"`
	Lazy         bool                `json:"lazy_entrypoint"`
	AnchorCompat bool                `json:"anchor_compat"`
	Instructions []TargetInstruction `json:"instructions"`
	StateRecords []TargetStateRecord `json:"state_records"`
	Errors       []TargetError       `json:"errors,omitempty"`
}

// TargetInstruction is one dispatchable entrypoint of the target program.
type TargetInstruction struct {
	Name          string          `json:"name"`
	Discriminator [8]byte         `json:"discriminator"`
	Accounts      []TargetAccount `json:"accounts"`
	Args          []Arg           `json:"args,omitempty"`
	Validations   []Validation    `json:"validations,omitempty"`
	Body          string          `json:"body"`

	// Issues records everything that degraded to an inline marker while this
	// instruction was rewritten. Issues never abort sibling instructions.
	Issues []Issue `json:"issues,omitempty"`
}

// TargetAccount is the per-account metadata the emitter needs. Index equals
// declaration order in the source group and is stable across the pipeline.
type TargetAccount struct {
	Name      string   `json:"name"`
	Index     int      `json:"index"`
	Signer    bool     `json:"signer"`
	Writable  bool     `json:"writable"`
	PDA       bool     `json:"pda"`
	Seeds     []string `json:"seeds,omitempty"`
	Init      bool     `json:"init"`
	InitPayer string   `json:"init_payer,omitempty"`
	TokenMint string   `json:"token_mint,omitempty"`
	TokenAuth string   `json:"token_authority,omitempty"`
	CloseTo   string   `json:"close_to,omitempty"`
	StateType string   `json:"state_type,omitempty"`
}

// ValidationKind is the closed set of guard variants the emitter understands.
type ValidationKind string

const (
	ValidationIsSigner   ValidationKind = "is_signer"
	ValidationIsWritable ValidationKind = "is_writable"
	ValidationPdaCheck   ValidationKind = "pda_check"
	ValidationOwnerCheck ValidationKind = "owner_check"
	ValidationKeyEquals  ValidationKind = "key_equals"
	ValidationCustom     ValidationKind = "custom"
)

// PdaStrategy selects how a PDA guard verifies the address.
type PdaStrategy string

const (
	// PdaDerive recomputes the address from seeds and the owning program,
	// ignoring any supplied bump. Used when the account is being initialized,
	// when its seeds or bump source reference its own not-yet-deserialized
	// state, or when no bump source was supplied.
	PdaDerive PdaStrategy = "derive"

	// PdaFromBump appends the supplied bump byte to the seed list and
	// recomputes a single address. Cheaper, but only sound when the bump
	// source is trustworthy.
	PdaFromBump PdaStrategy = "from_bump"
)

// Validation is one guard in an instruction's ordered validation sequence.
// The relative order of guards is itself a contract callers may rely on.
type Validation struct {
	Kind    ValidationKind `json:"kind"`
	Account int            `json:"account"` // account index, -1 for detached custom guards

	Seeds    []string    `json:"seeds,omitempty"`    // pda_check
	Bump     string      `json:"bump,omitempty"`     // pda_check, from_bump strategy only
	Strategy PdaStrategy `json:"strategy,omitempty"` // pda_check

	Owner    string `json:"owner,omitempty"`    // owner_check
	Expected string `json:"expected,omitempty"` // key_equals
	Code     string `json:"code,omitempty"`     // custom
}

// TargetStateRecord is a state record lowered to a fixed, offset-addressed
// layout: 8-byte header, then fields at strictly increasing offsets.
type TargetStateRecord struct {
	Name   string        `json:"name"`
	Size   int           `json:"size"`
	Fields []TargetField `json:"fields"`

	// Accessors carries generated method code for bounded-sequence fields.
	Accessors string `json:"accessors,omitempty"`
}

// TargetField is one laid-out field.
type TargetField struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Size   int    `json:"size"`
	Offset int    `json:"offset"`
	Bound  int    `json:"bound,omitempty"` // capacity for bounded sequences
}

// TargetError is an error definition with a concrete code.
type TargetError struct {
	Name string `json:"name"`
	Code uint32 `json:"code"`
	Msg  string `json:"msg"`
}
