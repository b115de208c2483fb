package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinsmith/internal/ir"
)

func testProgram() *ir.Program {
	return &ir.Program{
		Name: "escrow",
		Instructions: []ir.Instruction{
			{
				Name:     "initialize",
				Accounts: "Initialize",
				Body:     "pool.authority = ctx.accounts.authority.key();",
			},
			{
				Name:     "deposit",
				Accounts: "Deposit",
				Body: `token::transfer(
    CpiContext::new(
        ctx.accounts.token_program.to_account_info(),
        Transfer {
            from: ctx.accounts.user_token.to_account_info(),
            to: ctx.accounts.vault_token.to_account_info(),
            authority: ctx.accounts.user.to_account_info(),
        },
    ),
    amount,
)?;`,
			},
		},
		AccountGroups: []ir.AccountGroup{
			{
				Name: "Initialize",
				Accounts: []ir.AccountDecl{
					{Name: "authority", Kind: ir.KindSigner},
					{
						Name: "pool", Kind: ir.KindOwned, Record: "Pool",
						Constraints: []ir.Constraint{
							{Kind: ir.ConstraintInit, Payer: "authority", Space: "8 + Pool::LEN"},
							{Kind: ir.ConstraintSeeds, Seeds: []string{`b"pool"`, "authority.key().as_ref()"}},
							{Kind: ir.ConstraintBump},
						},
					},
				},
			},
			{
				Name: "Deposit",
				Accounts: []ir.AccountDecl{
					{Name: "user", Kind: ir.KindSigner},
					{
						Name: "pool", Kind: ir.KindOwned, Record: "Pool",
						Constraints: []ir.Constraint{
							{Kind: ir.ConstraintMut},
							{Kind: ir.ConstraintSeeds, Seeds: []string{`b"pool"`, "pool.authority.as_ref()"}},
							{Kind: ir.ConstraintBump, Bump: "pool.bump"},
						},
					},
					{Name: "user_token", Kind: ir.KindToken, Constraints: []ir.Constraint{{Kind: ir.ConstraintMut}}},
					{Name: "vault_token", Kind: ir.KindToken, Constraints: []ir.Constraint{{Kind: ir.ConstraintMut}}},
					{Name: "token_program", Kind: ir.KindProgram},
				},
			},
		},
		StateRecords: []ir.StateRecord{
			{
				Name: "Pool",
				Fields: []ir.StateField{
					{Name: "authority", Type: "Pubkey"},
					{Name: "bump", Type: "u8"},
					{Name: "total", Type: "u64"},
				},
			},
		},
	}
}

func TestAnalyzePDAs(t *testing.T) {
	facts := Analyze(testProgram())

	// "pool" is declared in two groups; one fact, first declaration wins.
	require.Len(t, facts.PDAs, 1)
	pda := facts.PDAs[0]
	assert.Equal(t, "pool", pda.Account)
	assert.Equal(t, []string{`b"pool"`, "authority.key().as_ref()"}, pda.Seeds)
	assert.Empty(t, pda.BumpSource)
	assert.Equal(t, "program_id", pda.Program)
}

func TestAnalyzeCPICalls(t *testing.T) {
	facts := Analyze(testProgram())

	require.Len(t, facts.Calls, 1)
	call := facts.Calls[0]
	assert.Equal(t, "deposit", call.Instruction)
	assert.Equal(t, "token_program", call.Program)
	assert.Equal(t, "transfer", call.Operation)
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", call.ProgramID)
	assert.Equal(t, []string{"from", "to", "authority"}, call.Roles)
}

func TestAnalyzeSizes(t *testing.T) {
	facts := Analyze(testProgram())

	require.Len(t, facts.Sizes, 1)
	size := facts.Sizes[0]
	assert.Equal(t, "Pool", size.Record)
	// 8-byte header + 32 + 1 + 8.
	assert.Equal(t, 49, size.Size)
}

func TestAnalyzeEmptyProgram(t *testing.T) {
	facts := Analyze(&ir.Program{Name: "empty"})
	assert.Empty(t, facts.PDAs)
	assert.Empty(t, facts.Calls)
	assert.Empty(t, facts.Sizes)
}

func TestSelfReferentialSeeds(t *testing.T) {
	p := testProgram()
	facts := Analyze(p)

	pda, ok := facts.PDA("pool")
	require.True(t, ok)
	// First declaration's seeds reference "authority", not the pool itself.
	assert.False(t, pda.SelfReferential())

	self := ir.PdaInfo{
		Account: "pool",
		Seeds:   []string{`b"pool"`, "pool.authority.as_ref()"},
	}
	assert.True(t, self.SelfReferential())

	// An identifier that merely ends with the account name is not a self
	// reference.
	other := ir.PdaInfo{
		Account: "pool",
		Seeds:   []string{"whirlpool.authority.as_ref()"},
	}
	assert.False(t, other.SelfReferential())

	// A bump read from the account's own state is a self reference even
	// when every seed is external.
	ownBump := ir.PdaInfo{
		Account:    "pool",
		Seeds:      []string{`b"pool"`},
		BumpSource: "pool.bump",
	}
	assert.True(t, ownBump.SelfReferential())

	argBump := ir.PdaInfo{
		Account:    "pool",
		Seeds:      []string{`b"pool"`},
		BumpSource: "pool_bump",
	}
	assert.False(t, argBump.SelfReferential())
}
